package gpudbn

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// KernelFunc is a per-thread kernel. Threads of a launch run concurrently
// across blocks, so a KernelFunc must only write memory owned by its thread.
type KernelFunc func(tid ThreadID)

// BlockFunc is a cooperative kernel executed once per block. It drives its
// threads through phases with Block.Threads; the end of each phase is a
// barrier for every thread of the block.
type BlockFunc func(b *Block)

// Block is the execution state of one thread block. A Block is owned by a
// single worker goroutine and reused for every block that worker runs.
type Block struct {
	Idx     Dim3 // Block index within the grid
	Dim     Dim3 // Threads per block
	GridDim Dim3 // Blocks per grid

	shared []float32
	used   int
}

// Threads runs fn for every thread of the block. All threads have finished
// when Threads returns, which is the barrier between two phases.
func (b *Block) Threads(fn KernelFunc) {
	tid := ThreadID{BlockIdx: b.Idx, BlockDim: b.Dim, GridDim: b.GridDim}
	for z := 0; z < b.Dim.Z; z++ {
		for y := 0; y < b.Dim.Y; y++ {
			for x := 0; x < b.Dim.X; x++ {
				tid.ThreadIdx = Dim3{X: x, Y: y, Z: z}
				fn(tid)
			}
		}
	}
}

// Shared returns n words of block-local memory. Contents are undefined
// until written, as with device shared memory. Memory is released when the
// block finishes.
func (b *Block) Shared(n int) []float32 {
	if b.used+n > len(b.shared) {
		if b.used+n > MaxSharedWords {
			panic(fmt.Sprintf("gpudbn: block requested %d shared words, limit %d", b.used+n, MaxSharedWords))
		}
		// Earlier slices stay valid; they keep pointing at the old arena.
		size := 2 * len(b.shared)
		if size < b.used+n {
			size = b.used + n
		}
		b.shared = make([]float32, size)
		b.used = 0
	}
	s := b.shared[b.used : b.used+n : b.used+n]
	b.used += n
	return s
}

func (b *Block) reset(idx Dim3) {
	b.Idx = idx
	b.used = 0
}

// LaunchFunc launches a per-thread kernel on the default stream without
// waiting. Use Synchronize to wait and collect errors.
func (ctx *Context) LaunchFunc(fn KernelFunc, grid, block Dim3) error {
	return ctx.LaunchFuncStream(fn, grid, block, ctx.defaultStream)
}

// LaunchFuncStream launches a per-thread kernel on a specific stream
func (ctx *Context) LaunchFuncStream(fn KernelFunc, grid, block Dim3, stream *Stream) error {
	return ctx.LaunchBlocksStream(func(b *Block) { b.Threads(fn) }, grid, block, stream)
}

// LaunchBlocks launches a cooperative kernel on the default stream without
// waiting.
func (ctx *Context) LaunchBlocks(fn BlockFunc, grid, block Dim3) error {
	return ctx.LaunchBlocksStream(fn, grid, block, ctx.defaultStream)
}

// LaunchBlocksStream launches a cooperative kernel on a specific stream
func (ctx *Context) LaunchBlocksStream(fn BlockFunc, grid, block Dim3, stream *Stream) error {
	if err := validateLaunch("Launch", grid, block); err != nil {
		return err
	}
	stream.Submit(ctx.launchInternal("Launch", fn, grid, block))
	return nil
}

// ExecuteFunc runs a per-thread kernel ordered on the default stream and
// returns once it has fully completed. op names the kernel in errors.
func (ctx *Context) ExecuteFunc(op string, fn KernelFunc, grid, block Dim3) error {
	return ctx.runThreads(op, fn, grid, block)
}

// ExecuteBlocks runs a cooperative kernel ordered on the default stream and
// returns once it has fully completed.
func (ctx *Context) ExecuteBlocks(op string, fn BlockFunc, grid, block Dim3) error {
	return ctx.run(op, fn, grid, block)
}

// run executes a cooperative kernel ordered on the default stream and
// returns once it has fully completed.
func (ctx *Context) run(op string, fn BlockFunc, grid, block Dim3) error {
	if err := validateLaunch(op, grid, block); err != nil {
		return err
	}
	return ctx.defaultStream.submitWait(ctx.launchInternal(op, fn, grid, block))
}

// runThreads is run for per-thread kernels.
func (ctx *Context) runThreads(op string, fn KernelFunc, grid, block Dim3) error {
	return ctx.run(op, func(b *Block) { b.Threads(fn) }, grid, block)
}

func validateLaunch(op string, grid, block Dim3) error {
	if grid.X < 0 || grid.Y < 0 || grid.Z < 0 {
		return NewInvalidArgError(op, fmt.Sprintf("negative grid dimensions %+v", grid))
	}
	if block.X < 1 || block.Y < 1 || block.Z < 1 || block.Size() > MaxThreadsPerBlock {
		return newPreconditionError(op, ErrBadBlockSize, "block %+v must hold 1..%d threads", block, MaxThreadsPerBlock)
	}
	return nil
}

// launchInternal builds the stream task that executes a grid. Blocks are
// split into contiguous ranges, one per worker goroutine; no ordering or
// synchronization exists between blocks.
func (ctx *Context) launchInternal(op string, fn BlockFunc, grid, block Dim3) func() error {
	return func() error {
		gridSize := grid.Size()
		if gridSize == 0 {
			return nil
		}

		numWorkers := ctx.opts.workers
		if gridSize < numWorkers {
			numWorkers = gridSize
		}
		blocksPerWorker := (gridSize + numWorkers - 1) / numWorkers

		var g errgroup.Group
		g.SetLimit(numWorkers)
		for w := 0; w < numWorkers; w++ {
			startBlock := w * blocksPerWorker
			endBlock := startBlock + blocksPerWorker
			if endBlock > gridSize {
				endBlock = gridSize
			}
			if startBlock >= endBlock {
				break
			}
			g.Go(func() (err error) {
				blk := &Block{Dim: block, GridDim: grid, shared: make([]float32, DefaultSharedWords)}
				defer func() {
					if r := recover(); r != nil {
						err = NewExecutionError(op, fmt.Sprintf("block %+v: %v", blk.Idx, r), ErrKernelPanic)
					}
				}()
				for blockID := startBlock; blockID < endBlock; blockID++ {
					blk.reset(linearTo3D(blockID, grid))
					fn(blk)
				}
				return nil
			})
		}
		return g.Wait()
	}
}

// linearTo3D converts a linear index to 3D coordinates
func linearTo3D(linear int, dim Dim3) Dim3 {
	z := linear / (dim.X * dim.Y)
	y := (linear % (dim.X * dim.Y)) / dim.X
	x := linear % dim.X
	return Dim3{X: x, Y: y, Z: z}
}

package gpudbn

import (
	"fmt"
	"runtime"
)

// Option configures a Context created by NewContext.
type Option func(*options)

type options struct {
	workers         int
	tileSize        int
	vectorBlockSize int
	elementBlock    int
}

func defaultOptions() options {
	return options{
		workers:         runtime.NumCPU(),
		tileSize:        DefaultTileSize,
		vectorBlockSize: DefaultVectorBlockSize,
		elementBlock:    DefaultBlockSize,
	}
}

// WithWorkers sets the number of goroutines a launch spreads its grid over.
// Panics if n < 1.
func WithWorkers(n int) Option {
	if n < 1 {
		panic(fmt.Sprintf("gpudbn: WithWorkers(%d): need at least one worker", n))
	}
	return func(o *options) { o.workers = n }
}

// WithTileSize sets the tile edge used by strategies returned from
// Context.Strategy. Panics if the tile does not fit in a block.
func WithTileSize(n int) Option {
	if n < 1 || n*n > MaxThreadsPerBlock {
		panic(fmt.Sprintf("gpudbn: WithTileSize(%d): tile must have 1..%d threads", n, MaxThreadsPerBlock))
	}
	return func(o *options) { o.tileSize = n }
}

// WithVectorBlockSize sets the block size of the vector-matrix kernels.
func WithVectorBlockSize(n int) Option {
	if n < 1 || n > MaxThreadsPerBlock {
		panic(fmt.Sprintf("gpudbn: WithVectorBlockSize(%d): out of range", n))
	}
	return func(o *options) { o.vectorBlockSize = n }
}

// WithElementBlockSize sets the block size of the elementwise kernels.
func WithElementBlockSize(n int) Option {
	if n < 1 || n > MaxThreadsPerBlock {
		panic(fmt.Sprintf("gpudbn: WithElementBlockSize(%d): out of range", n))
	}
	return func(o *options) { o.elementBlock = n }
}

func gatherOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

package gpudbn

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

// Device represents a compute device. In gpudbn, this is the CPU with its
// cores and detected vector extensions.
type Device struct {
	ID       int         // Unique device identifier
	Name     string      // Human-readable device name
	NumCores int         // Number of CPU cores
	Features CPUFeatures // Detected instruction set extensions
}

// Context represents an execution context. It owns the streams kernels are
// submitted to and the launch configuration shared by all kernels.
// A Context should be destroyed when no longer needed.
type Context struct {
	device        *Device
	opts          options
	mu            sync.Mutex
	streams       map[int]*Stream
	streamID      int32
	defaultStream *Stream
}

// Stream represents an ordered sequence of launches. Launches within a
// stream execute in order, launches in different streams may execute
// concurrently.
type Stream struct {
	id    int
	tasks chan func() error
	wg    sync.WaitGroup
	mu    sync.Mutex
	err   error
	once  sync.Once
}

// Dim3 represents 3D dimensions for grid and block configurations.
type Dim3 struct {
	X, Y, Z int
}

// ThreadID identifies a thread's position within the execution hierarchy,
// with the semantics of blockIdx, threadIdx, blockDim and gridDim.
type ThreadID struct {
	BlockIdx  Dim3 // Block index within the grid
	ThreadIdx Dim3 // Thread index within the block
	BlockDim  Dim3 // Dimensions of the block
	GridDim   Dim3 // Dimensions of the grid
}

var (
	defaultDevice  *Device
	defaultContext *Context
	initOnce       sync.Once
)

func initDefaults() {
	initOnce.Do(func() {
		defaultDevice = &Device{
			ID:       0,
			Name:     "CPU",
			NumCores: runtime.NumCPU(),
			Features: detectCPUFeatures(),
		}
		defaultContext = NewContext()
	})
}

// Default returns the process-wide context, created on first use.
func Default() *Context {
	initDefaults()
	return defaultContext
}

// GetDevice returns the current device information.
func GetDevice() *Device {
	initDefaults()
	return defaultDevice
}

// GetDeviceProperties returns device properties
func GetDeviceProperties(id int) (*Device, error) {
	if id != 0 {
		return nil, &Error{Type: ErrTypeDevice, Op: "GetDeviceProperties", Message: fmt.Sprintf("invalid device ID: %d", id)}
	}
	return GetDevice(), nil
}

// NewContext creates an execution context with its default stream.
func NewContext(opts ...Option) *Context {
	dev := defaultDevice
	if dev == nil {
		dev = &Device{Name: "CPU", NumCores: runtime.NumCPU(), Features: detectCPUFeatures()}
	}
	ctx := &Context{
		device:  dev,
		opts:    gatherOptions(opts),
		streams: make(map[int]*Stream),
	}
	ctx.defaultStream = ctx.CreateStream()
	return ctx
}

// Device returns the device the context executes on.
func (ctx *Context) Device() *Device {
	return ctx.device
}

// Workers returns the number of goroutines a launch is spread over.
func (ctx *Context) Workers() int {
	return ctx.opts.workers
}

// TileSize returns the configured tile edge for tiled multiplies.
func (ctx *Context) TileSize() int {
	return ctx.opts.tileSize
}

// VectorBlockSize returns the block size of the vector-matrix kernels.
func (ctx *Context) VectorBlockSize() int {
	return ctx.opts.vectorBlockSize
}

// Strategy returns a tiled multiply strategy using the context tile size.
func (ctx *Context) Strategy(kind StrategyKind) Strategy {
	return Strategy{Kind: kind, BlockSize: ctx.opts.tileSize}
}

// CreateStream creates a new execution stream
func (ctx *Context) CreateStream() *Stream {
	id := int(atomic.AddInt32(&ctx.streamID, 1))
	stream := &Stream{
		id:    id,
		tasks: make(chan func() error, StreamQueueDepth),
	}

	go stream.worker()

	ctx.mu.Lock()
	ctx.streams[id] = stream
	ctx.mu.Unlock()
	return stream
}

// DefaultStream returns the stream synchronous kernels are ordered on.
func (ctx *Context) DefaultStream() *Stream {
	return ctx.defaultStream
}

// Synchronize waits for all streams to complete and returns the first
// launch error recorded since the previous Synchronize.
func (ctx *Context) Synchronize() error {
	ctx.mu.Lock()
	streams := make([]*Stream, 0, len(ctx.streams))
	for _, s := range ctx.streams {
		streams = append(streams, s)
	}
	ctx.mu.Unlock()

	var first error
	for _, s := range streams {
		if err := s.Synchronize(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Destroy waits for outstanding work and stops every stream worker.
// The context must not be used afterwards.
func (ctx *Context) Destroy() {
	ctx.Synchronize()
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	for id, s := range ctx.streams {
		s.close()
		delete(ctx.streams, id)
	}
}

// Stream methods

// worker processes tasks for a stream
func (s *Stream) worker() {
	for task := range s.tasks {
		if err := task(); err != nil {
			s.mu.Lock()
			if s.err == nil {
				s.err = err
			}
			s.mu.Unlock()
		}
		s.wg.Done()
	}
}

// ID returns the stream identifier
func (s *Stream) ID() int {
	return s.id
}

// Synchronize waits for all tasks in the stream to complete
func (s *Stream) Synchronize() error {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.err
	s.err = nil
	return err
}

// Submit adds a task to the stream. Errors returned by the task are
// reported by the next Synchronize.
func (s *Stream) Submit(task func() error) {
	s.wg.Add(1)
	s.tasks <- task
}

// submitWait adds a task to the stream and waits for that task alone,
// returning its error instead of recording it.
func (s *Stream) submitWait(task func() error) error {
	done := make(chan error, 1)
	s.Submit(func() error {
		done <- task()
		return nil
	})
	return <-done
}

func (s *Stream) close() {
	s.once.Do(func() { close(s.tasks) })
}

// Helper functions

// Global returns the global thread index along X
func (tid ThreadID) Global() int {
	return tid.BlockIdx.X*tid.BlockDim.X + tid.ThreadIdx.X
}

// GlobalX returns the global X index
func (tid ThreadID) GlobalX() int {
	return tid.BlockIdx.X*tid.BlockDim.X + tid.ThreadIdx.X
}

// GlobalY returns the global Y index
func (tid ThreadID) GlobalY() int {
	return tid.BlockIdx.Y*tid.BlockDim.Y + tid.ThreadIdx.Y
}

// NumThreads returns the total thread count of the grid along X
func (tid ThreadID) NumThreads() int {
	return tid.BlockDim.X * tid.GridDim.X
}

// Linear returns the thread's linear index within its block
func (tid ThreadID) Linear() int {
	return (tid.ThreadIdx.Z*tid.BlockDim.Y+tid.ThreadIdx.Y)*tid.BlockDim.X + tid.ThreadIdx.X
}

// Size returns the total number of elements
func (d Dim3) Size() int {
	return d.X * d.Y * d.Z
}

// Dim1 returns a one dimensional Dim3
func Dim1(x int) Dim3 {
	return Dim3{X: x, Y: 1, Z: 1}
}

// GridFor returns the number of blocks of size block needed to cover n.
func GridFor(n, block int) int {
	return (n + block - 1) / block
}

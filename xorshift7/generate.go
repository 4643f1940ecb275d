package xorshift7

import (
	"fmt"
	"math/bits"

	"github.com/LynnColeArt/gpudbn"
)

// Config sizes one parallel generation launch.
//
// The stream is partitioned by rank = RunRank*NumThreads + threadRank: the
// thread of that rank jumps rank*NumSteps steps from the start state and so
// produces exactly the subsequence [rank*NumSteps, (rank+1)*NumSteps) of the
// single stream generated from the start state.
type Config struct {
	NumRuns    int // runs sharing one start state
	RunRank    int // run generated by this launch, in [0, NumRuns)
	NumThreads int // parallel generator threads per run
	NumSteps   int // values drawn per thread
	BlockSize  int // threads per block; DefaultBlockSize when zero
}

// DefaultBlockSize is the launch block size used when Config.BlockSize is 0.
const DefaultBlockSize = 128

func (c Config) blockSize() int {
	if c.BlockSize == 0 {
		return DefaultBlockSize
	}
	return c.BlockSize
}

// RunLength is the number of values one run produces.
func (c Config) RunLength() int {
	return c.NumThreads * c.NumSteps
}

// Validate checks the configuration against the table's jump range.
func (c Config) Validate(t *JumpTable) error {
	const op = "xorshift7.Config"
	switch {
	case c.NumRuns < 1:
		return gpudbn.NewInvalidArgError(op, fmt.Sprintf("NumRuns %d must be positive", c.NumRuns))
	case c.RunRank < 0 || c.RunRank >= c.NumRuns:
		return gpudbn.NewInvalidArgError(op, fmt.Sprintf("RunRank %d outside [0,%d)", c.RunRank, c.NumRuns))
	case c.NumThreads < 1:
		return gpudbn.NewInvalidArgError(op, fmt.Sprintf("NumThreads %d must be positive", c.NumThreads))
	case c.NumSteps < 0:
		return gpudbn.NewInvalidArgError(op, fmt.Sprintf("NumSteps %d must not be negative", c.NumSteps))
	case c.blockSize() < 1 || c.blockSize() > gpudbn.MaxThreadsPerBlock:
		return gpudbn.NewInvalidArgError(op, fmt.Sprintf("BlockSize %d out of range", c.BlockSize))
	}
	hi, ranks := bits.Mul64(uint64(c.NumRuns), uint64(c.NumThreads))
	if hi != 0 {
		return gpudbn.NewInvalidArgError(op, fmt.Sprintf("%d runs x %d threads overflows", c.NumRuns, c.NumThreads))
	}
	hi, far := bits.Mul64(ranks-1, uint64(c.NumSteps))
	if hi != 0 || far > t.MaxDistance() {
		return gpudbn.NewInvalidArgError(op,
			fmt.Sprintf("%d ranks x %d steps exceeds the table's jump range %d", ranks, c.NumSteps, t.MaxDistance()))
	}
	return nil
}

// Generate fills the RunRank slice of out with converted values. out holds
// all runs: NumRuns * NumThreads * NumSteps elements. Within a run, step i
// of thread t is stored at i*NumThreads + t, so consecutive elements come
// from consecutive threads.
func Generate[T any](ctx *gpudbn.Context, cfg Config, start [StateWords]uint32, t *JumpTable, out []T, convert func(uint32) T) error {
	const op = "xorshift7.Generate"
	if err := cfg.Validate(t); err != nil {
		return err
	}
	if IsZero(start) {
		return gpudbn.NewInvalidArgError(op, "start state is all zero")
	}
	if convert == nil {
		return gpudbn.NewInvalidArgError(op, "nil conversion")
	}
	if want := cfg.NumRuns * cfg.RunLength(); len(out) != want {
		return gpudbn.NewInvalidArgError(op, fmt.Sprintf("output has %d elements, want %d", len(out), want))
	}

	numThreads, numSteps := cfg.NumThreads, cfg.NumSteps
	run := out[cfg.RunRank*cfg.RunLength() : (cfg.RunRank+1)*cfg.RunLength()]
	bs := cfg.blockSize()
	return ctx.ExecuteFunc(op, func(tid gpudbn.ThreadID) {
		threadRank := tid.Global()
		if threadRank >= numThreads {
			return
		}
		rank := uint64(cfg.RunRank)*uint64(numThreads) + uint64(threadRank)
		state, err := JumpAhead(start, t, rank*uint64(numSteps))
		if err != nil {
			panic(err) // unreachable after Validate
		}
		g := FromState(state)
		for i := 0; i < numSteps; i++ {
			run[i*numThreads+threadRank] = convert(g.Next())
		}
	}, gpudbn.Dim1(gpudbn.GridFor(numThreads, bs)), gpudbn.Dim1(bs))
}

// GenerateAll runs Generate for every run rank in order.
func GenerateAll[T any](ctx *gpudbn.Context, cfg Config, start [StateWords]uint32, t *JumpTable, out []T, convert func(uint32) T) error {
	for r := 0; r < cfg.NumRuns; r++ {
		cfg.RunRank = r
		if err := Generate(ctx, cfg, start, t, out, convert); err != nil {
			return err
		}
	}
	return nil
}

// Stream draws n values sequentially from the start state. It is the
// single-thread reference the parallel partition is defined against.
func Stream(start [StateWords]uint32, n int) []uint32 {
	g := FromState(start)
	out := make([]uint32, n)
	for i := range out {
		out[i] = g.Next()
	}
	return out
}

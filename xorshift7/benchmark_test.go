package xorshift7

import (
	"fmt"
	"testing"

	"github.com/LynnColeArt/gpudbn"
)

func BenchmarkJumpAhead(b *testing.B) {
	table := DefaultJumpTable()
	start := StartState(1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := JumpAhead(start, table, uint64(i)*7919+1); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGenerate(b *testing.B) {
	ctx := gpudbn.NewContext()
	defer ctx.Destroy()

	for _, threads := range []int{64, 1024, 8192} {
		b.Run(fmt.Sprintf("threads_%d", threads), func(b *testing.B) {
			cfg := Config{NumRuns: 1, NumThreads: threads, NumSteps: 256}
			out := make([]float32, cfg.RunLength())
			start := StartState(1)

			b.SetBytes(int64(len(out) * 4))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := Generate(ctx, cfg, start, DefaultJumpTable(), out, UnitFloat32); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

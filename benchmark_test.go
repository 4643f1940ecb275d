package gpudbn

import (
	"fmt"
	"testing"
)

// Benchmark the tiled multiply for each strategy
func BenchmarkMultiply(b *testing.B) {
	ctx := NewContext()
	defer ctx.Destroy()

	for _, kind := range []StrategyKind{Plain, MultiplyByTranspose, TransposeAndMultiply} {
		for _, n := range []int{64, 256, 512} {
			b.Run(fmt.Sprintf("%v/N_%d", kind, n), func(b *testing.B) {
				a := GenerateMatrixFloat32(n, n, 1)
				m := GenerateMatrixFloat32(n, n, 2)
				c := make([]float32, n*n)
				s := ctx.Strategy(kind)

				b.SetBytes(int64(3 * n * n * 4))
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					if err := ctx.Multiply(s, c, a, m, n, n, n, n); err != nil {
						b.Fatal(err)
					}
				}

				flops := float64(2 * n * n * n)
				timePerOp := b.Elapsed().Seconds() / float64(b.N)
				b.ReportMetric(flops/timePerOp/1e9, "GFLOPS")
			})
		}
	}
}

// Benchmark the fused forward kernel on non-aligned layer sizes
func BenchmarkMultiplyVectorByMatrixAndTransformTwice(b *testing.B) {
	ctx := NewContext()
	defer ctx.Destroy()

	for _, shape := range [][2]int{{500, 784}, {2000, 500}, {10, 2000}} {
		hA, wA := shape[0], shape[1]
		b.Run(fmt.Sprintf("%dx%d", hA, wA), func(b *testing.B) {
			a := GenerateMatrixFloat32(hA, wA, 1)
			x := GenerateFloat32(wA, 2)
			y := make([]float32, hA)
			y2 := make([]float32, hA)

			b.SetBytes(int64((hA*wA + wA + 2*hA) * 4))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := ctx.MultiplyVectorByMatrixAndTransformTwice(y, y2, a, x, hA, wA, Sigmoid, DSigmoid); err != nil {
					b.Fatal(err)
				}
			}

			flops := float64(2 * hA * wA)
			timePerOp := b.Elapsed().Seconds() / float64(b.N)
			b.ReportMetric(flops/timePerOp/1e9, "GFLOPS")
		})
	}
}

// Benchmark elementwise launches, dominated by launch overhead at small N
func BenchmarkOuterProduct(b *testing.B) {
	ctx := NewContext()
	defer ctx.Destroy()

	for _, n := range []int{64, 512, 2048} {
		b.Run(fmt.Sprintf("N_%d", n), func(b *testing.B) {
			v := GenerateFloat32(n, 1)
			w := GenerateFloat32(n, 2)
			a := make([]float32, n*n)

			b.SetBytes(int64(n * n * 4))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := ctx.OuterProduct(a, v, w); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

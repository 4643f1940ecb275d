package gpudbn

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Kernel methods may be called from many goroutines sharing one context.
func TestConcurrentKernelCalls(t *testing.T) {
	ctx := newTestContext(t)
	const callers = 16
	const hA, wA = 37, 29

	a := GenerateMatrixFloat32(hA, wA, 1)
	want := make([][]float32, callers)
	xs := make([][]float32, callers)
	for i := range xs {
		xs[i] = GenerateFloat32Range(wA, uint64(10+i), -1, 1)
		want[i] = Reference{}.MultiplyVectorByMatrix(a, xs[i], hA, wA)
	}

	var wg sync.WaitGroup
	got := make([][]float32, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			y := make([]float32, hA)
			for rep := 0; rep < 20 && errs[i] == nil; rep++ {
				errs[i] = ctx.MultiplyVectorByMatrix(y, a, xs[i], hA, wA)
			}
			got[i] = y
		}(i)
	}
	wg.Wait()

	for i := range got {
		require.NoError(t, errs[i])
		assert.Equal(t, want[i], got[i], "caller %d", i)
	}
}

// Non-finite operands propagate through the kernels the same way they
// propagate through the reference.
func TestNonFiniteOperands(t *testing.T) {
	ctx := newTestContext(t)
	a := GenerateMatrixFloat32(8, 8, 3)
	b := GenerateMatrixFloat32(8, 8, 4)
	a[9] = float32(math.NaN())
	b[20] = float32(math.Inf(1))

	for _, kind := range []StrategyKind{Plain, MultiplyByTranspose, TransposeAndMultiply} {
		c, _, _, err := ctx.MultiplyInto(ctx.Strategy(kind), a, b, 8, 8, 8, 8)
		require.NoError(t, err)
		VerifyOrFail(t, kind.String(), Reference{}.Multiply(kind, a, b, 8, 8, 8, 8), c, DefaultTolerance())
	}
}

package gpudbn

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// operandShapes returns A and B shapes for kind given an output of m x n
// and an inner dimension k.
func operandShapes(kind StrategyKind, m, n, k int) (hA, wA, hB, wB int) {
	switch kind {
	case MultiplyByTranspose:
		return m, k, n, k
	case TransposeAndMultiply:
		return k, m, k, n
	default:
		return m, k, k, n
	}
}

func TestMultiplyMatchesReference(t *testing.T) {
	kinds := []StrategyKind{Plain, MultiplyByTranspose, TransposeAndMultiply}
	for _, bs := range []int{1, 2, 4, 8} {
		ctx := newTestContext(t, WithTileSize(bs))
		for _, kind := range kinds {
			for i, shape := range MultiplyShapes() {
				m, k, n := shape[0]*bs, shape[1]*bs, shape[2]*bs
				t.Run(fmt.Sprintf("%v/bs=%d/%dx%dx%d", kind, bs, m, k, n), func(t *testing.T) {
					hA, wA, hB, wB := operandShapes(kind, m, n, k)
					a := GenerateMatrixFloat32(hA, wA, uint64(100+i))
					b := GenerateMatrixFloat32(hB, wB, uint64(200+i))

					c, hC, wC, err := ctx.MultiplyInto(ctx.Strategy(kind), a, b, hA, wA, hB, wB)
					require.NoError(t, err)
					assert.Equal(t, m, hC)
					assert.Equal(t, n, wC)

					want := Reference{}.Multiply(kind, a, b, hA, wA, hB, wB)
					VerifyOrFail(t, "multiply", want, c, GetOperationTolerance("multiply"))
				})
			}
		}
	}
}

func TestMultiplyIdentity(t *testing.T) {
	ctx := newTestContext(t)
	a := GenerateMatrixFloat32(8, 8, 7)
	id := GenerateIdentityMatrix(8)

	for _, kind := range []StrategyKind{Plain, MultiplyByTranspose, TransposeAndMultiply} {
		c, _, _, err := ctx.MultiplyInto(ctx.Strategy(kind), id, a, 8, 8, 8, 8)
		require.NoError(t, err)
		switch kind {
		case MultiplyByTranspose:
			// I·Aᵗ
			want := make([]float32, 64)
			for i := 0; i < 8; i++ {
				for j := 0; j < 8; j++ {
					want[i*8+j] = a[j*8+i]
				}
			}
			assert.Equal(t, want, c)
		default:
			assert.Equal(t, a, c, "%v", kind)
		}
	}
}

func TestMultiplyKnownValues(t *testing.T) {
	ctx := newTestContext(t, WithTileSize(2))
	// [1 2; 3 4]·[5 6; 7 8]
	a := []float32{1, 2, 3, 4}
	b := []float32{5, 6, 7, 8}
	c := make([]float32, 4)

	require.NoError(t, ctx.Multiply(ctx.Strategy(Plain), c, a, b, 2, 2, 2, 2))
	assert.Equal(t, []float32{19, 22, 43, 50}, c)

	require.NoError(t, ctx.Multiply(ctx.Strategy(MultiplyByTranspose), c, a, b, 2, 2, 2, 2))
	assert.Equal(t, []float32{17, 23, 39, 53}, c)

	require.NoError(t, ctx.Multiply(ctx.Strategy(TransposeAndMultiply), c, a, b, 2, 2, 2, 2))
	assert.Equal(t, []float32{26, 30, 38, 44}, c)
}

func TestMultiplyRejectsBadOperands(t *testing.T) {
	ctx := newTestContext(t)
	s := ctx.Strategy(Plain)

	tests := []struct {
		name    string
		c, a, b []float32
		dims    [4]int
		wantErr error
	}{
		{"unaligned", make([]float32, 36), make([]float32, 36), make([]float32, 36), [4]int{6, 6, 6, 6}, ErrNotBlockAligned},
		{"inner", make([]float32, 16), make([]float32, 32), make([]float32, 16), [4]int{4, 8, 4, 4}, ErrDimensionMismatch},
		{"short_a", make([]float32, 16), make([]float32, 15), make([]float32, 16), [4]int{4, 4, 4, 4}, ErrDimensionMismatch},
		{"short_c", make([]float32, 8), make([]float32, 16), make([]float32, 16), [4]int{4, 4, 4, 4}, ErrDimensionMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ctx.Multiply(s, tt.c, tt.a, tt.b, tt.dims[0], tt.dims[1], tt.dims[2], tt.dims[3])
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestMultiplyPaddedOperands(t *testing.T) {
	ctx := newTestContext(t)
	const hA, wA, wB = 5, 7, 3
	a := GenerateMatrixFloat32(hA, wA, 1)
	b := GenerateMatrixFloat32(wA, wB, 2)

	ap, hAp, wAp, err := PadMatrix(a, hA, wA, ctx.TileSize())
	require.NoError(t, err)
	bp, hBp, wBp, err := PadMatrix(b, wA, wB, ctx.TileSize())
	require.NoError(t, err)

	cp, hCp, wCp, err := ctx.MultiplyInto(ctx.Strategy(Plain), ap, bp, hAp, wAp, hBp, wBp)
	require.NoError(t, err)
	c, err := UnpadMatrix(cp, hCp, wCp, hA, wB)
	require.NoError(t, err)

	VerifyOrFail(t, "padded", Reference{}.Multiply(Plain, a, b, hA, wA, wA, wB), c, GetOperationTolerance("multiply"))
}

package gpudbn

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOuterProduct(t *testing.T) {
	ctx := newTestContext(t)
	v := []float32{1, 2, 3, 4}
	a := make([]float32, 16)

	require.NoError(t, ctx.OuterProduct(a, v, v))
	assert.Equal(t, []float32{1, 2, 3, 4}, a[0:4])
	assert.Equal(t, []float32{4, 8, 12, 16}, a[12:16])
	assert.Equal(t, Reference{}.OuterProduct(v, v), a)

	rect := make([]float32, 6)
	require.NoError(t, ctx.OuterProduct(rect, []float32{1, -1}, []float32{2, 3, 4}))
	assert.Equal(t, []float32{2, 3, 4, -2, -3, -4}, rect)

	err := ctx.OuterProduct(make([]float32, 15), v, v)
	assert.True(t, errors.Is(err, ErrDimensionMismatch))
}

func TestActivate(t *testing.T) {
	ctx := newTestContext(t)
	in := []float32{0.1, 0.5, 0.9, 0.5, 0}
	draws := []float32{0.2, 0.5, 0.1, 0.6, 0}
	out := make([]float32, len(in))

	require.NoError(t, ctx.Activate(out, in, draws, nil))
	// p >= draw fires, ties included
	assert.Equal(t, []float32{0, 1, 1, 0, 1}, out)
	assert.Equal(t, Reference{}.Activate(in, draws, nil), out)

	logits := []float32{-20, 0, 20}
	out = make([]float32, 3)
	require.NoError(t, ctx.Activate(out, logits, []float32{0.5, 0.5, 0.5}, Sigmoid))
	assert.Equal(t, []float32{0, 1, 1}, out)

	err := ctx.Activate(out, logits, draws, nil)
	assert.True(t, errors.Is(err, ErrDimensionMismatch))
}

func TestTransformRange(t *testing.T) {
	ctx := newTestContext(t)
	in := GenerateSequence(40, 1, 1)
	out := make([]float32, len(in))
	double := func(x float32) float32 { return 2 * x }

	require.NoError(t, ctx.Transform(out, in, 10, 25, double))
	assert.Equal(t, Reference{}.Transform(in, 10, 25, double), out)
	assert.Equal(t, float32(0), out[9])
	assert.Equal(t, float32(22), out[10])
	assert.Equal(t, float32(70), out[34])
	assert.Equal(t, float32(0), out[35])

	// in place
	require.NoError(t, ctx.Transform(in, in, 0, len(in), double))
	assert.Equal(t, float32(80), in[39])

	assert.True(t, errors.Is(ctx.Transform(out, in, 30, 20, double), ErrBadRange))
	assert.True(t, errors.Is(ctx.Transform(out, in, -1, 2, double), ErrBadRange))
	assert.True(t, IsInvalidArgError(ctx.Transform(out, in, 0, 1, nil)))
}

func TestPointwiseOps(t *testing.T) {
	ctx := newTestContext(t)
	lhs := GenerateFloat32Range(50, 1, -2, 2)
	rhs := GenerateFloat32Range(50, 2, -2, 2)
	out := make([]float32, 50)
	var ref Reference

	for name, tc := range map[string]struct {
		run func() error
		op  BinaryOp
	}{
		"add":      {func() error { return ctx.PointwiseAdd(out, lhs, rhs) }, Add},
		"subtract": {func() error { return ctx.PointwiseSubtract(out, lhs, rhs) }, Subtract},
		"multiply": {func() error { return ctx.PointwiseMultiply(out, lhs, rhs) }, Multiply},
	} {
		require.NoError(t, tc.run(), name)
		assert.Equal(t, ref.PointwiseBinary(tc.op, lhs, rhs), out, name)
	}

	larger := func(l, r float32) float32 {
		if l > r {
			return l
		}
		return r
	}
	require.NoError(t, ctx.PointwiseBinary(larger, out, lhs, rhs))
	assert.Equal(t, ref.PointwiseBinary(larger, lhs, rhs), out)

	assert.True(t, errors.Is(ctx.PointwiseAdd(out, lhs, rhs[:49]), ErrDimensionMismatch))
	assert.True(t, IsInvalidArgError(ctx.PointwiseBinary(nil, out, lhs, rhs)))
}

func TestScalarMultiply(t *testing.T) {
	ctx := newTestContext(t)
	a := GenerateSequence(33, 0, 0.5)
	want := Reference{}.Scale(a, -3)
	require.NoError(t, ctx.ScalarMultiply(a, -3))
	assert.Equal(t, want, a)
	require.NoError(t, ctx.ScalarMultiply(nil, 2))
}

func TestActivateFirstRowAndColumn(t *testing.T) {
	ctx := newTestContext(t)
	const h, w = 3, 4

	a := GenerateSequence(h*w, 10, 1)
	require.NoError(t, ctx.ActivateFirstRow(a, h, w, 2))
	assert.Equal(t, []float32{1, 1, 0, 0}, a[:w])
	assert.Equal(t, GenerateSequence(h*w, 10, 1)[w:], a[w:], "other rows untouched")

	a = GenerateSequence(h*w, 10, 1)
	require.NoError(t, ctx.ActivateFirstColumn(a, h, w, 2))
	assert.Equal(t, []float32{1, 11, 12, 13, 1, 15, 16, 17, 0, 19, 20, 21}, a)

	assert.True(t, errors.Is(ctx.ActivateFirstRow(a, h, w+1, 2), ErrDimensionMismatch))
	require.NoError(t, ctx.ActivateFirstColumn(nil, 0, 0, 0))
}

func TestCoerce(t *testing.T) {
	ctx := newTestContext(t)
	a := GenerateSequence(20, 1, 1)

	require.NoError(t, ctx.Coerce(a, 3, 7, -1))
	for i, v := range a {
		if i >= 3 && i <= 7 {
			assert.Equal(t, float32(-1), v, "index %d", i)
		} else {
			assert.Equal(t, float32(i+1), v, "index %d", i)
		}
	}

	require.NoError(t, ctx.Coerce(a, 19, 19, 0))
	assert.Equal(t, float32(0), a[19])

	assert.True(t, errors.Is(ctx.Coerce(a, 5, 20, 0), ErrBadRange))
	assert.True(t, errors.Is(ctx.Coerce(a, 6, 4, 0), ErrBadRange))
}

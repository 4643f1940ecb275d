package gpudbn

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestContext creates a context with small blocks so that tests cover
// multi-block grids and partial tiles without large inputs.
func newTestContext(t testing.TB, opts ...Option) *Context {
	t.Helper()
	base := []Option{WithWorkers(4), WithTileSize(4), WithVectorBlockSize(8), WithElementBlockSize(16)}
	ctx := NewContext(append(base, opts...)...)
	t.Cleanup(ctx.Destroy)
	return ctx
}

// VerifyOrFail compares actual with expected and fails the test if the
// result is outside tol.
func VerifyOrFail(t testing.TB, name string, expected, actual []float32, tol ToleranceConfig) {
	t.Helper()
	result := VerifyFloat32Array(expected, actual, tol)
	require.True(t, result.IsAcceptable(tol), "%s:\n%s", name, result)
}

package gpudbn

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateFloat32(t *testing.T) {
	data1 := GenerateFloat32(100, 12345)
	data2 := GenerateFloat32(100, 12345)
	assert.Equal(t, data1, data2, "generation must be deterministic")
	assert.NotEqual(t, data1, GenerateFloat32(100, 54321))

	for i, v := range data1 {
		assert.True(t, v >= 0 && v < 1, "value %d out of range [0, 1): %f", i, v)
	}
}

func TestGenerateMatrixFloat32(t *testing.T) {
	m := GenerateMatrixFloat32(16, 9, 42)
	assert.Len(t, m, 16*9)
	for i, v := range m {
		assert.True(t, v >= -1 && v <= 1, "value %d out of range: %f", i, v)
	}
}

func TestGenerateHelpers(t *testing.T) {
	assert.Equal(t, []float32{1, 0, 0, 0, 1, 0, 0, 0, 1}, GenerateIdentityMatrix(3))
	assert.Equal(t, []float32{1, 2, 3, 4}, GenerateSequence(4, 1, 1))
}

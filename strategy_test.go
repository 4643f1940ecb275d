package gpudbn

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrategyKindString(t *testing.T) {
	assert.Equal(t, "Plain", Plain.String())
	assert.Equal(t, "MultiplyByTranspose", MultiplyByTranspose.String())
	assert.Equal(t, "TransposeAndMultiply", TransposeAndMultiply.String())
	assert.Equal(t, "StrategyKind(7)", StrategyKind(7).String())
}

func TestTileSweeps(t *testing.T) {
	const bs = 4
	tests := []struct {
		name   string
		kind   StrategyKind
		hA, wA int
		hB, wB int
		by, bx int
		wantA  TileSweep
		wantB  TileSweep
	}{
		{
			// A 8x12, B 12x16, output tile (1, 2)
			name: "plain", kind: Plain, hA: 8, wA: 12, hB: 12, wB: 16, by: 1, bx: 2,
			wantA: TileSweep{Begin: 48, End: 56, Step: 4},
			wantB: TileSweep{Begin: 8, End: 136, Step: 64},
		},
		{
			// A 8x12, B 16x12: both sweeps run along row bands
			name: "by_transpose", kind: MultiplyByTranspose, hA: 8, wA: 12, hB: 16, wB: 12, by: 1, bx: 3,
			wantA: TileSweep{Begin: 48, End: 56, Step: 4},
			wantB: TileSweep{Begin: 144, End: 152, Step: 4},
		},
		{
			// A 12x8, B 12x16: both sweeps run down the rows
			name: "transpose_and", kind: TransposeAndMultiply, hA: 12, wA: 8, hB: 12, wB: 16, by: 1, bx: 2,
			wantA: TileSweep{Begin: 4, End: 68, Step: 32},
			wantB: TileSweep{Begin: 8, End: 136, Step: 64},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Strategy{Kind: tt.kind, BlockSize: bs}
			a := s.ATiles(tt.hA, tt.wA, tt.by)
			b := s.BTiles(tt.hB, tt.wB, tt.bx)
			assert.Equal(t, tt.wantA, a)
			assert.Equal(t, tt.wantB, b)
			assert.Equal(t, a.Tiles(), b.Tiles(), "sweeps must pair up")
			assert.Equal(t, 3, a.Tiles())
		})
	}
}

func TestTileSweepEmpty(t *testing.T) {
	s := Strategy{Kind: Plain, BlockSize: 4}
	assert.Equal(t, 0, s.ATiles(4, 0, 0).Tiles())
	assert.Equal(t, 0, TileSweep{Begin: 0, End: 8, Step: 0}.Tiles())
}

func TestProductIndexing(t *testing.T) {
	// 2x2 tiles: as = [a00 a01; a10 a11], bs = [b00 b01; b10 b11]
	as := []float32{1, 2, 3, 4}
	bsub := []float32{10, 20, 30, 40}

	plain := Strategy{Kind: Plain, BlockSize: 2}
	assert.Equal(t, float32(3*20), plain.Product(as, bsub, 1, 0, 1)) // a[1][0]*b[0][1]
	byT := Strategy{Kind: MultiplyByTranspose, BlockSize: 2}
	assert.Equal(t, float32(3*30), byT.Product(as, bsub, 1, 0, 1)) // a[1][0]*b[1][0]
	tAnd := Strategy{Kind: TransposeAndMultiply, BlockSize: 2}
	assert.Equal(t, float32(2*20), tAnd.Product(as, bsub, 1, 0, 1)) // a[0][1]*b[0][1]
}

func TestOutputIndex(t *testing.T) {
	s := Strategy{Kind: Plain, BlockSize: 4}
	// C has 16 columns; tile (1, 2), thread (3, 1) is element (7, 9)
	assert.Equal(t, 7*16+9, s.OutputIndex(16, 1, 2, 3, 1))
}

func TestOutputShape(t *testing.T) {
	tests := []struct {
		name           string
		s              Strategy
		hA, wA, hB, wB int
		hC, wC         int
		wantErr        error
	}{
		{"plain", Strategy{Plain, 4}, 8, 12, 12, 4, 8, 4, nil},
		{"by_transpose", Strategy{MultiplyByTranspose, 4}, 8, 12, 16, 12, 8, 16, nil},
		{"transpose_and", Strategy{TransposeAndMultiply, 4}, 12, 8, 12, 16, 8, 16, nil},
		{"plain_inner", Strategy{Plain, 4}, 8, 12, 8, 4, 0, 0, ErrDimensionMismatch},
		{"by_transpose_inner", Strategy{MultiplyByTranspose, 4}, 8, 12, 8, 8, 0, 0, ErrDimensionMismatch},
		{"transpose_and_inner", Strategy{TransposeAndMultiply, 4}, 8, 8, 12, 8, 0, 0, ErrDimensionMismatch},
		{"unaligned", Strategy{Plain, 4}, 6, 8, 8, 4, 0, 0, ErrNotBlockAligned},
		{"negative", Strategy{Plain, 4}, -4, 8, 8, 4, 0, 0, ErrDimensionMismatch},
		{"tile_too_large", Strategy{Plain, 64}, 64, 64, 64, 64, 0, 0, ErrBadBlockSize},
		{"zero_block", Strategy{Plain, 0}, 4, 4, 4, 4, 0, 0, ErrBadBlockSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hC, wC, err := tt.s.OutputShape(tt.hA, tt.wA, tt.hB, tt.wB)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.True(t, IsInvalidArgError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.hC, hC)
			assert.Equal(t, tt.wC, wC)
		})
	}

	_, _, err := Strategy{StrategyKind(9), 4}.OutputShape(4, 4, 4, 4)
	assert.True(t, IsInvalidArgError(err))
}

package xorshift7

import (
	"fmt"
	"sync"

	"github.com/LynnColeArt/gpudbn"
)

// Table geometry. The generator step is a linear map on 256 state bits, so
// it is a 256x256 binary matrix. A row is stored as eight words; bit b of
// word w is column w*32+b.
const (
	Levels        = 32
	StateBits     = StateWords * 32
	RowWords      = StateWords
	MatrixWords   = StateBits * RowWords
	JumpTableSize = Levels * MatrixWords
)

// JumpTable holds M^(2^i) for i in [0, Levels), where M is the one-step
// transition matrix. Words are laid out level by level; within a level,
// row word*32+bit holds the coefficients of that output bit. A JumpTable is
// read-only after construction and safe for concurrent use.
//
// Each level is a full 256x256 matrix, 2048 words, so the table holds
// JumpTableSize = 65536 words. A packed 32x8x32 layout of 8192 words is too
// small to hold an exact 256-bit transition and is not accepted.
type JumpTable struct {
	words []uint32
}

var (
	defaultTable     *JumpTable
	defaultTableOnce sync.Once
)

// DefaultJumpTable returns the process-wide table, built on first use.
func DefaultJumpTable() *JumpTable {
	defaultTableOnce.Do(func() {
		defaultTable = NewJumpTable()
	})
	return defaultTable
}

// NewJumpTable computes the jump-ahead table by repeated squaring of the
// transition matrix.
func NewJumpTable() *JumpTable {
	t := &JumpTable{words: make([]uint32, JumpTableSize)}
	m := transitionMatrix()
	copy(t.level(0), m)
	for i := 1; i < Levels; i++ {
		prev := t.level(i - 1)
		mulMatrix(t.level(i), prev, prev)
	}
	return t
}

// JumpTableFromWords wraps a precomputed table in the flat layout described
// on JumpTable. The slice is retained and must not be modified afterwards.
func JumpTableFromWords(words []uint32) (*JumpTable, error) {
	if len(words) != JumpTableSize {
		return nil, gpudbn.NewInvalidArgError("JumpTableFromWords",
			fmt.Sprintf("have %d words, want %d", len(words), JumpTableSize))
	}
	return &JumpTable{words: words}, nil
}

// Words returns the flat table. Callers must not modify it.
func (t *JumpTable) Words() []uint32 {
	return t.words
}

// MaxDistance is the largest jump the table can express.
func (t *JumpTable) MaxDistance() uint64 {
	return 1<<Levels - 1
}

func (t *JumpTable) level(i int) []uint32 {
	return t.words[i*MatrixWords : (i+1)*MatrixWords]
}

// JumpAhead returns the state reached after distance steps from state. Level
// i of the table is applied iff bit i of distance is set.
func JumpAhead(state [StateWords]uint32, t *JumpTable, distance uint64) ([StateWords]uint32, error) {
	if distance > t.MaxDistance() {
		return state, gpudbn.NewInvalidArgError("JumpAhead",
			fmt.Sprintf("distance %d exceeds table range %d", distance, t.MaxDistance()))
	}
	for i := 0; distance != 0; i++ {
		if distance&1 != 0 {
			state = mulVector(t.level(i), state)
		}
		distance >>= 1
	}
	return state, nil
}

// parity32 folds x to the XOR of all its bits.
func parity32(x uint32) uint32 {
	x ^= x >> 16
	x ^= x >> 8
	x ^= x >> 4
	x ^= x >> 2
	x ^= x >> 1
	return x & 1
}

// mulVector computes m·s over GF(2).
func mulVector(m []uint32, s [StateWords]uint32) [StateWords]uint32 {
	var out [StateWords]uint32
	for w := 0; w < StateWords; w++ {
		var word uint32
		for b := 0; b < 32; b++ {
			row := m[(w*32+b)*RowWords : (w*32+b+1)*RowWords]
			var acc uint32
			for k := 0; k < RowWords; k++ {
				acc ^= row[k] & s[k]
			}
			word |= parity32(acc) << b
		}
		out[w] = word
	}
	return out
}

// mulMatrix sets dst = a·b over GF(2). dst must not alias a or b.
func mulMatrix(dst, a, b []uint32) {
	for i := range dst {
		dst[i] = 0
	}
	for r := 0; r < StateBits; r++ {
		out := dst[r*RowWords : (r+1)*RowWords]
		arow := a[r*RowWords : (r+1)*RowWords]
		for c := 0; c < StateBits; c++ {
			if arow[c/32]>>(c%32)&1 == 0 {
				continue
			}
			brow := b[c*RowWords : (c+1)*RowWords]
			for k := range out {
				out[k] ^= brow[k]
			}
		}
	}
}

// transitionMatrix builds M column by column: column c is the image of the
// c-th basis state under one generator step.
func transitionMatrix() []uint32 {
	m := make([]uint32, MatrixWords)
	for c := 0; c < StateBits; c++ {
		var e [StateWords]uint32
		e[c/32] = 1 << (c % 32)
		img := step(e)
		for r := 0; r < StateBits; r++ {
			if img[r/32]>>(r%32)&1 != 0 {
				m[r*RowWords+c/32] |= 1 << (c % 32)
			}
		}
	}
	return m
}

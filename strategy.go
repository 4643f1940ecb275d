package gpudbn

import "fmt"

// StrategyKind selects which operand of a tiled multiply is logically
// transposed.
type StrategyKind int

const (
	// Plain computes C = A·B
	Plain StrategyKind = iota
	// MultiplyByTranspose computes C = A·Bᵗ
	MultiplyByTranspose
	// TransposeAndMultiply computes C = Aᵗ·B
	TransposeAndMultiply
)

func (k StrategyKind) String() string {
	switch k {
	case Plain:
		return "Plain"
	case MultiplyByTranspose:
		return "MultiplyByTranspose"
	case TransposeAndMultiply:
		return "TransposeAndMultiply"
	default:
		return fmt.Sprintf("StrategyKind(%d)", int(k))
	}
}

// Strategy describes how a tiled multiply walks its operands. It is pure
// arithmetic: every method is a function of its integer arguments.
//
// Tiles are BlockSize x BlockSize. For every strategy the tile of an
// operand starting at offset o is loaded as tile[ty][tx] = M[o + w*ty + tx],
// where w is the operand width; the variants differ in where the tile sweep
// starts, how it steps, and which tile indices the element product reads.
type Strategy struct {
	Kind      StrategyKind
	BlockSize int
}

// TileSweep is the linear sweep of tile start offsets through one operand:
// Begin, Begin+Step, ... up to and including End. End < Begin means the
// sweep is empty.
type TileSweep struct {
	Begin, End, Step int
}

// Tiles returns the number of tiles in the sweep.
func (s TileSweep) Tiles() int {
	if s.End < s.Begin || s.Step <= 0 {
		return 0
	}
	return (s.End-s.Begin)/s.Step + 1
}

func sweep(begin, step, tiles int) TileSweep {
	return TileSweep{Begin: begin, End: begin + (tiles-1)*step, Step: step}
}

// ATiles returns the sweep through A for the output block row blockRow.
func (s Strategy) ATiles(hA, wA, blockRow int) TileSweep {
	bs := s.BlockSize
	switch s.Kind {
	case TransposeAndMultiply:
		// down the rows of A, within columns blockRow*bs..
		return sweep(bs*blockRow, bs*wA, hA/bs)
	default:
		// along a band of bs rows of A
		return sweep(wA*bs*blockRow, bs, wA/bs)
	}
}

// BTiles returns the sweep through B for the output block column blockCol.
func (s Strategy) BTiles(hB, wB, blockCol int) TileSweep {
	bs := s.BlockSize
	switch s.Kind {
	case MultiplyByTranspose:
		// along a band of bs rows of B
		return sweep(wB*bs*blockCol, bs, wB/bs)
	default:
		// down the rows of B, within columns blockCol*bs..
		return sweep(bs*blockCol, bs*wB, hB/bs)
	}
}

// Product returns the k-th term of the accumulation for thread (ty, tx)
// given the two cached tiles, stored row-major with BlockSize columns.
// The product is rounded before it is returned so it is never contracted
// into a fused multiply-add with the accumulation.
func (s Strategy) Product(as, bs []float32, ty, k, tx int) float32 {
	n := s.BlockSize
	switch s.Kind {
	case MultiplyByTranspose:
		return float32(as[ty*n+k] * bs[tx*n+k])
	case TransposeAndMultiply:
		return float32(as[k*n+ty] * bs[k*n+tx])
	default:
		return float32(as[ty*n+k] * bs[k*n+tx])
	}
}

// OutputIndex returns the flat index in C (wC columns) written by thread
// (ty, tx) of output tile (blockRow, blockCol).
func (s Strategy) OutputIndex(wC, blockRow, blockCol, ty, tx int) int {
	bs := s.BlockSize
	return wC*bs*blockRow + bs*blockCol + wC*ty + tx
}

// OutputShape validates operand dimensions and returns the shape of C.
// All four operand dimensions must be multiples of the block
// size; the executor has no boundary policy for partial tiles.
func (s Strategy) OutputShape(hA, wA, hB, wB int) (hC, wC int, err error) {
	const op = "Strategy.OutputShape"
	if s.BlockSize < 1 || s.BlockSize*s.BlockSize > MaxThreadsPerBlock {
		return 0, 0, newPreconditionError(op, ErrBadBlockSize, "tile %dx%d does not fit in a block", s.BlockSize, s.BlockSize)
	}
	if err := checkDims(op, "A", hA, wA); err != nil {
		return 0, 0, err
	}
	if err := checkDims(op, "B", hB, wB); err != nil {
		return 0, 0, err
	}
	switch s.Kind {
	case Plain:
		if wA != hB {
			return 0, 0, newPreconditionError(op, ErrDimensionMismatch, "%v: width of A (%d) != height of B (%d)", s.Kind, wA, hB)
		}
		hC, wC = hA, wB
	case MultiplyByTranspose:
		if wA != wB {
			return 0, 0, newPreconditionError(op, ErrDimensionMismatch, "%v: width of A (%d) != width of B (%d)", s.Kind, wA, wB)
		}
		hC, wC = hA, hB
	case TransposeAndMultiply:
		if hA != hB {
			return 0, 0, newPreconditionError(op, ErrDimensionMismatch, "%v: height of A (%d) != height of B (%d)", s.Kind, hA, hB)
		}
		hC, wC = wA, wB
	default:
		return 0, 0, NewInvalidArgError(op, fmt.Sprintf("unknown strategy %v", s.Kind))
	}
	for _, d := range [...]int{hA, wA, hB, wB} {
		if d%s.BlockSize != 0 {
			return 0, 0, newPreconditionError(op, ErrNotBlockAligned,
				"%v: A %dx%d, B %dx%d not multiples of block size %d", s.Kind, hA, wA, hB, wB, s.BlockSize)
		}
	}
	return hC, wC, nil
}

package gpudbn

// Multiply computes the product selected by strategy into c.
//
//	Plain:                c (hA x wB) = A·B
//	MultiplyByTranspose:  c (hA x hB) = A·Bᵗ
//	TransposeAndMultiply: c (wA x wB) = Aᵗ·B
//
// Every dimension must be a multiple of strategy.BlockSize; use PadMatrix
// first for other sizes. Accumulation is float32 in ascending k order, the
// same order Reference.Multiply uses.
func (ctx *Context) Multiply(strategy Strategy, c, a, b []float32, hA, wA, hB, wB int) error {
	const op = "Multiply"
	hC, wC, err := strategy.OutputShape(hA, wA, hB, wB)
	if err != nil {
		return err
	}
	if err := checkMatrix(op, "A", a, hA, wA); err != nil {
		return err
	}
	if err := checkMatrix(op, "B", b, hB, wB); err != nil {
		return err
	}
	if err := checkMatrix(op, "C", c, hC, wC); err != nil {
		return err
	}

	bs := strategy.BlockSize
	grid := Dim3{X: wC / bs, Y: hC / bs, Z: 1}
	block := Dim3{X: bs, Y: bs, Z: 1}
	return ctx.run(op, tiledMultiplyKernel(strategy, c, a, b, hA, wA, hB, wB, wC), grid, block)
}

// MultiplyInto is Multiply with the output allocated and returned.
func (ctx *Context) MultiplyInto(strategy Strategy, a, b []float32, hA, wA, hB, wB int) (c []float32, hC, wC int, err error) {
	hC, wC, err = strategy.OutputShape(hA, wA, hB, wB)
	if err != nil {
		return nil, 0, 0, err
	}
	c = make([]float32, hC*wC)
	if err := ctx.Multiply(strategy, c, a, b, hA, wA, hB, wB); err != nil {
		return nil, 0, 0, err
	}
	return c, hC, wC, nil
}

func tiledMultiplyKernel(s Strategy, c, a, b []float32, hA, wA, hB, wB, wC int) BlockFunc {
	bs := s.BlockSize
	return func(blk *Block) {
		bx, by := blk.Idx.X, blk.Idx.Y
		as := blk.Shared(bs * bs)
		bsub := blk.Shared(bs * bs)
		acc := blk.Shared(bs * bs)
		for i := range acc {
			acc[i] = 0
		}

		aSweep := s.ATiles(hA, wA, by)
		bSweep := s.BTiles(hB, wB, bx)
		for ao, bo := aSweep.Begin, bSweep.Begin; ao <= aSweep.End; ao, bo = ao+aSweep.Step, bo+bSweep.Step {
			blk.Threads(func(tid ThreadID) {
				ty, tx := tid.ThreadIdx.Y, tid.ThreadIdx.X
				as[ty*bs+tx] = a[ao+wA*ty+tx]
				bsub[ty*bs+tx] = b[bo+wB*ty+tx]
			})
			// barrier: tiles loaded

			blk.Threads(func(tid ThreadID) {
				ty, tx := tid.ThreadIdx.Y, tid.ThreadIdx.X
				sum := acc[ty*bs+tx]
				for k := 0; k < bs; k++ {
					sum += s.Product(as, bsub, ty, k, tx)
				}
				acc[ty*bs+tx] = sum
			})
			// barrier: tiles consumed
		}

		blk.Threads(func(tid ThreadID) {
			ty, tx := tid.ThreadIdx.Y, tid.ThreadIdx.X
			c[s.OutputIndex(wC, by, bx, ty, tx)] = acc[ty*bs+tx]
		})
	}
}

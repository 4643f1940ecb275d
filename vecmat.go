package gpudbn

// Vector-matrix kernels. Each thread owns one output element and walks the
// inner dimension in tiles of the context's vector block size, caching the
// tile of x in shared memory once per tile. Matrix or vector indices at or
// beyond the valid extent contribute exactly zero, so no dimension needs to
// be a multiple of the block size.

// Transform is an elementwise function applied to a kernel result.
type Transform func(x float32) float32

// Transform2 derives a second value from a transformed result fx and the
// untransformed value x, e.g. an activation derivative.
type Transform2 func(fx, x float32) float32

// MultiplyVectorByMatrix computes y = A·x for A of hA x wA.
func (ctx *Context) MultiplyVectorByMatrix(y, a, x []float32, hA, wA int) error {
	return ctx.vectorMatrix("MultiplyVectorByMatrix", y, nil, a, x, hA, wA, false, nil, nil)
}

// MultiplyVectorByTransposeOfMatrix computes y = Aᵗ·x for A of hA x wA.
func (ctx *Context) MultiplyVectorByTransposeOfMatrix(y, a, x []float32, hA, wA int) error {
	return ctx.vectorMatrix("MultiplyVectorByTransposeOfMatrix", y, nil, a, x, hA, wA, true, nil, nil)
}

// MultiplyVectorByMatrixAndTransform computes y = f(A·x).
func (ctx *Context) MultiplyVectorByMatrixAndTransform(y, a, x []float32, hA, wA int, f Transform) error {
	return ctx.vectorMatrix("MultiplyVectorByMatrixAndTransform", y, nil, a, x, hA, wA, false, f, nil)
}

// MultiplyVectorByTransposeOfMatrixAndTransform computes y = f(Aᵗ·x).
func (ctx *Context) MultiplyVectorByTransposeOfMatrixAndTransform(y, a, x []float32, hA, wA int, f Transform) error {
	return ctx.vectorMatrix("MultiplyVectorByTransposeOfMatrixAndTransform", y, nil, a, x, hA, wA, true, f, nil)
}

// MultiplyVectorByMatrixAndTransformTwice computes z = A·x, y = f(z) and
// y2 = g(f(z), z) in one pass. Forward passes use it to store an
// activation and its derivative together.
func (ctx *Context) MultiplyVectorByMatrixAndTransformTwice(y, y2, a, x []float32, hA, wA int, f Transform, g Transform2) error {
	const op = "MultiplyVectorByMatrixAndTransformTwice"
	if f == nil || g == nil {
		return NewInvalidArgError(op, "both transforms are required")
	}
	return ctx.vectorMatrix(op, y, y2, a, x, hA, wA, false, f, g)
}

func (ctx *Context) vectorMatrix(op string, y, y2, a, x []float32, hA, wA int, transposed bool, f Transform, g Transform2) error {
	if err := checkMatrix(op, "A", a, hA, wA); err != nil {
		return err
	}
	n, m := hA, wA
	if transposed {
		n, m = wA, hA
	}
	if err := checkVector(op, "x", x, m); err != nil {
		return err
	}
	if err := checkVector(op, "y", y, n); err != nil {
		return err
	}
	if y2 != nil {
		if err := checkVector(op, "y2", y2, n); err != nil {
			return err
		}
	}

	bs := ctx.opts.vectorBlockSize
	kernel := vectorMatrixKernel(y, y2, a, x, n, m, wA, bs, transposed, f, g)
	return ctx.run(op, kernel, Dim1(GridFor(n, bs)), Dim1(bs))
}

// vectorMatrixKernel computes n outputs with an inner dimension of m.
// Element (row, col) of the logical operand is a[row*wA+col], or
// a[col*wA+row] when transposed.
func vectorMatrixKernel(y, y2, a, x []float32, n, m, wA, bs int, transposed bool, f Transform, g Transform2) BlockFunc {
	return func(blk *Block) {
		xs := blk.Shared(bs)
		acc := blk.Shared(bs)
		for i := range acc {
			acc[i] = 0
		}

		for t := 0; t < GridFor(m, bs); t++ {
			base := t * bs
			blk.Threads(func(tid ThreadID) {
				i := base + tid.ThreadIdx.X
				if i < m {
					xs[tid.ThreadIdx.X] = x[i]
				} else {
					xs[tid.ThreadIdx.X] = 0
				}
			})
			// barrier: x tile cached

			blk.Threads(func(tid ThreadID) {
				row := tid.Global()
				sum := acc[tid.ThreadIdx.X]
				for k := 0; k < bs; k++ {
					col := base + k
					var v float32
					if row < n && col < m {
						if transposed {
							v = a[col*wA+row]
						} else {
							v = a[row*wA+col]
						}
					}
					sum += float32(v * xs[k])
				}
				acc[tid.ThreadIdx.X] = sum
			})
			// barrier: x tile consumed
		}

		blk.Threads(func(tid ThreadID) {
			row := tid.Global()
			if row >= n {
				return
			}
			raw := acc[tid.ThreadIdx.X]
			out := raw
			if f != nil {
				out = f(raw)
			}
			y[row] = out
			if y2 != nil {
				y2[row] = g(out, raw)
			}
		})
	}
}

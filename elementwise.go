package gpudbn

// Elementwise kernels run one thread per output element with no barrier.
// Unless stated otherwise an output may alias its own input index for index,
// since every thread reads and writes only its element.

// BinaryOp combines two elements.
type BinaryOp func(lhs, rhs float32) float32

// Pointwise operators for PointwiseBinary.
var (
	Add      BinaryOp = func(l, r float32) float32 { return l + r }
	Subtract BinaryOp = func(l, r float32) float32 { return l - r }
	Multiply BinaryOp = func(l, r float32) float32 { return l * r }
)

func (ctx *Context) elementwise(op string, n int, fn func(i int)) error {
	bs := ctx.opts.elementBlock
	return ctx.runThreads(op, func(tid ThreadID) {
		if i := tid.Global(); i < n {
			fn(i)
		}
	}, Dim1(GridFor(n, bs)), Dim1(bs))
}

// Activate samples binary units: out[i] = 1 if f(in[i]) >= draws[i], else 0.
// draws holds one uniform random number per element. A nil f uses in as
// the probability directly.
func (ctx *Context) Activate(out, in, draws []float32, f Transform) error {
	const op = "Activate"
	if err := checkSameLength(op, []string{"out", "in", "draws"}, out, in, draws); err != nil {
		return err
	}
	return ctx.elementwise(op, len(out), func(i int) {
		p := in[i]
		if f != nil {
			p = f(p)
		}
		if p >= draws[i] {
			out[i] = 1
		} else {
			out[i] = 0
		}
	})
}

// Transform sets out[i] = f(in[i]) for i in [start, start+size) and zeroes
// every other element of out.
func (ctx *Context) Transform(out, in []float32, start, size int, f Transform) error {
	const op = "Transform"
	if f == nil {
		return NewInvalidArgError(op, "nil transform")
	}
	if err := checkSameLength(op, []string{"out", "in"}, out, in); err != nil {
		return err
	}
	if err := checkRange(op, start, start+size, len(out)); err != nil {
		return err
	}
	end := start + size
	return ctx.elementwise(op, len(out), func(i int) {
		if i >= start && i < end {
			out[i] = f(in[i])
		} else {
			out[i] = 0
		}
	})
}

// PointwiseBinary sets out[i] = op(lhs[i], rhs[i]).
func (ctx *Context) PointwiseBinary(fn BinaryOp, out, lhs, rhs []float32) error {
	const op = "PointwiseBinary"
	if fn == nil {
		return NewInvalidArgError(op, "nil operator")
	}
	if err := checkSameLength(op, []string{"out", "lhs", "rhs"}, out, lhs, rhs); err != nil {
		return err
	}
	return ctx.elementwise(op, len(out), func(i int) {
		out[i] = fn(lhs[i], rhs[i])
	})
}

// PointwiseAdd sets out = lhs + rhs.
func (ctx *Context) PointwiseAdd(out, lhs, rhs []float32) error {
	return ctx.PointwiseBinary(Add, out, lhs, rhs)
}

// PointwiseSubtract sets out = lhs - rhs.
func (ctx *Context) PointwiseSubtract(out, lhs, rhs []float32) error {
	return ctx.PointwiseBinary(Subtract, out, lhs, rhs)
}

// PointwiseMultiply sets out = lhs ⊙ rhs.
func (ctx *Context) PointwiseMultiply(out, lhs, rhs []float32) error {
	return ctx.PointwiseBinary(Multiply, out, lhs, rhs)
}

// ScalarMultiply scales a in place by lambda.
func (ctx *Context) ScalarMultiply(a []float32, lambda float32) error {
	return ctx.elementwise("ScalarMultiply", len(a), func(i int) {
		a[i] *= lambda
	})
}

// OuterProduct sets a[i,j] = v[i]*w[j]; a is len(v) x len(w) row-major.
// a must not alias v or w.
func (ctx *Context) OuterProduct(a, v, w []float32) error {
	const op = "OuterProduct"
	if err := checkMatrix(op, "A", a, len(v), len(w)); err != nil {
		return err
	}
	width := len(w)
	return ctx.elementwise(op, len(a), func(i int) {
		a[i] = v[i/width] * w[i%width]
	})
}

// ActivateFirstRow sets row 0 of the h x w matrix a to 1 for columns below
// count and to 0 for the rest. Other rows are left untouched.
func (ctx *Context) ActivateFirstRow(a []float32, h, w, count int) error {
	const op = "ActivateFirstRow"
	if err := checkMatrix(op, "A", a, h, w); err != nil {
		return err
	}
	if h == 0 {
		return nil
	}
	return ctx.elementwise(op, w, func(j int) {
		if j < count {
			a[j] = 1
		} else {
			a[j] = 0
		}
	})
}

// ActivateFirstColumn sets column 0 of the h x w matrix a to 1 for rows
// below count and to 0 for the rest. Other columns are left untouched.
func (ctx *Context) ActivateFirstColumn(a []float32, h, w, count int) error {
	const op = "ActivateFirstColumn"
	if err := checkMatrix(op, "A", a, h, w); err != nil {
		return err
	}
	if w == 0 {
		return nil
	}
	return ctx.elementwise(op, h, func(i int) {
		if i < count {
			a[i*w] = 1
		} else {
			a[i*w] = 0
		}
	})
}

// Coerce sets every element with index in [minIndex, maxIndex] to value.
func (ctx *Context) Coerce(a []float32, minIndex, maxIndex int, value float32) error {
	const op = "Coerce"
	if err := checkRange(op, minIndex, maxIndex+1, len(a)); err != nil {
		return err
	}
	n := maxIndex - minIndex + 1
	return ctx.elementwise(op, n, func(i int) {
		a[minIndex+i] = value
	})
}

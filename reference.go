// Package gpudbn reference implementations for verification
package gpudbn

// Reference contains simple, sequential implementations of every kernel.
// They use the same float32 summation order as the accelerated kernels, so
// the two paths differ by rounding only. Reference methods do not validate
// their arguments beyond what indexing implies.
type Reference struct{}

// Multiply computes the product selected by kind without tiling.
func (Reference) Multiply(kind StrategyKind, a, b []float32, hA, wA, hB, wB int) []float32 {
	switch kind {
	case MultiplyByTranspose:
		c := make([]float32, hA*hB)
		for i := 0; i < hA; i++ {
			for j := 0; j < hB; j++ {
				var sum float32
				for l := 0; l < wA; l++ {
					sum += float32(a[i*wA+l] * b[j*wB+l])
				}
				c[i*hB+j] = sum
			}
		}
		return c
	case TransposeAndMultiply:
		c := make([]float32, wA*wB)
		for i := 0; i < wA; i++ {
			for j := 0; j < wB; j++ {
				var sum float32
				for l := 0; l < hA; l++ {
					sum += float32(a[l*wA+i] * b[l*wB+j])
				}
				c[i*wB+j] = sum
			}
		}
		return c
	default:
		c := make([]float32, hA*wB)
		for i := 0; i < hA; i++ {
			for j := 0; j < wB; j++ {
				var sum float32
				for l := 0; l < wA; l++ {
					sum += float32(a[i*wA+l] * b[l*wB+j])
				}
				c[i*wB+j] = sum
			}
		}
		return c
	}
}

// MultiplyVectorByMatrix computes A·x.
func (Reference) MultiplyVectorByMatrix(a, x []float32, hA, wA int) []float32 {
	y := make([]float32, hA)
	for i := 0; i < hA; i++ {
		var sum float32
		for j := 0; j < wA; j++ {
			sum += float32(a[i*wA+j] * x[j])
		}
		y[i] = sum
	}
	return y
}

// MultiplyVectorByTransposeOfMatrix computes Aᵗ·x.
func (Reference) MultiplyVectorByTransposeOfMatrix(a, x []float32, hA, wA int) []float32 {
	y := make([]float32, wA)
	for j := 0; j < wA; j++ {
		var sum float32
		for i := 0; i < hA; i++ {
			sum += float32(a[i*wA+j] * x[i])
		}
		y[j] = sum
	}
	return y
}

// Map applies f to every element of x into a new slice.
func (Reference) Map(x []float32, f Transform) []float32 {
	y := make([]float32, len(x))
	for i, v := range x {
		y[i] = f(v)
	}
	return y
}

// Activate samples binary units from probabilities f(in).
func (Reference) Activate(in, draws []float32, f Transform) []float32 {
	out := make([]float32, len(in))
	for i := range in {
		p := in[i]
		if f != nil {
			p = f(p)
		}
		if p >= draws[i] {
			out[i] = 1
		}
	}
	return out
}

// Transform applies f to [start, start+size) and zeroes the rest.
func (Reference) Transform(in []float32, start, size int, f Transform) []float32 {
	out := make([]float32, len(in))
	for i := start; i < start+size; i++ {
		out[i] = f(in[i])
	}
	return out
}

// PointwiseBinary combines lhs and rhs elementwise.
func (Reference) PointwiseBinary(op BinaryOp, lhs, rhs []float32) []float32 {
	out := make([]float32, len(lhs))
	for i := range lhs {
		out[i] = op(lhs[i], rhs[i])
	}
	return out
}

// Scale returns lambda*a.
func (Reference) Scale(a []float32, lambda float32) []float32 {
	out := make([]float32, len(a))
	for i, v := range a {
		out[i] = v * lambda
	}
	return out
}

// OuterProduct returns v·wᵗ.
func (Reference) OuterProduct(v, w []float32) []float32 {
	out := make([]float32, len(v)*len(w))
	for i := range v {
		for j := range w {
			out[i*len(w)+j] = v[i] * w[j]
		}
	}
	return out
}

package gpudbn

// Shared precondition checks. Each returns an invalid argument error
// wrapping one of the sentinels in errors.go and touches no buffer contents.

func checkDims(op, name string, h, w int) error {
	if h < 0 || w < 0 {
		return newPreconditionError(op, ErrDimensionMismatch, "%s: negative dimensions %dx%d", name, h, w)
	}
	return nil
}

// checkMatrix ensures buf holds exactly h*w elements.
func checkMatrix(op, name string, buf []float32, h, w int) error {
	if err := checkDims(op, name, h, w); err != nil {
		return err
	}
	if len(buf) != h*w {
		return newPreconditionError(op, ErrDimensionMismatch, "%s: have %d elements, want %dx%d=%d", name, len(buf), h, w, h*w)
	}
	return nil
}

// checkVector ensures buf holds exactly n elements.
func checkVector(op, name string, buf []float32, n int) error {
	if n < 0 {
		return newPreconditionError(op, ErrDimensionMismatch, "%s: negative length %d", name, n)
	}
	if len(buf) != n {
		return newPreconditionError(op, ErrDimensionMismatch, "%s: have %d elements, want %d", name, len(buf), n)
	}
	return nil
}

// checkSameLength ensures every buffer matches the length of the first.
func checkSameLength(op string, names []string, bufs ...[]float32) error {
	for i := 1; i < len(bufs); i++ {
		if len(bufs[i]) != len(bufs[0]) {
			return newPreconditionError(op, ErrDimensionMismatch, "%s has %d elements, %s has %d", names[i], len(bufs[i]), names[0], len(bufs[0]))
		}
	}
	return nil
}

// checkRange ensures [lo, hi) lies within a buffer of length n.
func checkRange(op string, lo, hi, n int) error {
	if lo < 0 || hi < lo || hi > n {
		return newPreconditionError(op, ErrBadRange, "range [%d,%d) outside buffer of %d elements", lo, hi, n)
	}
	return nil
}

func checkBlockSize(op string, bs, limit int) error {
	if bs < 1 || bs > limit {
		return newPreconditionError(op, ErrBadBlockSize, "block size %d must be in 1..%d", bs, limit)
	}
	return nil
}

package gpudbn

// PadMatrix copies the h x w matrix m into the top-left corner of a zeroed
// matrix whose dimensions are rounded up to multiples of blockSize. Callers
// use it before Multiply on sizes that are not block aligned; zero rows and
// columns leave the top-left h x w block of the product unchanged.
func PadMatrix(m []float32, h, w, blockSize int) (padded []float32, hp, wp int, err error) {
	const op = "PadMatrix"
	if err := checkBlockSize(op, blockSize, MaxThreadsPerBlock); err != nil {
		return nil, 0, 0, err
	}
	if err := checkMatrix(op, "M", m, h, w); err != nil {
		return nil, 0, 0, err
	}
	hp = GridFor(h, blockSize) * blockSize
	wp = GridFor(w, blockSize) * blockSize
	if hp == h && wp == w {
		return append([]float32(nil), m...), h, w, nil
	}
	padded = make([]float32, hp*wp)
	for r := 0; r < h; r++ {
		copy(padded[r*wp:r*wp+w], m[r*w:(r+1)*w])
	}
	return padded, hp, wp, nil
}

// UnpadMatrix extracts the top-left h x w block of the hp x wp matrix p.
func UnpadMatrix(p []float32, hp, wp, h, w int) ([]float32, error) {
	const op = "UnpadMatrix"
	if err := checkMatrix(op, "P", p, hp, wp); err != nil {
		return nil, err
	}
	if h < 0 || w < 0 || h > hp || w > wp {
		return nil, newPreconditionError(op, ErrBadRange, "block %dx%d outside %dx%d", h, w, hp, wp)
	}
	out := make([]float32, h*w)
	for r := 0; r < h; r++ {
		copy(out[r*w:(r+1)*w], p[r*wp:r*wp+w])
	}
	return out, nil
}

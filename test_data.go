package gpudbn

// GenerateFloat32 generates deterministic float32 test data using a linear
// congruential generator (LCG). This ensures reproducible parity runs.
//
// Example:
//
//	data := GenerateFloat32(1024, 12345) // values in [0, 1)
func GenerateFloat32(size int, seed uint64) []float32 {
	data := make([]float32, size)
	rng := seed
	for i := range data {
		rng = rng*6364136223846793005 + 1442695040888963407 // Knuth MMIX
		data[i] = float32(rng>>40) * (1.0 / (1 << 24))
	}
	return data
}

// GenerateFloat32Range generates deterministic float32 data in [min, max].
//
// Example:
//
//	data := GenerateFloat32Range(1024, 42, -1.0, 1.0)
func GenerateFloat32Range(size int, seed uint64, min, max float32) []float32 {
	data := GenerateFloat32(size, seed)
	scale := max - min
	for i := range data {
		data[i] = data[i]*scale + min
	}
	return data
}

// GenerateMatrixFloat32 generates a deterministic rows x cols matrix in
// row-major order with values in [-1, 1].
func GenerateMatrixFloat32(rows, cols int, seed uint64) []float32 {
	return GenerateFloat32Range(rows*cols, seed, -1, 1)
}

// GenerateIdentityMatrix generates an identity matrix of the specified size.
func GenerateIdentityMatrix(size int) []float32 {
	data := make([]float32, size*size)
	for i := 0; i < size; i++ {
		data[i*size+i] = 1.0
	}
	return data
}

// GenerateSequence generates a simple arithmetic sequence for debugging.
//
// Example:
//
//	data := GenerateSequence(4, 1, 1) // [1, 2, 3, 4]
func GenerateSequence(size int, start, step float32) []float32 {
	data := make([]float32, size)
	for i := range data {
		data[i] = start + float32(i)*step
	}
	return data
}

// MultiplyShapes returns operand shapes {hA, wA, wB} of a Plain multiply
// for parity runs, as multiples of the tile edge.
func MultiplyShapes() [][3]int {
	return [][3]int{
		{1, 1, 1}, // single tile
		{2, 2, 2},
		{4, 1, 3}, // tall A
		{1, 4, 2}, // wide inner dimension
		{3, 5, 2},
	}
}

// VectorSizes returns {hA, wA} shapes for vector-matrix parity runs. They
// are deliberately not multiples of any block size.
func VectorSizes() [][2]int {
	return [][2]int{
		{1, 1},
		{7, 13},
		{65, 3},
		{100, 257},
		{513, 129},
	}
}

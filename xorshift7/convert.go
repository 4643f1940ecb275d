package xorshift7

// UnitFloat32 maps a word to [0, 1) using its top 24 bits, so every result
// is exactly representable and 1 is never produced.
func UnitFloat32(x uint32) float32 {
	return float32(x>>8) * (1.0 / (1 << 24))
}

// UnitFloat64 maps a word to [0, 1).
func UnitFloat64(x uint32) float64 {
	return float64(x) * (1.0 / (1 << 32))
}

// Raw returns the word unchanged.
func Raw(x uint32) uint32 {
	return x
}

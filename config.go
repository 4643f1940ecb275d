// Package gpudbn configuration constants
package gpudbn

// Thread and block dimensions
const (
	// Default threads per block for elementwise kernels
	DefaultBlockSize = 256

	// Maximum threads per block (CUDA compatibility)
	MaxThreadsPerBlock = 1024

	// Default tile edge for the tiled multiply executor. A tile is
	// DefaultTileSize x DefaultTileSize threads.
	DefaultTileSize = 16

	// Default tile length for the vector-matrix kernels
	DefaultVectorBlockSize = 64
)

// Shared memory parameters
const (
	// Initial per-worker shared memory arena in float32 words
	DefaultSharedWords = 4 * DefaultTileSize * DefaultTileSize

	// Maximum shared memory a single block may request, 48 KiB in float32 words
	MaxSharedWords = 48 * 1024 / 4
)

// Stream parameters
const (
	// Pending launches a stream buffers before Submit blocks
	StreamQueueDepth = 1000
)

// Numerical constants
const (
	// Maximum ULP difference for float32 comparisons
	MaxULPDiff = 4
)

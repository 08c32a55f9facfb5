// Package entropy implements the general-purpose entropy coding backend used
// as the final compression pass over block-coded or transposed bytes.
// Stenos's codec components never implement entropy coding themselves; they
// call through the Codec interface defined here.
//
// The package exposes a small interface plus a handful of concrete, pooled
// implementations, selected by an Algorithm enum. Only one codec is active
// at a time, chosen by the caller and used throughout the superblock
// orchestrator.
package entropy

import "fmt"

// Algorithm identifies an entropy coding backend.
type Algorithm uint8

const (
	// Zstd is the default, highest-ratio backend. It backs the entropy level
	// table in the superblock orchestrator.
	Zstd Algorithm = iota
	// S2 is a faster, lower-ratio backend; it can also serve as the
	// orchestrator's ratio estimator (superblock.Params.Estimator).
	S2
	// LZ4 is a third backend callers may select via stenos.WithEntropy,
	// trading ratio for a smaller, allocation-light dependency footprint.
	LZ4
)

func (a Algorithm) String() string {
	switch a {
	case Zstd:
		return "zstd"
	case S2:
		return "s2"
	case LZ4:
		return "lz4"
	default:
		return "unknown"
	}
}

// Codec compresses and decompresses opaque byte payloads at a given level.
// Level 0 means "do not compress" (the orchestrator never calls Compress at
// level 0 — it uses the COPY strategy instead); 1-9 map onto the backend's
// own level range, clamped.
type Codec interface {
	// Compress appends the compressed form of src to dst[:0:cap(dst)]'s backing
	// array where possible and returns the result. level is in [1, 9].
	Compress(dst, src []byte, level int) ([]byte, error)

	// Decompress decompresses src into dst, which must have at least
	// decompressedLen capacity already reserved by the caller via dst[:0].
	// Returns the decompressed slice (len == decompressedLen on success).
	Decompress(dst, src []byte, decompressedLen int) ([]byte, error)

	// EstimateRatio runs the backend in a cheap, allocation-light mode over a
	// sample and returns an estimated compressed/original ratio, greater than
	// 0 and above 1 when the sample does not compress.
	// Used by the superblock orchestrator's LZ-ratio estimate.
	EstimateRatio(sample []byte) float64
}

// Get returns the built-in Codec for the given algorithm.
func Get(alg Algorithm) (Codec, error) {
	switch alg {
	case Zstd:
		return zstdCodec{}, nil
	case S2:
		return s2Codec{}, nil
	case LZ4:
		return lz4Codec{}, nil
	default:
		return nil, fmt.Errorf("entropy: unknown algorithm %d", alg)
	}
}

// clampLevel maps a stenos level (0-9) onto a backend's internal notion of
// "fast" vs "best" compression; 0 is never passed to Compress by the
// orchestrator (level 0 drives a memcpy/COPY strategy instead) but we clamp
// it defensively to 1.
func clampLevel(level int) int {
	if level < 1 {
		return 1
	}
	if level > 9 {
		return 9
	}
	return level
}

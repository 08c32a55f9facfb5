//go:build stenos_cgo

package entropy

import "github.com/valyala/gozstd"

// This file provides an opt-in cgo-backed zstd path, disabled by default and
// enabled only via a named build tag the caller must pass explicitly:
// -tags stenos_cgo. It is not wired into Get() by default; a caller that
// needs the cgo path can reference entropy.CgoZstd{} directly once built
// with the tag.

// CgoZstd is a gozstd-backed Codec, offered as an alternate high-throughput
// backend when cgo is available and the stenos_cgo build tag is set.
type CgoZstd struct{}

var _ Codec = CgoZstd{}

func (CgoZstd) Compress(dst, src []byte, level int) ([]byte, error) {
	return gozstd.CompressLevel(dst[:0], src, clampLevel(level)), nil
}

func (CgoZstd) Decompress(dst, src []byte, decompressedLen int) ([]byte, error) {
	if decompressedLen == 0 {
		return dst[:0], nil
	}

	return gozstd.Decompress(dst[:0], src)
}

func (c CgoZstd) EstimateRatio(sample []byte) float64 {
	if len(sample) == 0 {
		return 1.0
	}

	out, err := c.Compress(nil, sample, 1)
	if err != nil || len(out) == 0 {
		return 1.0
	}

	return float64(len(out)) / float64(len(sample))
}

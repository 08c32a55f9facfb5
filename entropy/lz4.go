package entropy

import (
	"sync"

	"github.com/pierrec/lz4/v4"
)

// lz4CompressorPool pools lz4.Compressor instances for reuse: the compressor
// maintains an internal hash table that benefits from reuse across calls
// instead of being rebuilt from scratch each time.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

type lz4Codec struct{}

var _ Codec = lz4Codec{}

// Compress compresses src with the fast (non-HC) lz4 block coder. lz4, like
// S2, has no numeric level knob, so level only affects whether the caller
// bothers calling at all (the orchestrator never calls Compress at level 0).
// lz4.CompressBlock reports n == 0, nil error when src is incompressible; in
// that case Compress returns a copy of src so the caller's
// len(compressed) >= len(payload) check falls back to a plain copy instead
// of mistaking an empty result for perfect compression.
func (lz4Codec) Compress(dst, src []byte, level int) ([]byte, error) {
	if len(src) == 0 {
		return dst[:0], nil
	}

	bound := lz4.CompressBlockBound(len(src))
	buf := dst[:0]
	if cap(buf) < bound {
		buf = make([]byte, bound)
	} else {
		buf = buf[:bound]
	}

	c, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(c)

	n, err := c.CompressBlock(src, buf)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return append(dst[:0], src...), nil
	}

	return buf[:n], nil
}

// Decompress decompresses src into a buffer of exactly decompressedLen bytes.
// The Codec interface's caller always supplies the decompressed length up
// front, since stenos's frame format records logical lengths explicitly —
// so no retry-on-ErrInvalidSourceShortBuffer loop is needed.
func (lz4Codec) Decompress(dst, src []byte, decompressedLen int) ([]byte, error) {
	if decompressedLen == 0 {
		return dst[:0], nil
	}

	buf := dst[:0]
	if cap(buf) < decompressedLen {
		buf = make([]byte, decompressedLen)
	} else {
		buf = buf[:decompressedLen]
	}

	n, err := lz4.UncompressBlock(src, buf)
	if err != nil {
		return nil, err
	}

	return buf[:n], nil
}

// EstimateRatio runs the same fast block coder used by Compress over the
// sample.
func (c lz4Codec) EstimateRatio(sample []byte) float64 {
	if len(sample) == 0 {
		return 1.0
	}

	out, err := c.Compress(nil, sample, 1)
	if err != nil || len(out) == 0 {
		return 1.0
	}

	return float64(len(out)) / float64(len(sample))
}

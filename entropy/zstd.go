package entropy

import (
	"sync"

	"github.com/klauspost/compress/zstd"
)

// zstdDecoderPool pools zstd decoders for reuse: the decoder is designed to
// operate without allocations after a warmup period, so reusing one across
// calls avoids paying that warmup repeatedly.
var zstdDecoderPool = sync.Pool{
	New: func() any {
		dec, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(false),
		)
		if err != nil {
			panic("entropy: failed to create zstd decoder: " + err.Error())
		}
		return dec
	},
}

// zstdEncoderPools holds one encoder pool per stenos level (1-9), since a
// klauspost/compress/zstd encoder's level is fixed at construction time.
var zstdEncoderPools [10]sync.Pool

func init() {
	for lvl := 1; lvl <= 9; lvl++ {
		level := toEncoderLevel(lvl)
		zstdEncoderPools[lvl] = sync.Pool{
			New: func() any {
				enc, err := zstd.NewWriter(nil,
					zstd.WithEncoderLevel(level),
					zstd.WithEncoderCRC(false),
				)
				if err != nil {
					panic("entropy: failed to create zstd encoder: " + err.Error())
				}
				return enc
			},
		}
	}
}

// toEncoderLevel maps the stenos 1-9 level range onto klauspost's four named
// speed/ratio tiers, biasing toward ratio as the stenos level increases.
func toEncoderLevel(level int) zstd.EncoderLevel {
	switch {
	case level <= 2:
		return zstd.SpeedFastest
	case level <= 5:
		return zstd.SpeedDefault
	case level <= 7:
		return zstd.SpeedBetterCompression
	default:
		return zstd.SpeedBestCompression
	}
}

type zstdCodec struct{}

var _ Codec = zstdCodec{}

func (zstdCodec) Compress(dst, src []byte, level int) ([]byte, error) {
	level = clampLevel(level)
	enc, _ := zstdEncoderPools[level].Get().(*zstd.Encoder)
	defer zstdEncoderPools[level].Put(enc)

	return enc.EncodeAll(src, dst[:0]), nil
}

func (zstdCodec) Decompress(dst, src []byte, decompressedLen int) ([]byte, error) {
	if decompressedLen == 0 {
		return dst[:0], nil
	}

	dec, _ := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(dec)

	out, err := dec.DecodeAll(src, dst[:0])
	if err != nil {
		return nil, err
	}

	return out, nil
}

// EstimateRatio runs a fast-level zstd pass over the sample and returns the
// resulting compressed/original ratio. When zstd is the selected estimator
// (stenos.Context and cvec pass their entropy codec as the estimator), this
// backs the superblock orchestrator's LZ-ratio estimates for the raw,
// transposed and transposed+delta candidates.
func (c zstdCodec) EstimateRatio(sample []byte) float64 {
	if len(sample) == 0 {
		return 1.0
	}

	out, err := c.Compress(nil, sample, 1)
	if err != nil || len(out) == 0 {
		return 1.0
	}

	return float64(len(out)) / float64(len(sample))
}

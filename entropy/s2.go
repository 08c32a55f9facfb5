package entropy

import "github.com/klauspost/compress/s2"

type s2Codec struct{}

var _ Codec = s2Codec{}

// Compress compresses src with S2. s2 has no numeric level knob; "better"
// mode is used for stenos levels above 5, favoring speed by default and
// ratio only when asked.
func (s2Codec) Compress(dst, src []byte, level int) ([]byte, error) {
	level = clampLevel(level)
	if level > 5 {
		return s2.EncodeBetter(dst[:0], src), nil
	}

	return s2.Encode(dst[:0], src), nil
}

func (s2Codec) Decompress(dst, src []byte, decompressedLen int) ([]byte, error) {
	if decompressedLen == 0 {
		return dst[:0], nil
	}

	out, err := s2.Decode(nil, src)
	if err != nil {
		return nil, err
	}

	return out, nil
}

// EstimateRatio runs the plain (fast) S2 encoder over the sample. When passed
// as superblock.Params.Estimator, S2 serves as the orchestrator's cheap
// fast-LZ compressor in measurement mode, ranking candidate transforms before
// the block coder or a full entropy pass runs.
func (c s2Codec) EstimateRatio(sample []byte) float64 {
	if len(sample) == 0 {
		return 1.0
	}

	out := s2.Encode(nil, sample)
	if len(out) == 0 {
		return 1.0
	}

	return float64(len(out)) / float64(len(sample))
}

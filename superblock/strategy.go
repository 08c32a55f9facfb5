// Package superblock implements the superblock orchestrator: the adaptive
// strategy selection that picks, for one superblock's worth of bytes, among
// direct entropy coding, transposed (optionally byte-delta'd) entropy
// coding, block coding, block coding topped with entropy, or a plain copy —
// enforcing an optional wall-clock budget along the way.
//
// The orchestrator is single-threaded per superblock; package frame is what
// parallelizes across superblocks.
package superblock

import "fmt"

// Strategy identifies how one superblock's payload was coded. Values match
// the wire strategy codes in the frame format.
type Strategy uint8

const (
	StrategyBlock           Strategy = 1
	StrategyZstd            Strategy = 2 // direct entropy coding of raw bytes
	StrategyTransposed      Strategy = 3 // entropy coding of the transposed buffer
	StrategyTransposedDelta Strategy = 4 // entropy coding of delta(transposed)
	StrategyBlockEntropy    Strategy = 5 // entropy coding on top of the block coder's output
	StrategyCopy            Strategy = 6
)

func (s Strategy) String() string {
	switch s {
	case StrategyBlock:
		return "BLOCK"
	case StrategyZstd:
		return "ZSTD"
	case StrategyTransposed:
		return "TRANSPOSED"
	case StrategyTransposedDelta:
		return "TRANSPOSED_DELTA"
	case StrategyBlockEntropy:
		return "BLOCK_ENTROPY"
	case StrategyCopy:
		return "COPY"
	default:
		return fmt.Sprintf("Strategy(%d)", uint8(s))
	}
}

// Valid reports whether s is one of the six strategy codes the wire format
// defines.
func (s Strategy) Valid() bool {
	return s >= StrategyBlock && s <= StrategyCopy
}

package superblock

import (
	"github.com/Thermadiag/stenos/block"
	"github.com/Thermadiag/stenos/bytedelta"
	"github.com/Thermadiag/stenos/entropy"
	"github.com/Thermadiag/stenos/errs"
	"github.com/Thermadiag/stenos/transpose"
)

// Params configures one EncodeSuperblock/DecodeSuperblock call. A Params is
// shared read-only across every superblock of a frame except for Budget,
// which carries its own internal synchronization so it can be shared safely
// across a parallel wave.
type Params struct {
	BPP int
	// Level is the caller's requested compression level, 0-9. 0 means
	// "always copy" in the absence of a Budget.
	Level int
	// Entropy is the primary entropy-coding backend used for direct/
	// transposed/block-entropy strategies.
	Entropy entropy.Codec
	// Estimator is a cheap backend used only for the LZ-ratio estimate over
	// the transposed/delta'd candidates. Falls back to Entropy if nil.
	Estimator entropy.Codec
	// Budget is the optional wall-clock budget shared across the whole
	// frame. nil means no budget.
	Budget *Budget
}

func (p Params) estimator() entropy.Codec {
	if p.Estimator != nil {
		return p.Estimator
	}
	return p.Entropy
}

// EncodeSuperblock picks a strategy for src (one superblock's logical bytes)
// and writes its coded payload into dst, returning the strategy used and the
// number of bytes written. It never writes more than len(dst) bytes; if no
// candidate encoding fits, it returns errs.ErrDstOverflow without partial
// writes.
func EncodeSuperblock(p Params, src, dst []byte) (Strategy, int, error) {
	n := len(src)
	if n == 0 {
		return StrategyCopy, 0, nil
	}

	defer p.Budget.Record(n)

	// Step 1: global memcpy-from-here, or level 0 with no budget.
	if p.Budget.MemcpyFromHere() || (p.Level == 0 && p.Budget == nil) {
		return writeCopy(src, dst)
	}

	// Step 2: tiny superblocks go straight to entropy, skipping the block
	// coder entirely — the per-block marker overhead dominates at this size.
	if n < 128 {
		return entropyDirect(p, src, dst, StrategyZstd, src)
	}

	targetSpeed := p.Budget.RequiredRate()
	budgetActive := p.Budget != nil

	// Step 3: fast path under a tight budget — block coding with no entropy
	// pass at all.
	if budgetActive && targetSpeed > 1.5 && p.BPP > 1 {
		return blockOnly(p, src, dst)
	}

	// Step 4/5: optionally evaluate transposed candidates, then run the
	// block coder and compare.
	transposed := make([]byte, n)
	var transposedDelta []byte
	haveTransposed := false

	if p.BPP > 1 {
		transpose.Shuffle(p.BPP, src, transposed)
		haveTransposed = true
	}

	computeRatios := p.BPP > 1 && (!budgetActive || targetSpeed < 0.6)

	rawRatio := 1.0
	trRatio := 1.0
	trDeltaRatio := 1.0

	if computeRatios {
		est := p.estimator()
		sample := sampleOf(src)
		rawRatio = est.EstimateRatio(sample)

		trSample := sampleOf(transposed)
		trRatio = est.EstimateRatio(trSample)

		transposedDelta = make([]byte, n)
		bytedelta.Delta(transposedDelta, transposed)
		trDeltaRatio = est.EstimateRatio(sampleOf(transposedDelta))
	}

	blockScratch := make([]byte, n+blockOverhead(p.BPP, n))
	cblock := block.EncodeBlocks(p.BPP, src, blockScratch)
	blockRatio := float64(cblock) / float64(n)

	if computeRatios && haveTransposed {
		bestTransposedRatio := trRatio
		useDelta := false
		if trDeltaRatio < bestTransposedRatio {
			bestTransposedRatio = trDeltaRatio
			useDelta = true
		}

		// "Insufficient gain": the block coder did not even beat its own
		// cheap ratio estimate from the LZ pass, so prefer whichever
		// transposed variant is best, or direct entropy if neither wins
		// over the raw estimate.
		minAcceptable := rawRatio
		if trRatio < minAcceptable {
			minAcceptable = trRatio
		}
		if trDeltaRatio < minAcceptable {
			minAcceptable = trDeltaRatio
		}

		if blockRatio > minAcceptable {
			if bestTransposedRatio < rawRatio {
				if useDelta {
					return entropyDirect(p, src, dst, StrategyTransposedDelta, transposedDelta)
				}
				return entropyDirect(p, src, dst, StrategyTransposed, transposed)
			}
			return entropyDirect(p, src, dst, StrategyZstd, src)
		}
	}

	// Step 6: block coder result stands (or wins); consider layering entropy
	// on top of it.
	if cblock >= n {
		return writeCopy(src, dst)
	}

	level := p.Budget.EntropyLevel(p.Level)
	if level >= 1 {
		compressed, err := p.Entropy.Compress(nil, blockScratch[:cblock], level)
		if err == nil && len(compressed) < cblock {
			if len(compressed) > len(dst) {
				return 0, 0, errs.ErrDstOverflow
			}
			copy(dst, compressed)
			return StrategyBlockEntropy, len(compressed), nil
		}
	}

	if cblock > len(dst) {
		return 0, 0, errs.ErrDstOverflow
	}
	copy(dst, blockScratch[:cblock])
	return StrategyBlock, cblock, nil
}

// blockOverhead bounds the worst-case growth EncodeBlocks can introduce: one
// marker byte per 256-element block.
func blockOverhead(bpp, n int) int {
	blockBytes := block.EncodedSize(bpp)
	return n/blockBytes + 2
}

func sampleOf(b []byte) []byte {
	n := len(b) / 16
	if n == 0 {
		return b
	}
	return b[:n]
}

func writeCopy(src, dst []byte) (Strategy, int, error) {
	if len(src) > len(dst) {
		return 0, 0, errs.ErrDstOverflow
	}
	copy(dst, src)
	return StrategyCopy, len(src), nil
}

func entropyDirect(p Params, src, dst []byte, strategy Strategy, payload []byte) (Strategy, int, error) {
	level := p.Level
	if p.Budget != nil {
		level = p.Budget.EntropyLevel(level)
	}
	if level == 0 {
		return writeCopy(src, dst)
	}

	compressed, err := p.Entropy.Compress(nil, payload, level)
	if err != nil {
		return 0, 0, errs.ErrEntropyInternal
	}

	if len(compressed) >= len(payload) {
		return writeCopy(src, dst)
	}
	if len(compressed) > len(dst) {
		return 0, 0, errs.ErrDstOverflow
	}

	copy(dst, compressed)
	return strategy, len(compressed), nil
}

func blockOnly(p Params, src, dst []byte) (Strategy, int, error) {
	scratch := make([]byte, len(src)+blockOverhead(p.BPP, len(src)))
	n := block.EncodeBlocks(p.BPP, src, scratch)
	if n >= len(src) {
		return writeCopy(src, dst)
	}
	if n > len(dst) {
		return 0, 0, errs.ErrDstOverflow
	}

	copy(dst, scratch[:n])
	return StrategyBlock, n, nil
}

// DecodeSuperblock reconstructs one superblock's logical bytes from its
// strategy code and coded payload into dst (len(dst) == the superblock's
// logical byte length, already known to the caller from the frame header).
func DecodeSuperblock(p Params, strategy Strategy, payload, dst []byte) error {
	n := len(dst)

	switch strategy {
	case StrategyCopy:
		if len(payload) != n {
			return errs.ErrInvalidInput
		}
		copy(dst, payload)
		return nil

	case StrategyZstd:
		out, err := p.Entropy.Decompress(make([]byte, 0, n), payload, n)
		if err != nil || len(out) != n {
			return errs.ErrEntropyInternal
		}
		copy(dst, out)
		return nil

	case StrategyTransposed:
		out, err := p.Entropy.Decompress(make([]byte, 0, n), payload, n)
		if err != nil || len(out) != n {
			return errs.ErrEntropyInternal
		}
		transpose.Unshuffle(p.BPP, out, dst)
		return nil

	case StrategyTransposedDelta:
		out, err := p.Entropy.Decompress(make([]byte, 0, n), payload, n)
		if err != nil || len(out) != n {
			return errs.ErrEntropyInternal
		}
		undeltad := make([]byte, n)
		bytedelta.DeltaInv(undeltad, out)
		transpose.Unshuffle(p.BPP, undeltad, dst)
		return nil

	case StrategyBlock:
		consumed := block.DecodeBlocks(p.BPP, payload, dst)
		if consumed != len(payload) {
			return errs.ErrInvalidInput
		}
		return nil

	case StrategyBlockEntropy:
		out, err := p.Entropy.Decompress(make([]byte, 0, n), payload, n)
		if err != nil {
			return errs.ErrEntropyInternal
		}
		consumed := block.DecodeBlocks(p.BPP, out, dst)
		if consumed != len(out) {
			return errs.ErrInvalidInput
		}
		return nil

	default:
		return errs.ErrInvalidInput
	}
}

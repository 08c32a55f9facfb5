package frame

import (
	"context"

	"github.com/Thermadiag/stenos/entropy"
	"github.com/Thermadiag/stenos/errs"
	"github.com/Thermadiag/stenos/internal/pool"
	"github.com/Thermadiag/stenos/superblock"
	"github.com/Thermadiag/stenos/workerpool"
)

// Params configures one Compress/Decompress call.
type Params struct {
	BPP            int
	Level          int   // 0-9
	Threads        int   // worker count hint, clamped to >= 1
	MaxNanoseconds int64 // 0 disables the wall-clock budget
	BlockShift     int   // NoShift for automatic sizing, or a custom shift k
	Entropy        entropy.Codec
	Estimator      entropy.Codec
}

func validateParams(p Params) error {
	if p.BPP < 1 || p.BPP > 65535 {
		return errs.ErrInvalidParameter
	}
	if p.Level < 0 || p.Level > 9 {
		return errs.ErrInvalidParameter
	}
	if p.BlockShift != NoShift && p.BlockShift < 0 {
		return errs.ErrInvalidParameter
	}
	return nil
}

type sbRange struct{ start, end int }

// superblockBounds splits [0, n) into logical superblock ranges of sbSize
// bytes each, the last one possibly shorter.
func superblockBounds(n, sbSize int) []sbRange {
	if n <= 0 || sbSize <= 0 {
		return nil
	}

	ranges := make([]sbRange, 0, n/sbSize+1)
	for start := 0; start < n; start += sbSize {
		end := start + sbSize
		if end > n {
			end = n
		}
		ranges = append(ranges, sbRange{start, end})
	}

	return ranges
}

// autoBase computes the baseline superblock size for a given BPP:
// max(BPP*256, floor(131072/(BPP*256))*BPP*256). The floor division biases
// toward a ~128KiB baseline for small BPP so tiny element widths don't end
// up with pathologically small superblocks.
func autoBase(bpp int) int {
	unit := 256 * bpp
	alt := (131072 / unit) * unit
	if alt > unit {
		return alt
	}
	return unit
}

// autoShift picks the largest shift in [0,4] that still leaves at least four
// superblocks, balancing per-superblock coding overhead against parallelism,
// never exceeding the 2^24 superblock size ceiling. It depends only on (n,
// base), not on thread count, so that compress's output is byte-identical
// across thread counts once BPP and level (and therefore shift) are fixed.
func autoShift(n, base int) byte {
	const maxSuperblock = 1 << 24

	for shift := 4; shift > 0; shift-- {
		size := base << shift
		if size >= maxSuperblock {
			continue
		}
		if n/size >= 4 {
			return byte(shift)
		}
	}

	return 0
}

// deriveSuperblockSize picks the effective superblock size and the wire
// shift_byte/custom-size-field representation for it. A caller-fixed shift
// is honored only when no wall-clock budget is active; an active budget
// recomputes the shift itself, since the budget's speed target already
// implies a superblock granularity and the two knobs would otherwise
// conflict.
func deriveSuperblockSize(p Params, n int) (sbSize int, shiftByte byte, custom bool, err error) {
	if p.BlockShift != NoShift && p.MaxNanoseconds <= 0 {
		size := 256 * p.BPP << uint(p.BlockShift)
		if size < 256*p.BPP || size >= 1<<24 {
			return 0, 0, false, errs.ErrInvalidParameter
		}
		return size, CustomShiftMarker, true, nil
	}

	base := autoBase(p.BPP)
	shift := autoShift(n, base)

	return base << shift, shift, false, nil
}

// Compress splits src into superblocks, codes each one via the superblock
// orchestrator (optionally across parallel waves), and writes a complete
// frame to dst. It returns the number of bytes written.
func Compress(p Params, src, dst []byte) (int, error) {
	if err := validateParams(p); err != nil {
		return 0, err
	}

	n := len(src)

	sbSize, shiftByte, custom, err := deriveSuperblockSize(p, n)
	if err != nil {
		return 0, err
	}

	h := header{shiftByte: shiftByte, decompressedLen: uint64(n)}
	if custom {
		h.superblockSize = uint32(sbSize)
	}

	hdrLen := HeaderSize(custom)
	if hdrLen > len(dst) {
		return 0, errs.ErrDstOverflow
	}
	off := writeHeader(h, dst)

	ranges := superblockBounds(n, sbSize)
	if len(ranges) == 0 {
		return off, nil
	}

	budget := superblock.NewBudget(int64(n), p.MaxNanoseconds)
	sp := superblock.Params{BPP: p.BPP, Level: p.Level, Entropy: p.Entropy, Estimator: p.Estimator, Budget: budget}

	threads := p.Threads
	if threads < 1 {
		threads = 1
	}

	if threads == 1 || len(ranges) == 1 {
		for _, r := range ranges {
			w, err := encodeOneSuperblock(sp, src[r.start:r.end], dst[off:])
			if err != nil {
				return 0, err
			}
			off += w
		}
		return off, nil
	}

	// Per-thread scratch buffers are drawn from a package-wide, size-classed
	// freelist instead of allocating fresh per wave.
	wp := workerpool.New(threads)
	for wstart := 0; wstart < len(ranges); wstart += threads {
		wend := wstart + threads
		if wend > len(ranges) {
			wend = len(ranges)
		}

		wave := ranges[wstart:wend]
		scratches := make([]*pool.ByteBuffer, len(wave))
		lens := make([]int, len(wave))
		fns := make([]func() error, len(wave))

		for i, r := range wave {
			i, r := i, r
			scratches[i] = pool.GetScratch()
			buf := scratches[i].Buffer(superblockRecordHeaderSize + (r.end - r.start))
			fns[i] = func() error {
				w, err := encodeOneSuperblock(sp, src[r.start:r.end], buf)
				if err != nil {
					return err
				}
				lens[i] = w
				return nil
			}
		}

		waveErr := wp.Wave(context.Background(), fns)

		for i := range wave {
			if waveErr == nil {
				if off+lens[i] > len(dst) {
					waveErr = errs.ErrDstOverflow
				} else {
					off += copy(dst[off:], scratches[i].Bytes()[:lens[i]])
				}
			}
			pool.PutScratch(scratches[i])
		}

		if waveErr != nil {
			return 0, waveErr
		}
	}

	return off, nil
}

// encodeOneSuperblock writes one superblock's 4-byte record header followed
// by its coded payload into dst, returning the total bytes written.
func encodeOneSuperblock(sp superblock.Params, src, dst []byte) (int, error) {
	if len(dst) < superblockRecordHeaderSize {
		return 0, errs.ErrDstOverflow
	}

	strategy, n, err := superblock.EncodeSuperblock(sp, src, dst[superblockRecordHeaderSize:])
	if err != nil {
		return 0, err
	}

	writeSuperblockRecordHeader(byte(strategy), n, dst)

	return superblockRecordHeaderSize + n, nil
}

// Decompress parses a frame produced by Compress from src and writes the
// decompressed bytes into dst. It returns the number of bytes written, which
// always equals the frame's decompressed_len field on success.
func Decompress(p Params, src, dst []byte) (int, error) {
	if err := validateParams(p); err != nil {
		return 0, err
	}

	h, off, err := parseHeader(src)
	if err != nil {
		return 0, err
	}

	n := int(h.decompressedLen)
	if n > len(dst) {
		return 0, errs.ErrDstOverflow
	}

	sbSize := int(h.superblockSize)
	if h.shiftByte != CustomShiftMarker {
		sbSize = autoBase(p.BPP) << h.shiftByte
	}
	if sbSize <= 0 {
		sbSize = n
	}

	ranges := superblockBounds(n, sbSize)

	type record struct {
		strategy         superblock.Strategy
		payloadStart, payloadLen int
		logical          sbRange
	}

	records := make([]record, 0, len(ranges))
	pos := off
	for _, r := range ranges {
		strategyCode, payloadLen, err := parseSuperblockRecordHeader(src[pos:])
		if err != nil {
			return 0, err
		}
		pos += superblockRecordHeaderSize

		if pos+payloadLen > len(src) {
			return 0, errs.ErrSrcOverflow
		}

		records = append(records, record{
			strategy:     superblock.Strategy(strategyCode),
			payloadStart: pos,
			payloadLen:   payloadLen,
			logical:      r,
		})
		pos += payloadLen
	}

	sp := superblock.Params{BPP: p.BPP, Entropy: p.Entropy, Estimator: p.Estimator}

	threads := p.Threads
	if threads < 1 {
		threads = 1
	}

	decodeOne := func(rec record) error {
		if !rec.strategy.Valid() {
			return errs.ErrInvalidInput
		}
		payload := src[rec.payloadStart : rec.payloadStart+rec.payloadLen]
		return superblock.DecodeSuperblock(sp, rec.strategy, payload, dst[rec.logical.start:rec.logical.end])
	}

	if threads == 1 || len(records) <= 1 {
		for _, rec := range records {
			if err := decodeOne(rec); err != nil {
				return 0, err
			}
		}
		return n, nil
	}

	wp := workerpool.New(threads)
	for wstart := 0; wstart < len(records); wstart += threads {
		wend := wstart + threads
		if wend > len(records) {
			wend = len(records)
		}

		wave := records[wstart:wend]
		fns := make([]func() error, len(wave))
		for i, rec := range wave {
			rec := rec
			fns[i] = func() error { return decodeOne(rec) }
		}

		if err := wp.Wave(context.Background(), fns); err != nil {
			return 0, err
		}
	}

	return n, nil
}

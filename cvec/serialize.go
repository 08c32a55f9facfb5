package cvec

import (
	"github.com/Thermadiag/stenos/errs"
	"github.com/Thermadiag/stenos/frame"
	"github.com/Thermadiag/stenos/superblock"
)

// frameParams builds the frame.Params that make Serialize/Deserialize
// byte-identical to compressing/decompressing the equivalent flat buffer
// with the container's own chunk size as a custom superblock: BlockShift =
// ChunkShift and MaxNanoseconds = 0 together select frame's
// custom-superblock path unconditionally (see frame.deriveSuperblockSize).
func (v *Vector[T]) frameParams() frame.Params {
	return frame.Params{
		BPP:        v.elemSize,
		Level:      v.opts.Level,
		Threads:    1,
		BlockShift: v.opts.ChunkShift,
		Entropy:    v.opts.Entropy,
		Estimator:  v.opts.Entropy,
	}
}

// Serialize emits a frame bit-exact to what frame.Compress would produce for
// the container's elements flattened into one buffer, using the container's
// chunk size as the superblock size.
func (v *Vector[T]) Serialize() ([]byte, error) {
	v.mu.Lock()
	flat, err := v.flattenLocked()
	v.mu.Unlock()
	if err != nil {
		return nil, err
	}

	dst := make([]byte, frame.BoundForShift(v.elemSize, int64(len(flat)), v.opts.ChunkShift))
	n, err := frame.Compress(v.frameParams(), flat, dst)
	if err != nil {
		return nil, err
	}

	return dst[:n], nil
}

// flattenLocked copies every chunk's logical bytes, in order, into one flat
// buffer, decompressing any compressed-only chunk along the way (but
// without demoting anything else to make room — flatten never evicts,
// matching the fact that Serialize must not disturb the container's visible
// state). Must be called with v.mu held.
func (v *Vector[T]) flattenLocked() ([]byte, error) {
	out := make([]byte, v.size*v.elemSize)
	off := 0

	for _, sl := range v.slots {
		n := sl.logicalLen * v.elemSize
		if sl.raw != nil {
			copy(out[off:off+n], toBytes(sl.raw.data)[:n])
		} else if sl.compressed != nil {
			if err := superblock.DecodeSuperblock(v.superblockParams(), sl.strategy, sl.compressed, out[off:off+n]); err != nil {
				return nil, err
			}
		}
		off += n
	}

	return out, nil
}

// Deserialize replaces the container's contents with the sequence encoded by
// src, which must have been produced by Serialize (or by compressing an
// equivalent flat buffer with a custom superblock size matching this
// container's chunk byte size). Returns errs.ErrInvalidInput if the
// incoming superblock size doesn't match.
func (v *Vector[T]) Deserialize(src []byte) error {
	decodedLen, custom, sbBytes, err := frame.PeekHeader(src)
	if err != nil {
		return err
	}

	expected := uint32(v.chunkElems * v.elemSize)
	if !custom || sbBytes != expected {
		return errs.ErrInvalidInput
	}

	flat := make([]byte, decodedLen)
	if _, err := frame.Decompress(v.frameParams(), src, flat); err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.slots = nil
	v.rawList = nil
	v.size = 0

	elemCount := len(flat) / v.elemSize
	off := 0

	for off < elemCount {
		n := v.chunkElems
		if elemCount-off < n {
			n = elemCount - off
		}

		sl := &slot[T]{logicalLen: n}
		v.slots = append(v.slots, sl)

		if len(v.rawList) < v.opts.MaxRawChunks {
			ctx := &rawContext[T]{data: make([]T, v.chunkElems), owner: sl}
			copy(toBytes(ctx.data)[:n*v.elemSize], flat[off*v.elemSize:(off+n)*v.elemSize])
			sl.raw = ctx
			v.rawList = append(v.rawList, ctx)
			v.touch(ctx)
		} else {
			raw := flat[off*v.elemSize : (off+n)*v.elemSize]
			dst := make([]byte, len(raw)+v.chunkOverhead())
			strategy, cn, err := superblock.EncodeSuperblock(v.superblockParams(), raw, dst)
			if err != nil {
				return err
			}
			sl.compressed = dst[:cn]
			sl.strategy = strategy
		}

		off += n
		v.size += n
	}

	return nil
}

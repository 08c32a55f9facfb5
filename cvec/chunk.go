package cvec

import (
	"sort"

	"github.com/Thermadiag/stenos/superblock"
)

// ensureRaw makes sure slot sl has a live raw context, decompressing it (or
// zero-filling it, for a brand-new chunk with no compressed image yet) if
// necessary, and returns it. Must be called with v.mu held; does not itself
// touch sl.mu (callers that intend to hand the raw state to a caller-visible
// Ref acquire sl.mu themselves afterward, see ref.go).
func (v *Vector[T]) ensureRaw(sl *slot[T]) (*rawContext[T], error) {
	if sl.raw != nil {
		v.touch(sl.raw)
		return sl.raw, nil
	}

	ctx, err := v.acquireRawContext(sl)
	if err != nil {
		return nil, err
	}

	dst := toBytes(ctx.data)
	if sl.compressed != nil {
		n := sl.logicalLen * v.elemSize
		if err := superblock.DecodeSuperblock(v.superblockParams(), sl.strategy, sl.compressed, dst[:n]); err != nil {
			return nil, err
		}
		ctx.dirty = false
	} else {
		for i := range dst {
			dst[i] = 0
		}
		ctx.dirty = true
	}

	ctx.owner = sl
	sl.raw = ctx
	v.touch(ctx)

	return ctx, nil
}

// acquireRawContext returns a rawContext to bind to sl: a freshly allocated
// one while under the configured budget, a reclaimed LRU candidate once at
// budget, or — if every candidate's owner is currently latched by a
// reader — a fresh one anyway, bounded only by system memory rather than
// blocking on a latch a caller may be holding indefinitely.
func (v *Vector[T]) acquireRawContext(sl *slot[T]) (*rawContext[T], error) {
	if len(v.rawList) < v.opts.MaxRawChunks {
		ctx := &rawContext[T]{data: make([]T, v.chunkElems)}
		v.rawList = append(v.rawList, ctx)
		return ctx, nil
	}

	if ctx := v.evictLRU(sl); ctx != nil {
		return ctx, nil
	}

	ctx := &rawContext[T]{data: make([]T, v.chunkElems)}
	v.rawList = append(v.rawList, ctx)

	return ctx, nil
}

// evictLRU scans v.rawList in least-recently-used order and demotes the
// first context whose owning slot can be exclusively try-locked, skipping
// skip (the slot currently being decompressed, which never has a live
// raw context yet and so can never legitimately be an eviction target
// anyway). The returned context remains in v.rawList, detached from its
// former owner, ready for the caller to rebind. Returns nil if no candidate
// could be locked or safely compressed.
func (v *Vector[T]) evictLRU(skip *slot[T]) *rawContext[T] {
	candidates := append([]*rawContext[T](nil), v.rawList...)
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].lastUsed < candidates[j].lastUsed })

	for _, c := range candidates {
		if c.owner == skip || c.owner == nil {
			continue
		}
		if !c.owner.mu.TryLock() {
			continue
		}

		err := v.compressInPlace(c)
		if err != nil {
			c.owner.mu.Unlock()
			continue
		}

		c.owner.raw = nil
		c.owner.mu.Unlock()
		c.owner = nil
		c.dirty = false

		return c
	}

	return nil
}

// compressInPlace produces a fresh compressed image for ctx's owning slot
// from ctx's current raw data, without detaching ctx from its owner. Callers
// that want to reuse ctx's backing array for a different slot must clear
// owner/dirty themselves afterward.
func (v *Vector[T]) compressInPlace(ctx *rawContext[T]) error {
	owner := ctx.owner
	raw := toBytes(ctx.data)[:owner.logicalLen*v.elemSize]

	dst := make([]byte, len(raw)+v.chunkOverhead())
	strategy, n, err := superblock.EncodeSuperblock(v.superblockParams(), raw, dst)
	if err != nil {
		return err
	}

	owner.compressed = dst[:n]
	owner.strategy = strategy
	ctx.dirty = false

	return nil
}

// removeRawContext drops ctx from v.rawList (used when the chunk it served
// is deallocated entirely, e.g. the tail chunk emptied by PopBack).
func (v *Vector[T]) removeRawContext(ctx *rawContext[T]) {
	for i, c := range v.rawList {
		if c == ctx {
			v.rawList = append(v.rawList[:i], v.rawList[i+1:]...)
			return
		}
	}
}

// capRawContexts compresses and evicts raw contexts, LRU-first, until
// v.rawList is at most v.opts.MaxRawChunks long or no further candidate can
// be safely evicted (an active reader is holding it). Used by ShrinkToFit.
func (v *Vector[T]) capRawContexts() {
	for len(v.rawList) > v.opts.MaxRawChunks {
		ctx := v.evictLRU(nil)
		if ctx == nil {
			return
		}
		v.removeRawContext(ctx)
	}
}

package cvec

import "github.com/Thermadiag/stenos/errs"

// tailFull reports whether the last slot holds a full chunk. Must be called
// with v.mu held and len(v.slots) > 0.
func (v *Vector[T]) tailFull() bool {
	tail := v.slots[len(v.slots)-1]
	return tail.logicalLen >= v.chunkElems
}

// PushBack appends val to the end of the container, decompressing (or
// allocating) the tail chunk's raw state first if needed.
func (v *Vector[T]) PushBack(val T) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pushBackLocked(val)
}

func (v *Vector[T]) pushBackLocked(val T) error {
	if len(v.slots) == 0 || v.tailFull() {
		v.slots = append(v.slots, &slot[T]{})
	}

	tail := v.slots[len(v.slots)-1]

	ctx, err := v.ensureRaw(tail)
	if err != nil {
		return err
	}

	ctx.data[tail.logicalLen] = val
	tail.logicalLen++
	ctx.dirty = true
	tail.compressed = nil
	v.size++

	return nil
}

// PopBack removes the last element. Never returns an error to the caller —
// a failure to bring the tail chunk back into raw form (decompressing its
// compressed image) is treated as unrecoverable and panics the process.
func (v *Vector[T]) PopBack() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.popBackLocked()
}

func (v *Vector[T]) popBackLocked() {
	if v.size == 0 {
		return
	}

	tail := v.slots[len(v.slots)-1]

	ctx, err := v.ensureRaw(tail)
	if err != nil {
		panic("cvec: pop_back: unrecoverable chunk failure: " + err.Error())
	}

	tail.logicalLen--
	ctx.dirty = true
	tail.compressed = nil
	v.size--

	if tail.logicalLen == 0 {
		v.removeRawContext(ctx)
		v.slots = v.slots[:len(v.slots)-1]
	}
}

// Resize grows or shrinks the container to exactly n elements, filling any
// newly created elements with fill. This implementation emplaces/pops one
// element at a time rather than compressing one fill-value chunk once and
// cloning it across a multi-chunk growth — a throughput optimization left
// undone here for clarity; see DESIGN.md.
func (v *Vector[T]) Resize(n int, fill T) error {
	if n < 0 {
		return errs.ErrInvalidParameter
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	for v.size > n {
		v.popBackLocked()
	}
	for v.size < n {
		if err := v.pushBackLocked(fill); err != nil {
			return err
		}
	}

	return nil
}

// At returns a shared Ref to the element at i. The caller must call
// ref.Release() when done.
func (v *Vector[T]) At(i int) (Ref[T], error) {
	v.mu.Lock()
	if i < 0 || i >= v.size {
		v.mu.Unlock()
		return Ref[T]{}, errs.ErrInvalidParameter
	}

	sl := v.slots[i/v.chunkElems]
	localIdx := i % v.chunkElems

	ctx, err := v.ensureRaw(sl)
	if err != nil {
		v.mu.Unlock()
		return Ref[T]{}, err
	}
	sl.mu.RLock()
	v.mu.Unlock()

	return Ref[T]{slot: sl, ctx: ctx, idx: localIdx, mutable: false}, nil
}

// AtMut returns an exclusive, mutable Ref to the element at i. The caller
// must call ref.Release() when done.
func (v *Vector[T]) AtMut(i int) (Ref[T], error) {
	v.mu.Lock()
	if i < 0 || i >= v.size {
		v.mu.Unlock()
		return Ref[T]{}, errs.ErrInvalidParameter
	}

	sl := v.slots[i/v.chunkElems]
	localIdx := i % v.chunkElems

	ctx, err := v.ensureRaw(sl)
	if err != nil {
		v.mu.Unlock()
		return Ref[T]{}, err
	}
	sl.mu.Lock()
	v.mu.Unlock()

	return Ref[T]{slot: sl, ctx: ctx, idx: localIdx, mutable: true}, nil
}

// Get is a convenience wrapper around At for callers that just want the
// value and don't need to hold a latch across further work.
func (v *Vector[T]) Get(i int) (T, error) {
	ref, err := v.At(i)
	if err != nil {
		var zero T
		return zero, err
	}
	defer ref.Release()
	return ref.Get(), nil
}

// Put is a convenience wrapper around AtMut for a single-element write.
func (v *Vector[T]) Put(i int, val T) error {
	ref, err := v.AtMut(i)
	if err != nil {
		return err
	}
	defer ref.Release()
	ref.Set(val)
	return nil
}

// ForEach visits elements in [first, last) in ascending index order, holding
// a shared latch per chunk for the duration of that chunk's visit. fn may
// return false to stop early; ForEach returns the number of elements
// actually visited.
func (v *Vector[T]) ForEach(first, last int, fn func(index int, val T) bool) int {
	visited := 0
	v.forEachChunk(first, last, false, func(base int, ctx *rawContext[T], lo, hi int) bool {
		for i := lo; i < hi; i++ {
			if !fn(base+i, ctx.data[i]) {
				visited += i - lo
				return false
			}
		}
		visited += hi - lo
		return true
	})
	return visited
}

// ForEachMut is the mutable counterpart of ForEach: fn receives a pointer
// into the chunk's raw storage and may modify it in place. Every chunk
// touched is marked dirty, so its stale compressed image gets regenerated on
// the next compress-back rather than being served from cache.
func (v *Vector[T]) ForEachMut(first, last int, fn func(index int, val *T) bool) int {
	visited := 0
	v.forEachChunk(first, last, true, func(base int, ctx *rawContext[T], lo, hi int) bool {
		cont := true
		i := lo
		for ; i < hi; i++ {
			if !fn(base+i, &ctx.data[i]) {
				cont = false
				break
			}
		}
		visited += i - lo
		ctx.dirty = true
		ctx.owner.compressed = nil
		return cont
	})
	return visited
}

// ForEachChunk is the low-level per-chunk iteration primitive ForEach and
// ForEachMut are built on (supplemented feature; see DESIGN.md /
// cvector.hpp's chunk-wise algorithms). data is a direct slice into the
// chunk's live raw storage valid only for the duration of fn's call.
func (v *Vector[T]) ForEachChunk(first, last int, fn func(chunkIndex, base int, data []T) bool) {
	v.forEachChunk(first, last, false, func(base int, ctx *rawContext[T], lo, hi int) bool {
		return fn(base/v.chunkElems, base+lo, ctx.data[lo:hi])
	})
}

func (v *Vector[T]) forEachChunk(first, last int, mutable bool, visit func(base int, ctx *rawContext[T], lo, hi int) bool) {
	if first < 0 {
		first = 0
	}

	v.mu.Lock()
	if last > v.size {
		last = v.size
	}
	chunkElems := v.chunkElems
	v.mu.Unlock()

	for i := first; i < last; {
		slotIdx := i / chunkElems
		base := slotIdx * chunkElems
		lo := i - base
		hi := last - base
		if hi > chunkElems {
			hi = chunkElems
		}

		v.mu.Lock()
		if slotIdx >= len(v.slots) {
			v.mu.Unlock()
			return
		}
		sl := v.slots[slotIdx]

		ctx, err := v.ensureRaw(sl)
		if err != nil {
			v.mu.Unlock()
			return
		}
		if mutable {
			sl.mu.Lock()
		} else {
			sl.mu.RLock()
		}
		v.mu.Unlock()

		cont := visit(base, ctx, lo, hi)

		if mutable {
			sl.mu.Unlock()
		} else {
			sl.mu.RUnlock()
		}

		if !cont {
			return
		}
		i = base + hi
	}
}

// Insert inserts val at index i: it appends a zero value, then shifts every
// element at or after i one position to the right with getLocked/putLocked,
// then stores val at i. i must be in [0, Len()].
func (v *Vector[T]) Insert(i int, val T) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if i < 0 || i > v.size {
		return errs.ErrInvalidParameter
	}
	if i == v.size {
		return v.pushBackLocked(val)
	}

	var zero T
	if err := v.pushBackLocked(zero); err != nil {
		return err
	}

	for j := v.size - 1; j > i; j-- {
		moved, err := v.getLocked(j - 1)
		if err != nil {
			return err
		}
		if err := v.putLocked(j, moved); err != nil {
			return err
		}
	}

	return v.putLocked(i, val)
}

// Erase removes the element at index i, shifting every subsequent element one
// position to the left, then trimming the now-vacated tail slot.
func (v *Vector[T]) Erase(i int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if i < 0 || i >= v.size {
		return errs.ErrInvalidParameter
	}

	for j := i; j < v.size-1; j++ {
		moved, err := v.getLocked(j + 1)
		if err != nil {
			return err
		}
		if err := v.putLocked(j, moved); err != nil {
			return err
		}
	}

	v.popBackLocked()
	return nil
}

// getLocked and putLocked are single-element accessors used by Insert/Erase's
// shift loop; unlike Get/Put they assume v.mu is already held by the caller
// and so talk to slot state directly rather than going through At/AtMut (which
// would deadlock re-acquiring v.mu).
func (v *Vector[T]) getLocked(i int) (T, error) {
	sl := v.slots[i/v.chunkElems]
	localIdx := i % v.chunkElems

	ctx, err := v.ensureRaw(sl)
	if err != nil {
		var zero T
		return zero, err
	}
	return ctx.data[localIdx], nil
}

func (v *Vector[T]) putLocked(i int, val T) error {
	sl := v.slots[i/v.chunkElems]
	localIdx := i % v.chunkElems

	ctx, err := v.ensureRaw(sl)
	if err != nil {
		return err
	}
	ctx.data[localIdx] = val
	ctx.dirty = true
	sl.compressed = nil
	return nil
}

// ShrinkToFit compresses every dirty resident chunk whose latch is not held
// by a reader (chunks with an active Ref are skipped) and then caps the raw
// context count at MaxRawChunks, evicting LRU-first. A compression failure
// here is treated as unrecoverable and panics.
func (v *Vector[T]) ShrinkToFit() {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, ctx := range v.rawList {
		if ctx.owner == nil {
			continue
		}
		if !ctx.dirty && ctx.owner.compressed != nil {
			continue
		}
		if !ctx.owner.mu.TryLock() {
			continue
		}

		err := v.compressInPlace(ctx)
		ctx.owner.mu.Unlock()

		if err != nil {
			panic("cvec: shrink_to_fit: unrecoverable chunk failure: " + err.Error())
		}
	}

	v.capRawContexts()
}

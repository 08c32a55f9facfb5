package cvec

// Ref is a reference proxy returned by At/AtMut: a handle holding shared (or,
// for AtMut, exclusive) ownership of its owning chunk's raw state for as long
// as the Ref is live. Callers MUST call Release exactly once when done;
// failing to do so leaves the chunk pinned in raw state forever, since a
// chunk with outstanding references can never be transitioned out of raw
// state.
//
// A Ref is itself a plain value (no finalizer, no destructor) — Go has no
// implicit destruction point, so the release is always the caller's explicit
// responsibility; defer ref.Release() is the idiomatic pattern.
type Ref[T any] struct {
	slot    *slot[T]
	ctx     *rawContext[T]
	idx     int
	mutable bool
}

// Get returns the element's current value.
func (r Ref[T]) Get() T {
	return r.ctx.data[r.idx]
}

// Set overwrites the element's value. Only valid on a Ref obtained from
// AtMut; it marks the owning chunk dirty and drops any now-stale compressed
// image immediately, so a subsequent read never serves data that no longer
// matches the raw buffer.
func (r Ref[T]) Set(val T) {
	r.ctx.data[r.idx] = val
	r.ctx.dirty = true
	r.slot.compressed = nil
}

// Take returns the element's value and is otherwise equivalent to Get; it
// exists as the named accessor internal bulk algorithms (sort, shift-based
// insert/erase) use when they mean to move a value out rather than merely
// inspect it. Taking a value never invalidates the slot — Go has no
// moved-from state for T.
func (r Ref[T]) Take() T {
	return r.Get()
}

// Release relinquishes the latch this Ref holds. Safe to call at most once.
func (r Ref[T]) Release() {
	if r.mutable {
		r.slot.mu.Unlock()
	} else {
		r.slot.mu.RUnlock()
	}
}

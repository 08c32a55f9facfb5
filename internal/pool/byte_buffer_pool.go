// Package pool provides a reusable byte-buffer pool backing the per-thread
// compression scratch buffers described in the specification's resource model:
// "a process-wide, lock-free freelist of thread-local compression scratch buffers
// keyed by size class".
package pool

import "sync"

// Default and maximum sizes for the superblock scratch-buffer size classes. A
// scratch buffer is used by frame.Compress's parallel wave loop as the output
// area for one superblock's record header and coded payload, so its natural
// default tracks the smallest legal superblock size.
const (
	ScratchDefaultSize  = 64 * 1024
	ScratchMaxThreshold = 16 * 1024 * 1024
)

// ByteBuffer is a growable byte slice wrapper that retains its backing array
// across Reset calls, avoiding repeated allocation when pulled from a Pool.
type ByteBuffer struct {
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the given default capacity.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{B: make([]byte, 0, defaultSize)}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte { return bb.B }

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int { return len(bb.B) }

// Cap returns the capacity of the buffer.
func (bb *ByteBuffer) Cap() int { return cap(bb.B) }

// Reset empties the buffer while retaining its backing array.
func (bb *ByteBuffer) Reset() { bb.B = bb.B[:0] }

// MustWrite appends data to the buffer, growing it if necessary.
func (bb *ByteBuffer) MustWrite(data []byte) {
	bb.B = append(bb.B, data...)
}

// Grow ensures the buffer can accept requiredBytes more bytes without a
// reallocation, growing the backing array geometrically otherwise.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	available := cap(bb.B) - len(bb.B)
	if available >= requiredBytes {
		return
	}

	growBy := ScratchDefaultSize
	if cap(bb.B) > 4*ScratchDefaultSize {
		growBy = cap(bb.B) / 4
	}
	if growBy < requiredBytes {
		growBy = requiredBytes
	}

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// SetLength sets the buffer length to n, which must not exceed capacity.
func (bb *ByteBuffer) SetLength(n int) {
	if n < 0 || n > cap(bb.B) {
		panic("pool: SetLength out of range")
	}
	bb.B = bb.B[:n]
}

// Buffer returns a buffer sized to at least n bytes, reusing the backing array.
func (bb *ByteBuffer) Buffer(n int) []byte {
	bb.Grow(n)
	bb.SetLength(n)
	return bb.B
}

// ByteBufferPool pools ByteBuffers of a given default/maximum size class.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a pool whose buffers default to defaultSize and are
// discarded (rather than retained) once they grow past maxThreshold.
func NewByteBufferPool(defaultSize, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any { return NewByteBuffer(defaultSize) },
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool.
func (p *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := p.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool. Oversized buffers are dropped so a
// single large superblock cannot permanently bloat the freelist.
func (p *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}
	if p.maxThreshold > 0 && cap(bb.B) > p.maxThreshold {
		return
	}
	bb.Reset()
	p.pool.Put(bb)
}

var scratchPool = NewByteBufferPool(ScratchDefaultSize, ScratchMaxThreshold)

// GetScratch retrieves a compression scratch buffer from the default pool.
func GetScratch() *ByteBuffer { return scratchPool.Get() }

// PutScratch returns a compression scratch buffer to the default pool.
func PutScratch(bb *ByteBuffer) { scratchPool.Put(bb) }

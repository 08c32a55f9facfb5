// Package cvec implements a compressed-vector container: a random-access
// sequence of fixed-width elements stored as a chain of compressed chunks,
// with a bounded pool of raw (decompressed) chunk buffers shared across the
// container and reclaimed under LRU pressure.
//
// Each chunk is independently compressed, but unlike a read-only encoded
// blob, a chunk's decompressed form can be cached, mutated in place, and
// re-compressed on demand. A per-chunk reader/writer latch guards that raw
// state, and a bounded raw-context pool is reclaimed LRU-first, skipping
// entries with active readers so indexing never races a demotion out from
// under a live reference.
//
// T must be a fixed-size, bit-copy-relocatable type with no pointers, slices,
// maps, or interfaces — moving an object must be safe to do as a raw memcpy.
// Numeric types and plain structs of numeric fields qualify; a type
// containing a pointer or slice does not, and using one produces corrupted
// output silently (this package has no way to detect the violation at
// compile or run time; it is a caller-guaranteed precondition like the rest
// of this container's contracts).
package cvec

import (
	"sync"
	"unsafe"

	"github.com/Thermadiag/stenos/entropy"
	"github.com/Thermadiag/stenos/errs"
	"github.com/Thermadiag/stenos/superblock"
)

// baseChunkElems is the element count of a K=0 chunk: chunk_elems = 256 << K
// for a container-configured K, default K=0.
const baseChunkElems = 256

// Options configures a Vector at construction time.
type Options struct {
	// ChunkShift is K in chunk_elems = 256 << K. Also serves as the frame
	// BlockShift used by Serialize/Deserialize, so the container's chunk
	// size is always the superblock size of its serialized frame.
	ChunkShift int
	// MaxRawChunks bounds the number of chunks held in decompressed form at
	// once. Must be >= 1.
	MaxRawChunks int
	// Level is the compression level (0-9) passed to the superblock
	// orchestrator for every chunk.
	Level int
	// Entropy is the entropy_compress/entropy_decompress collaborator used
	// for chunk (de)compression. Defaults to the zstd backend if nil.
	Entropy entropy.Codec
}

// DefaultOptions returns the Options a Vector uses when none are supplied
// explicitly: K=0, two raw chunks resident, level 3, zstd entropy.
func DefaultOptions() Options {
	return Options{ChunkShift: 0, MaxRawChunks: 2, Level: 3}
}

func (o Options) normalize() (Options, error) {
	if o.ChunkShift < 0 {
		return o, errs.ErrInvalidParameter
	}
	if o.MaxRawChunks < 1 {
		o.MaxRawChunks = 1
	}
	if o.Level < 0 || o.Level > 9 {
		return o, errs.ErrInvalidParameter
	}
	if o.Entropy == nil {
		codec, err := entropy.Get(entropy.Zstd)
		if err != nil {
			return o, err
		}
		o.Entropy = codec
	}
	return o, nil
}

// slot is one chunk's storage descriptor: a logical length and, depending on
// state, a compressed payload, a live raw context, or both.
type slot[T any] struct {
	mu         sync.RWMutex
	logicalLen int
	compressed []byte
	strategy   superblock.Strategy
	raw        *rawContext[T]
}

// rawContext is the decompressed backing storage for one chunk. It is reused
// across chunks as the LRU cache evicts and reassigns it; ownership is
// tracked by a direct pointer back to its current slot rather than an index,
// since Go's garbage collector makes a dangling owner pointer impossible —
// the slot latch (not a lifetime invariant) is what actually prevents
// eviction out from under a live reader (see DESIGN.md).
type rawContext[T any] struct {
	data     []T
	dirty    bool
	owner    *slot[T]
	lastUsed int64
}

// Vector is a random-access sequence of T backed by compressed chunks.
// A Vector is not safe for concurrent structural mutation (PushBack, PopBack,
// Resize, ShrinkToFit, Deserialize) from multiple goroutines at once, but
// concurrent readers (At, ForEach in its const form) are safe with each
// other and with chunk demotion, via the per-chunk latch — this container
// offers read-mostly concurrency, not full linearizability under mutation.
type Vector[T any] struct {
	mu sync.Mutex

	opts       Options
	elemSize   int
	chunkElems int

	size  int
	slots []*slot[T]

	rawList  []*rawContext[T]
	lruClock int64
}

// New creates an empty Vector configured by opts.
func New[T any](opts Options) (*Vector[T], error) {
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}

	var zero T
	elemSize := int(unsafe.Sizeof(zero))
	if elemSize < 1 || elemSize >= 65536 {
		return nil, errs.ErrInvalidParameter
	}

	return &Vector[T]{
		opts:       opts,
		elemSize:   elemSize,
		chunkElems: baseChunkElems << uint(opts.ChunkShift),
	}, nil
}

// Len returns the number of elements currently stored.
func (v *Vector[T]) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.size
}

// ElemSize returns sizeof(T) as used for this container's superblock BPP.
func (v *Vector[T]) ElemSize() int { return v.elemSize }

// ChunkElems returns the number of elements per chunk (256 << ChunkShift).
func (v *Vector[T]) ChunkElems() int { return v.chunkElems }

func toBytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	elemSize := int(unsafe.Sizeof(s[0]))
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*elemSize)
}

func (v *Vector[T]) touch(ctx *rawContext[T]) {
	v.lruClock++
	ctx.lastUsed = v.lruClock
}

func (v *Vector[T]) superblockParams() superblock.Params {
	return superblock.Params{BPP: v.elemSize, Level: v.opts.Level, Entropy: v.opts.Entropy, Estimator: v.opts.Entropy}
}

// chunkOverhead bounds the worst-case growth EncodeSuperblock can introduce
// for one chunk's worth of bytes: at most one marker byte per 256-element
// block plus the usual small fixed slack (mirrors superblock.blockOverhead,
// duplicated here since that helper is package-private).
func (v *Vector[T]) chunkOverhead() int {
	return v.chunkElems/256 + 64
}

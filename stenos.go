// Package stenos implements the Context façade: a small, mutable
// configuration object wrapping the frame codec (package frame), exposing
// level/thread-count/budget/block-shift settings and Compress/Decompress/
// Bound convenience methods in idiomatic Go.
//
// Context is a thin facade type holding encoder/decoder options, constructed
// via functional options and exposing Compress/Decompress over the
// lower-level frame machinery, so callers who only need the common path
// never have to touch package frame directly.
package stenos

import (
	"github.com/Thermadiag/stenos/entropy"
	"github.com/Thermadiag/stenos/errs"
	"github.com/Thermadiag/stenos/frame"
	"github.com/Thermadiag/stenos/internal/options"
)

// NoShift disables a custom superblock size, reverting to automatic sizing.
const NoShift = frame.NoShift

// Context holds the configuration for a family of Compress/Decompress calls.
// A Context is not safe for concurrent use by
// multiple goroutines calling its setters; Compress/Decompress themselves
// may be called concurrently once configuration has settled, since they
// only read the Context's fields.
type Context struct {
	level          int
	threads        int
	maxNanoseconds int64
	blockShift     int
	entropyAlg     entropy.Algorithm
}

// Option configures a Context at construction time.
type Option = options.Option[*Context]

// WithLevel is the constructor-time equivalent of SetLevel.
func WithLevel(level int) Option {
	return options.New(func(c *Context) error { return c.SetLevel(level) })
}

// WithThreads is the constructor-time equivalent of SetThreads.
func WithThreads(n int) Option {
	return options.NoError(func(c *Context) { c.SetThreads(n) })
}

// WithMaxNanoseconds is the constructor-time equivalent of SetMaxNanoseconds.
func WithMaxNanoseconds(ns int64) Option {
	return options.NoError(func(c *Context) { c.SetMaxNanoseconds(ns) })
}

// WithBlockShift is the constructor-time equivalent of SetBlockShift.
func WithBlockShift(k int) Option {
	return options.NoError(func(c *Context) { c.SetBlockShift(k) })
}

// WithEntropy selects the entropy backend used for every Compress/Decompress
// call made through this Context. Defaults to zstd; stenos ships the zstd,
// s2 and lz4 backends in package entropy.
func WithEntropy(alg entropy.Algorithm) Option {
	return options.NoError(func(c *Context) { c.entropyAlg = alg })
}

// MakeContext returns a new Context with level=1, threads=1, no budget, no
// custom block shift, then applies opts in order.
func MakeContext(opts ...Option) (*Context, error) {
	c := &Context{level: 1, threads: 1, blockShift: NoShift, entropyAlg: entropy.Zstd}
	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// SetLevel sets the compression level: 0 means memcpy, 9 is maximum.
func (c *Context) SetLevel(level int) error {
	if level < 0 || level > 9 {
		return errs.ErrInvalidParameter
	}
	c.level = level
	return nil
}

// SetThreads sets the worker-count hint, clamped to >= 1.
func (c *Context) SetThreads(n int) {
	if n < 1 {
		n = 1
	}
	c.threads = n
}

// SetMaxNanoseconds sets the wall-clock compression budget; 0 disables it.
func (c *Context) SetMaxNanoseconds(ns int64) {
	if ns < 0 {
		ns = 0
	}
	c.maxNanoseconds = ns
}

// SetBlockShift sets a caller-fixed superblock size of BPP*256*2^k bytes, or
// NoShift to let the encoder derive it automatically.
func (c *Context) SetBlockShift(k int) {
	c.blockShift = k
}

// Compress writes a complete frame encoding src (interpreted as a sequence
// of bpp-byte elements) into dst and returns the number of bytes written.
func (c *Context) Compress(bpp int, src, dst []byte) (int, error) {
	codec, err := entropy.Get(c.entropyAlg)
	if err != nil {
		return 0, err
	}

	p := frame.Params{
		BPP:            bpp,
		Level:          c.level,
		Threads:        c.threads,
		MaxNanoseconds: c.maxNanoseconds,
		BlockShift:     c.blockShift,
		Entropy:        codec,
		Estimator:      codec,
	}

	return frame.Compress(p, src, dst)
}

// Decompress reads a complete frame from src into dst and returns the
// number of bytes written.
func (c *Context) Decompress(bpp int, src, dst []byte) (int, error) {
	codec, err := entropy.Get(c.entropyAlg)
	if err != nil {
		return 0, err
	}

	p := frame.Params{
		BPP:       bpp,
		Threads:   c.threads,
		Entropy:   codec,
		Estimator: codec,
	}

	return frame.Decompress(p, src, dst)
}

// Inspect walks a frame produced by Compress and reports the strategy code
// and sizes chosen for each superblock, without decompressing any payload.
// Useful for test and benchmark harnesses that want to assert on strategy
// selection without paying for a full round trip.
func (c *Context) Inspect(bpp int, src []byte) ([]frame.SuperblockInfo, error) {
	return frame.Inspect(bpp, src)
}

// Bound returns an upper bound on the compressed size of an n-byte buffer.
func Bound(n int64) int64 {
	return frame.Bound(n)
}

// Bound returns an upper bound on the compressed size of an n-byte buffer for
// this Context's configuration, accounting for a custom block shift set via
// SetBlockShift. Prefer this over the package-level Bound whenever a custom
// block shift is in play, since a custom shift can land on a smaller
// superblock size than the context-free bound assumes.
func (c *Context) Bound(bpp int, n int64) int64 {
	return frame.BoundForShift(bpp, n, c.blockShift)
}

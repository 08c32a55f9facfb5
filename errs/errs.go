// Package errs defines the sentinel errors returned across the stenos codec
// packages (transpose, bytedelta, block, superblock, frame, cvec).
//
// Every package returns these values directly (never wrapped) so callers can use
// errors.Is for dispatch, matching the error-kind taxonomy in the specification's
// error handling design.
package errs

import "errors"

var (
	// ErrInvalidParameter is returned when a caller-supplied parameter is out of
	// its valid range: BPP out of [1, 65535], superblock size out of range, or
	// compression level out of [0, 9].
	ErrInvalidParameter = errors.New("stenos: invalid parameter")

	// ErrSrcOverflow is returned when the source buffer is truncated before a
	// required field could be read.
	ErrSrcOverflow = errors.New("stenos: source buffer truncated")

	// ErrDstOverflow is returned when the destination buffer is too small to
	// hold the operation's output. No partial output is written on this error.
	ErrDstOverflow = errors.New("stenos: destination buffer too small")

	// ErrInvalidInput is returned when frame or block integrity is violated:
	// an unrecognized strategy code, an unrecognized plane/block kind, or a
	// length field that does not match the data that follows it.
	ErrInvalidInput = errors.New("stenos: invalid or corrupted input")

	// ErrInvalidInstructionSet is returned when a code path requires a CPU
	// feature the running host does not provide.
	ErrInvalidInstructionSet = errors.New("stenos: required instruction set unavailable")

	// ErrAlloc is returned when a scratch or worker buffer allocation failed.
	ErrAlloc = errors.New("stenos: allocation failed")

	// ErrEntropyInternal is returned when the entropy collaborator reports an
	// unrecoverable internal error.
	ErrEntropyInternal = errors.New("stenos: entropy coder internal error")
)

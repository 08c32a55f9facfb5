// Package workerpool implements a bounded-concurrency task runner for the
// frame codec's parallel superblock waves. It is a thin wrapper around
// golang.org/x/sync/errgroup: SetLimit caps concurrency, Go enqueues a task,
// Wait blocks for the wave to finish and returns the first error.
//
// errgroup already provides submit/wait-for-wave semantics with bounded
// concurrency, so this package wraps it rather than hand-rolling a
// channel-based pool.
package workerpool

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Pool runs tasks with bounded concurrency. A Pool is reusable across waves:
// call Wave once per wave with that wave's tasks.
type Pool struct {
	limit int
}

// New creates a Pool that runs at most limit tasks concurrently. limit <= 0
// is clamped to 1.
func New(limit int) *Pool {
	if limit <= 0 {
		limit = 1
	}
	return &Pool{limit: limit}
}

// DefaultThreads returns a worker count hint derived from the host's
// available CPUs. Nothing in this module applies it on its own; a
// stenos.Context starts with one thread.
func DefaultThreads() int {
	return runtime.GOMAXPROCS(0)
}

// Wave runs a single wave: it submits every task in fns (bounded to p.limit
// concurrent at a time) and blocks until they all finish, returning the first
// error encountered, if any.
func (p *Pool) Wave(ctx context.Context, fns []func() error) error {
	if len(fns) == 0 {
		return nil
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(p.limit)

	for _, fn := range fns {
		fn := fn
		g.Go(fn)
	}

	return g.Wait()
}

// Limit returns the pool's configured concurrency cap.
func (p *Pool) Limit() int {
	return p.limit
}

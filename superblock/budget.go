package superblock

import (
	"sync"
	"time"
)

// entropyLevelTable maps a required compression rate, expressed in bytes per
// nanosecond (numerically identical to GB/s), onto an entropy level in
// [1,9], monotonically: slower required rate maps to a higher level. A high
// required rate means the budget demands speed, so it maps to a low (cheap)
// level; a low required rate means there is time to spare, so it maps to a
// high level.
var entropyLevelTable = []struct {
	rate  float64
	level int
}{
	{3.0, 1},
	{2.0, 2},
	{1.5, 3},
	{1.0, 4},
	{0.6, 5},
	{0.3, 6},
	{0.15, 7},
	{0.05, 8},
	{0, 9},
}

func rateToLevel(rate float64) int {
	for _, e := range entropyLevelTable {
		if rate >= e.rate {
			return e.level
		}
	}
	return 9
}

// Budget tracks the wall-clock compression budget shared across every
// superblock of a single frame. It is mutated from whichever goroutine is
// currently encoding a superblock; the frame codec serializes access to a
// given superblock's slot but several superblocks may be in flight at once
// across a parallel wave, so every mutable field here is guarded by mu.
type Budget struct {
	mu sync.Mutex

	totalBytes int64
	totalNanos int64
	start      time.Time

	processed int64
	memcpy    bool
}

// NewBudget creates a Budget for a frame of totalBytes logical bytes with a
// maxNanoseconds wall-clock target. A zero or negative maxNanoseconds
// disables the budget entirely; NewBudget returns nil in that case, and a
// nil *Budget means "no budget active" everywhere in this package.
func NewBudget(totalBytes, maxNanoseconds int64) *Budget {
	if maxNanoseconds <= 0 {
		return nil
	}

	return &Budget{totalBytes: totalBytes, totalNanos: maxNanoseconds, start: time.Now()}
}

// elapsedNanos returns nanoseconds since the budget started, never zero (avoids a
// divide-by-zero on the very first superblock).
func (b *Budget) elapsedNanos() int64 {
	e := time.Since(b.start).Nanoseconds()
	if e <= 0 {
		return 1
	}
	return e
}

// RequiredRate returns the bytes/nanosecond rate the encoder must sustain
// from this point on to finish within budget, based on bytes processed and
// time elapsed so far. Used both by the entropy-level table and directly by
// the orchestrator's target-speed gates.
func (b *Budget) RequiredRate() float64 {
	if b == nil {
		return 0
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	remaining := b.totalBytes - b.processed
	if remaining <= 0 {
		return 0
	}

	remainingNanos := b.totalNanos - b.elapsedNanos()
	if remainingNanos <= 0 {
		return float64(remaining) // effectively "infinitely fast required"
	}

	return float64(remaining) / float64(remainingNanos)
}

// MemcpyFromHere reports whether a previous superblock's level computation
// dropped to 0 (finish with memcpy from here on), which is sticky for the
// remainder of the frame.
func (b *Budget) MemcpyFromHere() bool {
	if b == nil {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	return b.memcpy
}

// EntropyLevel computes the entropy level to use for the next superblock,
// applying the required-rate table and then an advance-ratio adjustment:
// (processed/total)/(elapsed/budget) compares how far through the input the
// encoder is against how far through the budget it is — running ahead of
// schedule bumps the level up by 1-3, running behind drops it by 1-2. A
// returned level of 0 means "memcpy from here on" and sets the sticky flag.
func (b *Budget) EntropyLevel(userLevel int) int {
	if b == nil {
		return userLevel
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.memcpy {
		return 0
	}

	elapsed := b.elapsedNanos()
	level := rateToLevel(float64(b.totalBytes-b.processed) / float64(max64(b.totalNanos-elapsed, 1)))

	if b.totalBytes > 0 && elapsed > 0 {
		processedFrac := float64(b.processed) / float64(b.totalBytes)
		elapsedFrac := float64(elapsed) / float64(b.totalNanos)
		if elapsedFrac > 0 {
			advance := processedFrac / elapsedFrac
			switch {
			case advance >= 1.5:
				level += 3
			case advance >= 1.2:
				level += 2
			case advance > 1.0:
				level++
			case advance < 0.5:
				level -= 2
			case advance < 0.8:
				level--
			}
		}
	}

	if level > 9 {
		level = 9
	}
	if level < 0 {
		level = 0
	}
	if level == 0 {
		b.memcpy = true
	}

	return level
}

// Record advances the budget's processed-bytes counter after a superblock
// has been coded, so subsequent calls see an up-to-date advance ratio.
func (b *Budget) Record(n int) {
	if b == nil {
		return
	}

	b.mu.Lock()
	b.processed += int64(n)
	b.mu.Unlock()
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

package testutil

import (
	"fmt"
	"sync"
)

// SequentialBatchIDs hands out "{prefix}-1", "{prefix}-2", ... so every run
// of the same scenario stamps identical batch ids.
//
// Unlike engine.FixedGenerator it never runs out, and it can be reset for
// test reuse.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequentialBatchIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialBatchIDs creates a generator. An empty prefix becomes
// "test-batch".
func NewSequentialBatchIDs(prefix string) *SequentialBatchIDs {
	if prefix == "" {
		prefix = "test-batch"
	}
	return &SequentialBatchIDs{prefix: prefix}
}

// Generate returns the next id.
func (g *SequentialBatchIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

// Reset restarts numbering at 1.
func (g *SequentialBatchIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n = 0
}

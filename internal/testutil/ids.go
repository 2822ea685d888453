package testutil

import (
	"fmt"
	"sync"
)

// SequenceGenerator hands out "<prefix>-1", "<prefix>-2", ... as node ids.
//
// Two generators with the same prefix produce identical sequences, so a
// scenario replayed against a fresh generator creates byte-identical
// documents. Reset rewinds to the start for test reuse.
//
// Thread-safety: all methods are safe for concurrent use.
type SequenceGenerator struct {
	mu     sync.Mutex
	prefix string
	seq    int64
}

// NewSequenceGenerator creates a generator. An empty prefix becomes "node".
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	if prefix == "" {
		prefix = "node"
	}
	return &SequenceGenerator{prefix: prefix}
}

// Generate returns the next id. Implements tree.IDGenerator.
func (g *SequenceGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("%s-%d", g.prefix, g.seq)
}

// Issued returns how many ids have been generated since the last Reset.
func (g *SequenceGenerator) Issued() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq
}

// Reset rewinds the sequence. The next Generate returns "<prefix>-1".
func (g *SequenceGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}

// FixedGenerator returns the same id every time. Useful when a test creates
// exactly one node and wants to address it without reading it back.
type FixedGenerator string

// Generate returns the fixed id, or "fixed-id" when empty.
func (g FixedGenerator) Generate() string {
	if g == "" {
		return "fixed-id"
	}
	return string(g)
}

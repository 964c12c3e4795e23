package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDs generates predictable ask identifiers: "<prefix>-0001",
// "<prefix>-0002", and so on.
//
// This enables golden snapshot comparison of pipeline output, which would
// otherwise embed random UUIDs.
//
// Thread-safety: NewID is safe for concurrent use.
type SequentialIDs struct {
	mu     sync.Mutex
	prefix string
	seq    int
}

// NewSequentialIDs creates a generator. If prefix is empty, "ask" is used.
func NewSequentialIDs(prefix string) *SequentialIDs {
	if prefix == "" {
		prefix = "ask"
	}
	return &SequentialIDs{prefix: prefix}
}

// NewID returns the next identifier.
func (g *SequentialIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("%s-%04d", g.prefix, g.seq)
}

// Reset restarts the sequence at 1.
func (g *SequentialIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}

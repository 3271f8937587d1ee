// Package inflight tracks asynchronous requests that have been accepted but
// not yet completed, so a duplicate is rejected instead of queued twice.
package inflight

import (
	"context"
	"sync"
	"sync/atomic"
)

// Guard is a set of held keys.
type Guard struct {
	mu      sync.Mutex
	held    map[string]struct{}
	maxSize int
	size    atomic.Int64
}

// New creates an unbounded Guard unless WithMaxSize is given.
func New(opts ...Option) *Guard {
	g := &Guard{held: make(map[string]struct{})}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Key joins a session id and an action name.
func Key(sessionID, action string) string {
	return sessionID + "/" + action
}

// Acquire holds key. It fails with ErrInFlight if key is already held and
// with ErrFull if the guard is at capacity.
func (g *Guard) Acquire(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.held[key]; ok {
		return ErrInFlight
	}
	if g.maxSize > 0 && len(g.held) >= g.maxSize {
		return ErrFull
	}
	g.held[key] = struct{}{}
	g.size.Add(1)
	return nil
}

// Release drops key. Releasing a key that is not held is a no-op.
func (g *Guard) Release(_ context.Context, key string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.held[key]; ok {
		delete(g.held, key)
		g.size.Add(-1)
	}
}

// Held reports whether key is currently held.
func (g *Guard) Held(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.held[key]
	return ok
}

// Size returns the number of held keys.
func (g *Guard) Size() int64 {
	return g.size.Load()
}

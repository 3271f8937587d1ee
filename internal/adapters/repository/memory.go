package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/kickoff/internal/domain/game"
	"github.com/okian/kickoff/pkg/metrics"
)

const defaultMetricsUpdateInterval = 5 * time.Second

// MemoryStore keeps sessions in a map guarded by a single mutex.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool

	metricsUpdateInterval time.Duration
	idleTTL               time.Duration
	now                   func() time.Time

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore constructs a store and starts its background upkeep.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		sessions:              make(map[string]*Session),
		metricsUpdateInterval: defaultMetricsUpdateInterval,
		now:                   time.Now,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.startUpkeep(ctx)
	return s
}

// startUpkeep publishes the session gauge and sweeps idle sessions.
func (s *MemoryStore) startUpkeep(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.Sweep()
				metrics.UpdateActiveSessions(s.Count(ctx))
			}
		}
	}()
}

// Close stops background upkeep. Further calls fail with ErrClosed.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Create implements Store.
func (s *MemoryStore) Create(_ context.Context, sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if _, ok := s.sessions[sess.ID]; ok {
		return ErrExists
	}
	now := s.now()
	if sess.Created.IsZero() {
		sess.Created = now
	}
	sess.Updated = now
	s.sessions[sess.ID] = &sess
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Session{}, ErrClosed
	}
	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	return *sess, nil
}

// Update implements Store.
func (s *MemoryStore) Update(_ context.Context, id string, fn Mutation) (game.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return game.State{}, ErrClosed
	}
	sess, ok := s.sessions[id]
	if !ok {
		return game.State{}, ErrNotFound
	}
	next, err := fn(sess.State)
	if err != nil {
		return sess.State, err
	}
	sess.State = next
	sess.Updated = s.now()
	return next, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops sessions idle for longer than the configured TTL and returns
// how many were removed.
func (s *MemoryStore) Sweep() int {
	if s.idleTTL <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.idleTTL)
	removed := 0
	for id, sess := range s.sessions {
		if sess.Updated.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Package repository defines the session store interface and errors.
package repository

import (
	"context"
	"time"

	"github.com/okian/kickoff/internal/domain/game"
)

// Session is one career and its bookkeeping.
type Session struct {
	ID      string     `json:"id"`
	State   game.State `json:"state"`
	Created time.Time  `json:"created"`
	Updated time.Time  `json:"updated"`
}

// Mutation transforms a state. Returning an error leaves the stored state
// unchanged.
type Mutation func(game.State) (game.State, error)

// Store provides read/write access to sessions.
type Store interface {
	// Create stores a new session. Returns ErrExists if the id is taken.
	Create(ctx context.Context, s Session) error

	// Get returns the session. Returns ErrNotFound if the id is unknown.
	Get(ctx context.Context, id string) (Session, error)

	// Update applies fn to the session state. Updates to one session are
	// serialised; the stored state is replaced only when fn succeeds.
	Update(ctx context.Context, id string, fn Mutation) (game.State, error)

	// Delete removes the session. Returns ErrNotFound if the id is unknown.
	Delete(ctx context.Context, id string) error

	// Count returns the number of live sessions.
	Count(ctx context.Context) int

	Close() error
}

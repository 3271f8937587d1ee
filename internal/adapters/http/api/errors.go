package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/kickoff/internal/adapters/mq/queue"
	"github.com/okian/kickoff/internal/adapters/photostore"
	"github.com/okian/kickoff/internal/adapters/repository"
	"github.com/okian/kickoff/internal/domain/game"
	"github.com/okian/kickoff/internal/domain/inflight"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrStreaming  = errors.New("streaming unsupported")
)

// WrapKind tags kind and its cause with the operation that produced them.
func WrapKind(op string, kind, cause error) error {
	return fmt.Errorf("%s: %w: %w", op, kind, cause)
}

// classify maps upstream errors to a status code and a stable error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, game.ErrPlayerNotFound):
		return http.StatusNotFound, "not_found"

	case errors.Is(err, ErrBadRequest),
		errors.Is(err, game.ErrUnknownView),
		errors.Is(err, game.ErrUnknownTactic),
		errors.Is(err, photostore.ErrEmptyPhoto),
		errors.Is(err, photostore.ErrDecodePhoto):
		return http.StatusBadRequest, "bad_request"

	case errors.Is(err, photostore.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "too_large"

	case errors.Is(err, game.ErrInsufficientBudget),
		errors.Is(err, game.ErrSquadTooSmall),
		errors.Is(err, game.ErrNoTeam),
		errors.Is(err, game.ErrNoOpponent),
		errors.Is(err, game.ErrNoMatch):
		return http.StatusUnprocessableEntity, "validation_failed"

	case errors.Is(err, inflight.ErrInFlight), errors.Is(err, game.ErrMatchPending):
		return http.StatusConflict, "in_flight"

	case errors.Is(err, queue.ErrFull), errors.Is(err, inflight.ErrFull):
		return http.StatusTooManyRequests, "backpressure"

	case errors.Is(err, queue.ErrClosed), errors.Is(err, repository.ErrClosed):
		return http.StatusServiceUnavailable, "unavailable"
	}
	return http.StatusInternalServerError, "internal_error"
}

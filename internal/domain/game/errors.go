package game

import "errors"

// Sentinel errors returned by state transitions. Callers map validation
// errors to user-facing rejections; the state is never changed on error.
var (
	ErrNoTeam             = errors.New("no active team")
	ErrNoOpponent         = errors.New("no scheduled opponent")
	ErrNoMatch            = errors.New("no match to finish")
	ErrMatchPending       = errors.New("match already prepared")
	ErrInsufficientBudget = errors.New("insufficient budget")
	ErrSquadTooSmall      = errors.New("squad too small to sell")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrUnknownTactic      = errors.New("unknown tactic")
	ErrUnknownView        = errors.New("unknown view")
)

package matchday

import "errors"

const maxErrorBody = 4 << 10

var (
	// ErrBadStream is returned when the live stream cannot be decoded.
	ErrBadStream = errors.New("malformed event stream")

	// ErrNoAffordable is returned when no market player fits the budget.
	ErrNoAffordable = errors.New("no affordable player on the market")

	// ErrUsage is returned for missing or invalid command arguments.
	ErrUsage = errors.New("usage")

	// ErrNotQueued is returned by WaitLive when no simulation is pending.
	ErrNotQueued = errors.New("no match queued")

	// errStreamDone stops ReadEvents after the final event.
	errStreamDone = errors.New("stream done")
)

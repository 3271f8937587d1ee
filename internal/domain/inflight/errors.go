package inflight

import "errors"

// Sentinel errors for Acquire.
var (
	ErrInFlight = errors.New("request already in flight")
	ErrFull     = errors.New("too many requests in flight")
)

package model

import "time"

// JobKind names the asynchronous work a session can request.
type JobKind string

// Job kinds.
const (
	JobSimulateMatch JobKind = "simulate_match"
)

// Job is a unit of asynchronous work flowing through the queue.
type Job struct {
	ID        string
	SessionID string
	Kind      JobKind
	Enqueued  time.Time
}

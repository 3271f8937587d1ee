package service

import "errors"

var (
	// ErrEmptyTeamName is returned when a career is started without a club.
	ErrEmptyTeamName = errors.New("team name is required")

	// ErrNotStarted is returned when the service is used before Start.
	ErrNotStarted = errors.New("service not started")

	// ErrUnknownJob is returned by Process for job kinds it cannot run.
	ErrUnknownJob = errors.New("unknown job kind")
)

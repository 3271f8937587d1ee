package content

import "errors"

// Sentinel errors for content generation.
var (
	ErrStatus        = errors.New("content api returned an error status")
	ErrEmptyResponse = errors.New("content api returned no text")
	ErrMalformed     = errors.New("content response is not valid match json")
)

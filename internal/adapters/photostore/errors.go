package photostore

import "errors"

// Sentinel errors for photo handling.
var (
	ErrEmptyPhoto   = errors.New("photo is empty")
	ErrTooLarge     = errors.New("photo exceeds size limit")
	ErrDecodePhoto  = errors.New("photo could not be decoded")
	ErrStoreFailure = errors.New("photo store failure")
)

package generator

import "errors"

// ErrPresets reports a malformed embedded preset table.
var ErrPresets = errors.New("invalid preset table")

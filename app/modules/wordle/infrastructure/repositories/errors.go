package wordledb

import "errors"

// ErrNotFound is returned by Get when no score is stored for the key.
var ErrNotFound = errors.New("score not found")

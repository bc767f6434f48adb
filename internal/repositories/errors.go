package repositories

import "errors"

// ErrNotFound is wrapped by every repository when the requested record does not exist.
var ErrNotFound = errors.New("record not found")

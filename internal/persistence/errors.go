package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested booking does not exist.
	ErrNotFound = errors.New("persistence: not found")
)

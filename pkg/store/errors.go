package store

import "errors"

// Common errors returned by the store backends.
var (
	// ErrNotFound is returned when a session or goal ID is unknown.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidLimit is returned when a listing limit is <= 0.
	ErrInvalidLimit = errors.New("invalid limit: must be > 0")

	// ErrUnknownBackend is returned by Open for unrecognised backends.
	ErrUnknownBackend = errors.New("unknown storage backend")
)

package storage

import "errors"

// Storage errors for snapshot stores.
var (
	// ErrNoSnapshot is returned when no snapshot has been stored, or the
	// stored snapshot is empty. Consumers treat this as a recoverable
	// empty state, not a failure.
	ErrNoSnapshot = errors.New("no voyage snapshot available")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)

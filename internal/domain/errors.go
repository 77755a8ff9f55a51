package domain

import "errors"

// ErrInvalidInput indicates a caller-supplied value failed validation.
// Surfaced immediately, never retried.
var ErrInvalidInput = errors.New("invalid input")

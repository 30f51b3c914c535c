package repository

import "errors"

// Sentinel kinds for store errors. These allow errors.Is from callers.
var (
	ErrUnavailable = errors.New("results store unavailable")
	ErrClosed      = errors.New("results store closed")
	ErrBadRunner   = errors.New("runner bib must be a positive integer")
)

package roster

import "errors"

// Sentinel kinds for roster errors.
var (
	ErrBadRoster = errors.New("malformed roster")
)

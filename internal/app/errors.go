package app

import "errors"

// Sentinel kinds for recording errors. Both are user-correctable: the
// caller re-prompts or re-displays state.
var (
	// ErrRaceNotActive rejects recording outside a running race.
	ErrRaceNotActive = errors.New("race is not active")

	// ErrInvalidBib rejects non-numeric, non-blank input. Nothing is
	// written; blank input, by contrast, records a bib-0 placeholder.
	ErrInvalidBib = errors.New("invalid bib number")
)

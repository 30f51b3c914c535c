package raceclock

import "errors"

// Sentinel kinds for clock errors. These allow errors.Is from callers.
var (
	ErrAlreadyRunning    = errors.New("race clock already running")
	ErrNotRunning        = errors.New("race clock not running")
	ErrInvalidTransition = errors.New("race clock cannot restart after stop")
	ErrNotStarted        = errors.New("race clock not started")
)

// Package raceclock owns the race start instant and the run state.
//
// A clock moves NotStarted -> Running -> Stopped and never back;
// a new race gets a new clock.
package raceclock

import (
	"sync"
	"time"
)

// State is the clock's position in its lifecycle.
type State int

const (
	NotStarted State = iota
	Running
	Stopped
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Clock tracks race start and run state. Safe for concurrent use.
type Clock struct {
	mu        sync.Mutex
	state     State
	startedAt time.Time
	now       func() time.Time
}

// New creates a clock in the NotStarted state.
func New(opts ...Option) *Clock {
	c := &Clock{
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start records the start instant and moves the clock to Running.
// Exactly one start per clock.
func (c *Clock) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case Running:
		return ErrAlreadyRunning
	case Stopped:
		return ErrInvalidTransition
	}

	c.startedAt = c.now()
	c.state = Running
	return nil
}

// Stop moves the clock to Stopped. Calling it again is an error, not
// a no-op; callers are expected to check state first.
func (c *Clock) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Running {
		return ErrNotRunning
	}
	c.state = Stopped
	return nil
}

// State returns the current lifecycle state.
func (c *Clock) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// StartedAt returns the start instant. Fails with ErrNotStarted if
// the clock was never started.
func (c *Clock) StartedAt() (time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.startedAt.IsZero() {
		return time.Time{}, ErrNotStarted
	}
	return c.startedAt, nil
}

// ElapsedSince returns the duration between the start instant and the
// given capture instant, clamped at zero. Defined once the clock has
// started, including after Stop.
func (c *Clock) ElapsedSince(instant time.Time) (time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.startedAt.IsZero() {
		return 0, ErrNotStarted
	}
	d := instant.Sub(c.startedAt)
	if d < 0 {
		d = 0
	}
	return d, nil
}

// Now returns the clock's current instant using its time source.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now()
}

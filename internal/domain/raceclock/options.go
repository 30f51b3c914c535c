package raceclock

import "time"

// Option applies a configuration option to the Clock.
type Option func(*Clock)

// WithNow overrides the clock's time source. Intended for tests.
func WithNow(now func() time.Time) Option {
	return func(c *Clock) {
		if now != nil {
			c.now = now
		}
	}
}

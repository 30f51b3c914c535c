package app

import (
	"github.com/raceday/finishline/internal/adapters/chime"
	"github.com/raceday/finishline/internal/adapters/roster"
	"github.com/raceday/finishline/internal/domain/raceclock"
	"github.com/raceday/finishline/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithClock replaces the race clock. Intended for tests that inject a
// fake time source.
func WithClock(c *raceclock.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithDirectory replaces the runner directory.
func WithDirectory(d *roster.Directory) Option {
	return func(s *Service) {
		if d != nil {
			s.directory = d
		}
	}
}

// WithChime sets the finish confirmation chime.
func WithChime(c chime.Chime) Option {
	return func(s *Service) {
		if c != nil {
			s.bell = c
		}
	}
}

// WithTeamScorers sets how many finishers count toward a team total.
func WithTeamScorers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.scorers = n
		}
	}
}

// WithTeamDisplacers sets how many extra finishers break ties.
func WithTeamDisplacers(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.displacers = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

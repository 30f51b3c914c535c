package scoring

// config holds team scoring parameters.
type config struct {
	scorers    int
	displacers int
}

// Option applies a configuration option to ScoreTeams.
type Option func(*config)

// WithScorerCount sets how many finishers count toward a team's total.
func WithScorerCount(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.scorers = n
		}
	}
}

// WithDisplacerCount sets how many extra finishers are reported for
// tie-breaking.
func WithDisplacerCount(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.displacers = n
		}
	}
}

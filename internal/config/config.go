// Package config defines process configuration and its loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load(ctx) layers defaults, optional YAML file, and env vars.
// - External errors are wrapped via this package's sentinels.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// DataDir is where race database files live.
	DataDir string `koanf:"data_dir"`

	// RaceDB optionally names an existing database file to resume,
	// relative to DataDir. Empty means create a new one.
	RaceDB string `koanf:"race_db"`

	// RosterFile optionally names a roster CSV to import at startup,
	// relative to DataDir.
	RosterFile string `koanf:"roster_file"`

	// MetricsAddr enables the Prometheus exposition listener when
	// non-empty, e.g. ":9310". Off by default.
	MetricsAddr string `koanf:"metrics_addr"`

	// TeamScorers is how many finishers count toward a team total.
	TeamScorers int `koanf:"team_scorers"`

	// TeamDisplacers is how many extra finishers break ties.
	TeamDisplacers int `koanf:"team_displacers"`

	// Chime toggles the audible finish confirmation.
	Chime bool `koanf:"chime"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		DataDir:        "data",
		TeamScorers:    5,
		TeamDisplacers: 2,
		Chime:          true,
	}
}

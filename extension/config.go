package extension

import "time"

// Config holds the Cadence extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.cadence" or "cadence" keys).
type Config struct {
	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// ProcessInterval is how frequently due rules are processed in the
	// background (default: 1h). Zero falls back to the default; a negative
	// value disables the background worker entirely, leaving the host
	// application to drive processing explicitly.
	ProcessInterval time.Duration `json:"process_interval" mapstructure:"process_interval" yaml:"process_interval"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ProcessInterval: time.Hour,
	}
}

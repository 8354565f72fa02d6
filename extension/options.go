package extension

import (
	"time"

	cadence "github.com/xraph/cadence"
	"github.com/xraph/cadence/plugin"
	"github.com/xraph/cadence/store"
)

// Option configures the Cadence Forge extension.
type Option func(*Extension)

// WithStore sets the store for the cadence engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithCadenceOption passes a cadence.Option through to the underlying engine.
func WithCadenceOption(opt cadence.Option) Option {
	return func(e *Extension) {
		e.cadenceOpts = append(e.cadenceOpts, opt)
	}
}

// WithPlugin registers a cadence plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.cadenceOpts = append(e.cadenceOpts, cadence.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithProcessInterval sets how frequently due rules are processed in the
// background. A negative value disables the background worker.
func WithProcessInterval(d time.Duration) Option {
	return func(e *Extension) { e.config.ProcessInterval = d }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}

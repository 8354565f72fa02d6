// Package extension provides the Forge extension adapter for Cadence.
//
// It implements the forge.Extension interface to integrate Cadence
// into a Forge application with automatic dependency discovery,
// DI registration, and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.cadence" or
// "cadence" keys.
package extension

import (
	"context"
	"errors"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	cadence "github.com/xraph/cadence"
	"github.com/xraph/cadence/store"
	"github.com/xraph/cadence/store/memory"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "cadence"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Recurring invoice and quote scheduling engine"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts Cadence as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config      Config
	engine      *cadence.Engine
	store       store.Store
	cadenceOpts []cadence.Option
}

// New creates a new Cadence Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying Cadence instance.
// This is nil until Register is called.
func (e *Extension) Engine() *cadence.Engine { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the cadence engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	// Use memory store if no store was provided programmatically.
	if e.store == nil {
		e.store = memory.New()
	}

	// Build cadence options from resolved config.
	opts := e.buildCadenceOpts()

	eng := cadence.New(e.store, opts...)
	e.engine = eng

	return vessel.Provide(fapp.Container(), func() (*cadence.Engine, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("cadence: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.engine.Start(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("cadence: store not initialized")
	}
	return e.store.Ping(ctx)
}

// buildCadenceOpts constructs cadence.Option values from the resolved config.
func (e *Extension) buildCadenceOpts() []cadence.Option {
	opts := make([]cadence.Option, 0, len(e.cadenceOpts)+1)

	if e.config.ProcessInterval > 0 {
		opts = append(opts, cadence.WithProcessInterval(e.config.ProcessInterval))
	}

	// Append any pass-through cadence options.
	opts = append(opts, e.cadenceOpts...)

	return opts
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("cadence: configuration is required but not found in config files; " +
				"ensure 'extensions.cadence' or 'cadence' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = e.mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = e.mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("cadence: configuration loaded",
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("process_interval", e.config.ProcessInterval),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.cadence" first (namespaced pattern).
	if cm.IsSet("extensions.cadence") {
		if err := cm.Bind("extensions.cadence", &cfg); err == nil {
			e.Logger().Debug("cadence: loaded config from file",
				forge.F("key", "extensions.cadence"),
			)
			return cfg, true
		}
		e.Logger().Warn("cadence: failed to bind extensions.cadence config",
			forge.F("error", "bind failed"),
		)
	}

	// Try legacy "cadence" key.
	if cm.IsSet("cadence") {
		if err := cm.Bind("cadence", &cfg); err == nil {
			e.Logger().Debug("cadence: loaded config from file",
				forge.F("key", "cadence"),
			)
			return cfg, true
		}
		e.Logger().Warn("cadence: failed to bind cadence config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func (e *Extension) mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.ProcessInterval == 0 {
		cfg.ProcessInterval = defaults.ProcessInterval
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic bool flags fill gaps.
func (e *Extension) mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}

	// Duration fields: YAML takes precedence, programmatic fills gaps.
	if yamlConfig.ProcessInterval == 0 && programmaticConfig.ProcessInterval != 0 {
		yamlConfig.ProcessInterval = programmaticConfig.ProcessInterval
	}

	// Fill remaining zeros with defaults.
	return e.mergeWithDefaults(yamlConfig)
}

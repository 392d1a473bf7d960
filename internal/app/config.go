package app

import (
	"conductor/internal/config"
)

// Config holds the application configuration assembled from command line
// flags. Zero values mean "no override": the loaded file configuration (or
// its defaults) stays in effect.
type Config struct {
	// Debug enables debug-level logging.
	Debug bool

	// LogJSON emits log records as JSON objects instead of text lines.
	LogJSON bool

	// ConfigPath is the configuration directory. When empty, the per-user
	// default directory is used.
	ConfigPath string

	// CapabilitiesPath, when set, overrides where server descriptors are
	// loaded from. Unlike the file setting it is not anchored at the config
	// directory; it is used as given.
	CapabilitiesPath string

	// Transport, Host and Port override the MCP endpoint settings.
	Transport string
	Host      string
	Port      int

	// Watch forces capabilities file watching on.
	Watch bool

	// Version is stamped by the build and advertised over MCP.
	Version string

	// Conductor is the effective file configuration, populated during
	// bootstrap after overrides are applied.
	Conductor *config.Config
}

// applyOverrides folds the command line overrides into a loaded file
// configuration.
func (c *Config) applyOverrides(cfg config.Config) config.Config {
	if c.Transport != "" {
		cfg.Server.Transport = c.Transport
	}
	if c.Host != "" {
		cfg.Server.Host = c.Host
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}
	if c.Watch {
		cfg.Registry.Watch = true
	}
	return cfg
}

package app

import (
	"fmt"
	"os"

	"conductor/internal/config"
	"conductor/pkg/logging"
)

// Application bundles the configuration and wired services of one conductor
// instance.
type Application struct {
	config   *Config
	services *Services
}

// NewApplication performs the bootstrap sequence: initialize logging, load
// the file configuration, apply command line overrides, and wire all
// services. The returned application is ready to Run.
func NewApplication(cfg *Config) (*Application, error) {
	logLevel := logging.LevelInfo
	if cfg.Debug {
		logLevel = logging.LevelDebug
	}
	// Stdout belongs to the stdio transport; logs go to stderr.
	logging.Init(logLevel, cfg.LogJSON, os.Stderr)

	if cfg.ConfigPath == "" {
		cfg.ConfigPath = config.GetDefaultConfigPathOrPanic()
	}

	conductorCfg, err := config.LoadConfig(cfg.ConfigPath)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to load configuration from %s", cfg.ConfigPath)
		return nil, fmt.Errorf("failed to load configuration from %s: %w", cfg.ConfigPath, err)
	}
	conductorCfg = cfg.applyOverrides(conductorCfg)
	cfg.Conductor = &conductorCfg

	services, err := InitializeServices(cfg)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:   cfg,
		services: services,
	}, nil
}

// Services exposes the wired components, mainly for tests.
func (a *Application) Services() *Services {
	return a.services
}

package app

import (
	"context"
	"fmt"

	"conductor/internal/gateway"
	"conductor/internal/matcher"
	"conductor/internal/orchestrator"
	"conductor/internal/registry"
	"conductor/internal/server"
	"conductor/internal/telemetry"
	"conductor/pkg/logging"
)

// Services holds every wired component of a running conductor instance.
type Services struct {
	// Telemetry records activation outcomes.
	Telemetry *telemetry.Sink

	// Gateway is the boundary to the external gateway CLI.
	Gateway gateway.Gateway

	// Registry serves server capability descriptors.
	Registry *registry.Registry

	// Matcher ranks servers against task text.
	Matcher *matcher.Matcher

	// Orchestrator owns the activation ledger and drives lifecycle
	// transitions.
	Orchestrator *orchestrator.Orchestrator

	// Reaper periodically reclaims idle servers. Started by Run unless
	// disabled in configuration.
	Reaper *orchestrator.Reaper

	// Watcher reloads the registry on capabilities file changes. Nil when
	// watching is off.
	Watcher *registry.Watcher

	// Server is the MCP control surface.
	Server *server.Server
}

// InitializeServices wires all components from the effective configuration.
// Bottom-up: telemetry and gateway first, then the registry and matcher, the
// orchestrator on top of those, and finally the reaper, optional watcher and
// MCP server.
func InitializeServices(cfg *Config) (*Services, error) {
	conductorCfg := cfg.Conductor

	sink := telemetry.NewSink(conductorCfg.Telemetry.MaxEvents, conductorCfg.Telemetry.File)

	gw := gateway.NewCLI(conductorCfg.Gateway, nil)

	capsPath := cfg.CapabilitiesPath
	if capsPath == "" {
		capsPath = conductorCfg.CapabilitiesPath(cfg.ConfigPath)
	}
	reg, err := registry.Load(capsPath)
	if err != nil {
		if !registry.IsConfigError(err) {
			return nil, fmt.Errorf("failed to load capabilities from %s: %w", capsPath, err)
		}
		// A malformed file is not fatal: the registry keeps serving the
		// built-in defaults.
		logging.Warn("Services", "Capabilities file problem, serving defaults: %v", err)
	}

	m := matcher.New(reg, nil)

	orch := orchestrator.New(orchestrator.Config{
		Registry:      reg,
		Gateway:       gw,
		Telemetry:     sink,
		Matcher:       m,
		TopK:          conductorCfg.Matcher.TopK,
		MinConfidence: conductorCfg.Matcher.MinConfidence,
		IdleThreshold: conductorCfg.Reaper.IdleThreshold(),
	})

	reaper := orchestrator.NewReaper(orch, conductorCfg.Reaper.PollInterval(), conductorCfg.Reaper.IdleThreshold())

	var watcher *registry.Watcher
	if conductorCfg.Registry.Watch {
		watcher, err = registry.NewWatcher(reg, capsPath, func(reloadErr error) {
			if reloadErr == nil {
				m.Refresh(context.Background())
			}
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create capabilities watcher: %w", err)
		}
	}

	srv := server.New(server.Config{
		Server:    conductorCfg.Server,
		Version:   cfg.Version,
		Orch:      orch,
		Registry:  reg,
		Telemetry: sink,
	})

	logging.Info("Services", "Initialized with %d known servers, gateway %v",
		reg.Len(), conductorCfg.Gateway.Command)

	return &Services{
		Telemetry:    sink,
		Gateway:      gw,
		Registry:     reg,
		Matcher:      m,
		Orchestrator: orch,
		Reaper:       reaper,
		Watcher:      watcher,
		Server:       srv,
	}, nil
}

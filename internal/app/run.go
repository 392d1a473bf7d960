package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"conductor/pkg/logging"
)

// Run brings conductor up and blocks until shutdown. The sequence is:
// reconcile with the gateway, start the capabilities watcher and idle reaper,
// start the MCP transport, then wait for SIGINT, SIGTERM or context
// cancellation and unwind in reverse order.
//
// The startup reconcile may fail when the gateway CLI is unavailable; that is
// logged but not fatal, since the gateway may come up later and every
// mutating operation reports its own gateway trouble.
func (a *Application) Run(ctx context.Context) error {
	s := a.services

	if report, err := s.Orchestrator.Sync(ctx); err != nil {
		logging.Warn("App", "Startup sync with the gateway failed: %v", err)
	} else {
		logging.Info("App", "Startup sync: %d servers already active", len(report.Active))
	}

	if s.Watcher != nil {
		if err := s.Watcher.Start(ctx); err != nil {
			logging.Error("App", err, "Failed to start capabilities watcher")
			return err
		}
	}

	if a.config.Conductor.Reaper.Disabled {
		logging.Info("App", "Idle reaper disabled by configuration")
	} else {
		s.Reaper.Start(ctx)
	}

	if err := s.Server.Start(ctx); err != nil {
		return err
	}
	logging.Info("App", "conductor %s ready on %s", a.config.Version, s.Server.Endpoint())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		logging.Info("App", "Context cancelled, shutting down")
	case sig := <-sigChan:
		logging.Info("App", "Received %s, shutting down", sig)
	}

	if s.Watcher != nil {
		s.Watcher.Stop()
	}
	s.Reaper.Stop()
	if err := s.Server.Stop(context.Background()); err != nil {
		logging.Error("App", err, "Error stopping MCP server")
	}

	return nil
}

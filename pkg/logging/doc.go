// Package logging provides the structured logging facade used by every
// conductor subsystem.
//
// It wraps log/slog with a subsystem-first API so call sites stay short
// and log records stay filterable:
//
//	logging.Info("Orchestrator", "Activated %s (%d tools)", name, count)
//	logging.Error("Gateway", err, "enable failed for %s", name)
//
// Init must be called once at startup (app bootstrap does this) to select the
// level, the output writer, and text versus JSON encoding. Before Init the
// package drops records rather than panicking, so library code may log
// unconditionally.
package logging

// Package app bootstraps and runs conductor. It follows a two-phase
// pattern: NewApplication loads configuration and wires every component
// (telemetry, gateway, registry, matcher, orchestrator, reaper, MCP server),
// then Run reconciles state with the gateway, starts the background pieces
// and the configured transport, and blocks until shutdown.
//
// Logs always go to stderr: with the stdio transport, stdout carries the MCP
// protocol stream and must stay clean.
package app

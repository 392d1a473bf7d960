// Package server exposes the orchestrator as an MCP server. Assistants talk
// to conductor through the tools registered here: suggesting, activating and
// deactivating backend servers, inspecting status and usage, and browsing the
// capability catalog.
//
// Handlers are deliberately thin. They parse arguments, call into the
// orchestrator or registry, and render the result as JSON. Domain failures
// (unknown servers, failed activations, gateway trouble) come back as MCP
// tool errors, never as protocol errors, so assistants can read and react to
// them.
//
// Three transports are supported: stdio for direct assistant integration,
// SSE and streamable-http for networked setups. The transport is chosen at
// start time from configuration.
package server

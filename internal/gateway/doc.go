// Package gateway provides the boundary between the orchestrator and the
// external process that actually hosts backend MCP servers.
//
// The orchestrator never talks MCP to backends directly. It instructs a
// gateway (by default the docker mcp CLI) to enable or disable servers and
// to report which servers are currently running and which tools they expose.
// All calls are context-bound and carry explicit timeouts so a wedged
// gateway binary cannot stall the control plane.
//
// The CommandRunner seam isolates process execution so tests can script
// gateway behavior without a real CLI installation.
package gateway

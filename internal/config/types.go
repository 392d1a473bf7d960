package config

import "time"

const (
	// TransportStdio is the standard I/O transport.
	TransportStdio = "stdio"
	// TransportSSE is the Server-Sent Events transport.
	TransportSSE = "sse"
	// TransportStreamableHTTP is the streamable HTTP transport.
	TransportStreamableHTTP = "streamable-http"
)

// Config is the root configuration for conductor, loaded from config.yaml.
type Config struct {
	Server    ServerConfig    `yaml:"server,omitempty"`
	Gateway   GatewayConfig   `yaml:"gateway,omitempty"`
	Registry  RegistryConfig  `yaml:"registry,omitempty"`
	Matcher   MatcherConfig   `yaml:"matcher,omitempty"`
	Reaper    ReaperConfig    `yaml:"reaper,omitempty"`
	Telemetry TelemetryConfig `yaml:"telemetry,omitempty"`
}

// ServerConfig configures the MCP endpoint conductor exposes.
type ServerConfig struct {
	Transport string `yaml:"transport,omitempty"` // Transport to use: stdio, sse, or streamable-http (default: stdio)
	Host      string `yaml:"host,omitempty"`      // Host to bind to for HTTP transports (default: localhost)
	Port      int    `yaml:"port,omitempty"`      // Port for HTTP transports (default: 8080)
}

// GatewayConfig configures the CLI gateway used to enable, disable and
// inspect backend servers.
type GatewayConfig struct {
	Command                []string `yaml:"command,omitempty"`                // Command prefix invoked for gateway operations (default: ["docker", "mcp"])
	TimeoutSeconds         int      `yaml:"timeoutSeconds,omitempty"`         // Per-invocation timeout for enable/disable (default: 60)
	ToolListTimeoutSeconds int      `yaml:"toolListTimeoutSeconds,omitempty"` // Timeout for tool listing calls (default: 30)
}

// RegistryConfig configures where server capability descriptors come from.
type RegistryConfig struct {
	CapabilitiesPath string `yaml:"capabilitiesPath,omitempty"` // Path to the capabilities YAML file (default: capabilities.yaml next to config)
	Watch            bool   `yaml:"watch,omitempty"`            // Reload the registry when the capabilities file changes (default: false)
}

// MatcherConfig tunes task-to-server suggestion behavior.
type MatcherConfig struct {
	TopK          int     `yaml:"topK,omitempty"`          // Maximum number of suggestions returned (default: 5)
	MinConfidence float64 `yaml:"minConfidence,omitempty"` // Suggestions below this confidence are dropped (default: 0.3)
}

// ReaperConfig tunes idle server reclamation.
type ReaperConfig struct {
	Disabled             bool `yaml:"disabled,omitempty"`             // Disable the idle reaper entirely (default: false)
	PollIntervalSeconds  int  `yaml:"pollIntervalSeconds,omitempty"`  // How often idle servers are checked (default: 60)
	IdleThresholdSeconds int  `yaml:"idleThresholdSeconds,omitempty"` // Inactivity after which a server is reclaimed (default: 600)
}

// TelemetryConfig tunes activation event recording.
type TelemetryConfig struct {
	MaxEvents int    `yaml:"maxEvents,omitempty"` // In-memory event history cap (default: 1000)
	File      string `yaml:"file,omitempty"`      // Optional JSONL file events are appended to (default: none)
}

// Timeout returns the enable/disable invocation bound.
func (g GatewayConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// ToolListTimeout returns the tool listing invocation bound.
func (g GatewayConfig) ToolListTimeout() time.Duration {
	return time.Duration(g.ToolListTimeoutSeconds) * time.Second
}

// PollInterval returns how often the reaper scans for idle servers.
func (r ReaperConfig) PollInterval() time.Duration {
	return time.Duration(r.PollIntervalSeconds) * time.Second
}

// IdleThreshold returns the inactivity span after which a server is
// considered idle.
func (r ReaperConfig) IdleThreshold() time.Duration {
	return time.Duration(r.IdleThresholdSeconds) * time.Second
}

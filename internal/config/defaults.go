package config

const (
	// DefaultCapabilitiesFile is the capabilities file name looked up next
	// to config.yaml when no explicit path is configured.
	DefaultCapabilitiesFile = "capabilities.yaml"

	// DefaultGatewayTimeoutSeconds bounds enable/disable invocations.
	DefaultGatewayTimeoutSeconds = 60

	// DefaultToolListTimeoutSeconds bounds tool listing invocations.
	DefaultToolListTimeoutSeconds = 30

	// DefaultReaperPollSeconds is how often the reaper scans for idle servers.
	DefaultReaperPollSeconds = 60

	// DefaultIdleThresholdSeconds is the inactivity span after which an
	// active server is reclaimed.
	DefaultIdleThresholdSeconds = 600

	// DefaultTelemetryMaxEvents caps the in-memory event history.
	DefaultTelemetryMaxEvents = 1000

	// DefaultMatcherTopK caps how many suggestions a task match returns.
	DefaultMatcherTopK = 5

	// DefaultMinConfidence drops weak suggestions at the control surface.
	DefaultMinConfidence = 0.3
)

// GetDefaultConfig returns the configuration used when no config.yaml exists.
func GetDefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Transport: TransportStdio,
			Host:      "localhost",
			Port:      8080,
		},
		Gateway: GatewayConfig{
			Command:                []string{"docker", "mcp"},
			TimeoutSeconds:         DefaultGatewayTimeoutSeconds,
			ToolListTimeoutSeconds: DefaultToolListTimeoutSeconds,
		},
		Matcher: MatcherConfig{
			TopK:          DefaultMatcherTopK,
			MinConfidence: DefaultMinConfidence,
		},
		Reaper: ReaperConfig{
			PollIntervalSeconds:  DefaultReaperPollSeconds,
			IdleThresholdSeconds: DefaultIdleThresholdSeconds,
		},
		Telemetry: TelemetryConfig{
			MaxEvents: DefaultTelemetryMaxEvents,
		},
	}
}

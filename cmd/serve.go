package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"conductor/internal/app"
)

// serveConfigPath specifies a custom configuration directory. When empty, the
// per-user default directory is used.
var serveConfigPath string

// serveCapabilitiesPath overrides where server descriptors are loaded from.
var serveCapabilitiesPath string

// serveTransport, serveHost and servePort override the MCP endpoint settings
// from the configuration file.
var (
	serveTransport string
	serveHost      string
	servePort      int
)

// serveDebug enables verbose logging across the application.
var serveDebug bool

// serveLogJSON switches log output from text lines to JSON objects.
var serveLogJSON bool

// serveWatch reloads the capability registry when the file changes on disk.
var serveWatch bool

// serveCmd defines the serve command, the main entry point of conductor. It
// starts the MCP control surface and blocks until shutdown.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the conductor MCP server",
	Long: `Starts the conductor MCP server and manages backend server activation
through the gateway CLI.

On startup conductor reconciles its ledger with the servers already enabled
at the gateway, then serves its control tools (suggest_servers,
activate_servers, get_status, ...) over the chosen transport. An idle reaper
runs in the background and deactivates servers that have not been used for a
while.

Transports:
  stdio             JSON-RPC over stdin/stdout (default, for editor integration)
  sse               HTTP with Server-Sent Events
  streamable-http   Streamable HTTP

Configuration:
  conductor loads config.yaml from the configuration directory
  (default: ~/.config/conductor) and server descriptors from
  capabilities.yaml next to it. Command line flags override the
  file settings.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// runServe wires the application from flags and file configuration and runs
// it until a termination signal arrives.
func runServe(cmd *cobra.Command, args []string) error {
	cfg := &app.Config{
		Debug:            serveDebug,
		LogJSON:          serveLogJSON,
		ConfigPath:       serveConfigPath,
		CapabilitiesPath: serveCapabilitiesPath,
		Transport:        serveTransport,
		Host:             serveHost,
		Port:             servePort,
		Watch:            serveWatch,
		Version:          rootCmd.Version,
	}

	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return application.Run(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Configuration directory (default: ~/.config/conductor)")
	serveCmd.Flags().StringVar(&serveCapabilitiesPath, "capabilities", "", "Capabilities file (default: capabilities.yaml in the config directory)")
	serveCmd.Flags().StringVar(&serveTransport, "transport", "", "MCP transport: stdio, sse, or streamable-http")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind for HTTP transports")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port for HTTP transports")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
	serveCmd.Flags().BoolVar(&serveLogJSON, "log-json", false, "Emit logs as JSON objects")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "Reload capabilities when the file changes")
}

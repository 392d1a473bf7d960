package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the base command for the conductor application.
var rootCmd = &cobra.Command{
	Use:   "conductor",
	Short: "Activate MCP servers on demand instead of all at once",
	Long: `conductor sits between an AI assistant and a gateway full of MCP servers.
Instead of enabling every backend up front and flooding the assistant's
context with hundreds of tool definitions, conductor exposes a handful of
control tools: the assistant describes its task, conductor suggests and
activates the few servers that match, and idle servers are reclaimed
automatically.`,
	// SilenceUsage keeps handled errors from also printing the usage text.
	SilenceUsage: true,
}

// SetVersion sets the version advertised by the root command. Called from
// main with the build-time version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the application version.
func GetVersion() string {
	return rootCmd.Version
}

// Execute runs the root command. It is called once from main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "conductor version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
}

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/use/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "vango-use",
		Short: "Reactive subscription hooks for Vango components",
		Long: `vango-use runs the hook runtime against a simulated browser.

Use the demo commands to watch individual hooks react to platform
changes, or serve the devtools endpoints for a live runtime.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to vango-use.json or vango-use.toml")

	rootCmd.AddCommand(
		demoCmd(&configPath),
		serveCmd(&configPath),
		versionCmd(),
	)
	return rootCmd
}

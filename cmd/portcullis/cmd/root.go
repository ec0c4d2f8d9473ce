package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "portcullis",
	Short: "Portcullis authentication screen",
	Long: `Portcullis serves a sign-in / sign-up page backed by a managed identity
provider, with Google and GitHub sign-in.

Available commands:
  serve     Start the HTTP server
  config    Validate the environment and show the resolved configuration
  version   Print the version

Configuration is read from a .env file (if present) and the environment.`,
	SilenceUsage: true,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

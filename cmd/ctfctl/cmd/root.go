// Package cmd implements the ctfctl command-line entrypoint: the
// control plane's HTTP server plus the one-shot operator tasks
// (scenario catalog setup, team membership reconciliation) that the
// original exposed as internal HTTP routes or standalone scripts.
package cmd

import (
	"github.com/spf13/cobra"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "ctfctl",
	Short: "Control plane for the prompt-injection CTF competition",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "path to a .env file to load before reading the environment")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(reconcileTeamsCmd)
}

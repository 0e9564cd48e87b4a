// Package cli implements the triagectl command tree.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var serverURL string

var rootCmd = &cobra.Command{
	Use:   "triagectl",
	Short: "VetLink Triage CLI",
	Long: `triagectl is the command-line interface for the VetLink triage service.

Register cases, inspect the waiting queue, assign vets, and manage
operational alerts from your terminal.`,
	Version:       "0.1.0",
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	defaultServer := os.Getenv("TRIAGE_SERVER")
	if defaultServer == "" {
		defaultServer = "http://localhost:8090"
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer, "triage service base URL")
	rootCmd.PersistentFlags().String("output", "table", "output format: table, json")

	rootCmd.AddCommand(casesCmd)
	rootCmd.AddCommand(queueCmd)
	rootCmd.AddCommand(alertsCmd)
}

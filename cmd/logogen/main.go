// Command logogen runs the logo pipeline once from the command line.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "logogen",
	Short: "logogen - generate vector logo marks from a business brief",
	Long: `logogen runs the quality-gated logo pipeline against the configured
completion service and writes the best SVG it finds.

Commands:
  generate    Generate a logo for a business
  validate    Check an SVG file against the structural rules

Configuration is read from the environment (and .env), using the same
LLM_* and pipeline keys as the API server.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

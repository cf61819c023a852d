package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/renatodap/brandkit-generator-sub000/internal/logo"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file.svg>",
	Short: "Check an SVG file against the structural rules",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		markup, ok := logo.ExtractSVG(string(raw))
		if !ok {
			return fmt.Errorf("%s: %w", args[0], logo.ErrNoMarkup)
		}
		if err := logo.Validate(markup); err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d shapes)\n", args[0], logo.CountShapes(markup))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

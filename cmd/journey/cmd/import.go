package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load an exported journey and print its layout",
	Long: `Load a journey in the JSON exchange format, validate it and print its
layout. Edges without a linkMethod are treated as inferred. A malformed
file is rejected as a whole.

Examples:
  journey import journey.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open journey: %w", err)
		}
		defer f.Close()

		snap, err := jny.Import(cmd.Context(), f)
		if err != nil {
			return err
		}
		printLayout(cmd, snap)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var graphOutput string

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the journey graph as JSON",
	Long: `Build the journey from the collections and write it in the JSON
exchange format. The output can be loaded again with "journey import".

Examples:
  journey graph --db journey.db
  journey graph -c snapshot.json -o journey.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := load(cmd.Context())
		if err != nil {
			return err
		}
		warn(cmd, snap)

		out := cmd.OutOrStdout()
		if graphOutput != "" {
			f, err := os.Create(graphOutput)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer f.Close()
			out = f
		}
		return jny.Export(out)
	},
}

func init() {
	graphCmd.Flags().StringVarP(&graphOutput, "output", "o", "", "write to this file instead of stdout")
	rootCmd.AddCommand(graphCmd)
}

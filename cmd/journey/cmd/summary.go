package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dan-solli/journeygraph/pkg/insight"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize effort, hotspots, failures and next actions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := load(cmd.Context())
		if err != nil {
			return err
		}
		warn(cmd, snap)

		out := cmd.OutOrStdout()
		s := snap.Summary
		fmt.Fprintf(out, "effort      %.0f min\n", s.TotalEffort)
		fmt.Fprintf(out, "cost        $%.2f\n", s.TotalCost)
		fmt.Fprintf(out, "experiments %d\n", s.ExperimentCount)

		if len(s.Hotspots) > 0 {
			fmt.Fprintln(out, "\nhotspots")
			for _, n := range s.Hotspots {
				fmt.Fprintf(out, "  %.4f  %s  %s\n", insight.Efficiency(n), n.ID, n.Title)
			}
		}
		if len(s.FailurePaths) > 0 {
			fmt.Fprintln(out, "\nfailures")
			for _, n := range s.FailurePaths {
				fmt.Fprintf(out, "  %4.0f min  %s  %s\n", n.EffortMinutes, n.ID, n.WhyStopped)
			}
		}

		fmt.Fprintln(out, "\nnext")
		for _, r := range s.Reflections {
			fmt.Fprintf(out, "  - %s\n", r)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

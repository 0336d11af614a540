package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dan-solli/journeygraph/pkg/journey"
)

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Print the column/row layout of the visible journey",
	Long: `Lay out the first visible nodes of the journey in columns by depth
and print each column with node positions, then the visible edges.
Inferred edges are marked with a dashed arrow.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := load(cmd.Context())
		if err != nil {
			return err
		}
		warn(cmd, snap)
		printLayout(cmd, snap)
		return nil
	},
}

func printLayout(cmd *cobra.Command, snap *journey.Snapshot) {
	out := cmd.OutOrStdout()
	l := snap.Layout

	fmt.Fprintf(out, "canvas %dx%d, %d of %d nodes visible\n", l.Width, l.Height, len(l.VisibleNodes), len(snap.Graph.Nodes))
	for depth, column := range l.Columns {
		fmt.Fprintf(out, "depth %d\n", depth)
		for _, id := range column {
			p := l.Positions[id]
			n := snap.Graph.Node(id)
			fmt.Fprintf(out, "  (%4d,%4d) %-10s %-10s %s  %s\n", p.X, p.Y, n.Kind, n.Status, id, n.Title)
		}
	}
	for _, e := range l.VisibleEdges {
		arrow := "-->"
		if e.Dashed() {
			arrow = "- >"
		}
		fmt.Fprintf(out, "%s %s %s  [%s]\n", e.From, arrow, e.To, e.Relation)
	}
}

func init() {
	rootCmd.AddCommand(layoutCmd)
}

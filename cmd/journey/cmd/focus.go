package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dan-solli/journeygraph/pkg/focus"
)

var focusEdge string

var focusCmd = &cobra.Command{
	Use:   "focus [node-id]",
	Short: "Show the part of the journey connected to a node or edge",
	Long: `Focus a node, or an edge with --edge, and print every visible node
and edge connected to it. Edge direction is ignored.

Examples:
  journey focus run:abc123
  journey focus --edge chat:s1,run:abc123`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := focusTarget(args)
		if err != nil {
			return err
		}

		snap, err := load(cmd.Context())
		if err != nil {
			return err
		}
		warn(cmd, snap)

		h, err := jny.Click(target)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		shown := h.Snapshot
		for _, id := range h.NodeIDs(shown.Layout.VisibleNodes) {
			fmt.Fprintf(out, "%s  %s\n", id, shown.Graph.Node(id).Title)
		}
		for _, e := range shown.Layout.VisibleEdges {
			if h.EdgeActive(e) {
				fmt.Fprintf(out, "%s -> %s  [%s, %s]\n", e.From, e.To, e.Relation, e.LinkMethod)
			}
		}
		return nil
	},
}

func focusTarget(args []string) (focus.Target, error) {
	if focusEdge != "" {
		if len(args) > 0 {
			return focus.Target{}, fmt.Errorf("give either a node id or --edge, not both")
		}
		from, to, ok := strings.Cut(focusEdge, ",")
		from, to = strings.TrimSpace(from), strings.TrimSpace(to)
		if !ok || from == "" || to == "" {
			return focus.Target{}, fmt.Errorf("invalid --edge %q (expected from,to)", focusEdge)
		}
		return focus.EdgeTarget(from, to), nil
	}
	if len(args) == 0 {
		return focus.Target{}, fmt.Errorf("a node id or --edge is required")
	}
	return focus.NodeTarget(args[0]), nil
}

func init() {
	focusCmd.Flags().StringVar(&focusEdge, "edge", "", "focus the edge from,to instead of a node")
	rootCmd.AddCommand(focusCmd)
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dan-solli/journeygraph/pkg/graph"
)

var eventsActor string

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Print the journey timeline",
	Long: `Print journey events in chronological order.

Examples:
  journey events
  journey events --actor human`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		actor := graph.Actor(eventsActor)
		switch actor {
		case "", graph.ActorHuman, graph.ActorAgent, graph.ActorSystem:
		default:
			return fmt.Errorf("invalid actor: %s (expected human, agent or system)", eventsActor)
		}

		snap, err := load(cmd.Context())
		if err != nil {
			return err
		}
		warn(cmd, snap)

		events := snap.Graph.EventsByActor(actor)
		if len(events) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No events")
			return nil
		}
		for _, ev := range events {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-6s  %-15s  %s  %s\n",
				ev.Timestamp.UTC().Format("2006-01-02 15:04"), ev.Actor, ev.Kind, ev.NodeID, ev.Note)
		}
		return nil
	},
}

func init() {
	eventsCmd.Flags().StringVar(&eventsActor, "actor", "", "only events by human, agent or system")
	rootCmd.AddCommand(eventsCmd)
}

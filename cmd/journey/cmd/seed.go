package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dan-solli/journeygraph/pkg/source"
)

var seedCmd = &cobra.Command{
	Use:   "seed <snapshot>",
	Short: "Copy a collections snapshot into the database",
	Long: `Write every session, message, run and chart of a JSON collections
snapshot into the SQLite database given by --db. Existing sessions, runs
and charts with the same id are replaced; messages are appended.

Examples:
  journey seed snapshot.json --db journey.db`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		snapshot, err := source.LoadCollections(args[0])
		if err != nil {
			return err
		}
		db, err := source.NewSQLiteSource(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		for _, s := range snapshot.ChatSessions {
			if err := db.PutSession(ctx, s); err != nil {
				return err
			}
			for _, m := range snapshot.History[s.ID] {
				if err := db.PutMessage(ctx, s.ID, m); err != nil {
					return err
				}
			}
		}
		for _, r := range snapshot.RunList {
			if err := db.PutRun(ctx, r); err != nil {
				return err
			}
		}
		for _, c := range snapshot.ChartList {
			if err := db.PutChart(ctx, c); err != nil {
				return err
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d sessions, %d runs, %d charts into %s\n",
			len(snapshot.ChatSessions), len(snapshot.RunList), len(snapshot.ChartList), dbPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dan-solli/journeygraph/pkg/config"
	"github.com/dan-solli/journeygraph/pkg/journey"
	"github.com/dan-solli/journeygraph/pkg/source"
	"github.com/dan-solli/journeygraph/pkg/trace"
)

var (
	dbPath          string
	collectionsPath string
	currentSession  string
	logLevel        string
	traceFile       string

	jny      *journey.Journey
	exporter *trace.FileExporter
)

var rootCmd = &cobra.Command{
	Use:   "journey",
	Short: "Build and inspect the research journey graph",
	Long: `journey turns chat sessions, experiment runs and charts into one
provenance graph, lays it out and answers focus and summary queries.

Collections are read from a SQLite database (--db) or from a JSON
snapshot (--collections).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		level, err := config.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

		jny, err = journey.New(journey.Config{})
		if err != nil {
			return err
		}
		jny.WithLogger(logger)

		if traceFile != "" {
			exporter, err = trace.NewFileExporter(traceFile)
			if err != nil {
				return err
			}
			jny.WithExporter(exporter)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if exporter != nil {
			err := exporter.Close()
			exporter = nil
			return err
		}
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", config.DBPath(), "path to the SQLite database")
	rootCmd.PersistentFlags().StringVarP(&collectionsPath, "collections", "c", config.CollectionsPath(), "path to a collections snapshot (overrides --db)")
	rootCmd.PersistentFlags().StringVarP(&currentSession, "current-session", "s", "", "id of the chat session open in the dashboard")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.LogLevel(), "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&traceFile, "trace-file", "", "append operation traces to this JSONL file")
}

// load reads the collections and rebuilds the journey.
func load(ctx context.Context) (*journey.Snapshot, error) {
	src, closeSource, err := source.Open(dbPath, collectionsPath)
	if err != nil {
		return nil, err
	}
	defer closeSource()

	return jny.Load(ctx, src, currentSession, nil)
}

// warn prints a non-fatal snapshot warning to stderr.
func warn(cmd *cobra.Command, snap *journey.Snapshot) {
	if snap.Warning != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", snap.Warning)
	}
}

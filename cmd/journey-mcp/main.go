package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dan-solli/journeygraph/pkg/config"
	"github.com/dan-solli/journeygraph/pkg/journey"
	"github.com/dan-solli/journeygraph/pkg/mcptools"
	"github.com/dan-solli/journeygraph/pkg/metrics"
	"github.com/dan-solli/journeygraph/pkg/source"
	"github.com/dan-solli/journeygraph/pkg/trace"
)

func main() {
	dbFlag := flag.String("db", config.DBPath(), "path to the SQLite database")
	collectionsFlag := flag.String("collections", config.CollectionsPath(), "path to a collections snapshot (overrides --db)")
	sessionFlag := flag.String("current-session", "", "id of the chat session open in the dashboard")
	levelFlag := flag.String("log-level", config.LogLevel(), "log level: debug, info, warn, error")
	traceFlag := flag.String("trace-file", "", "append operation traces to this JSONL file")
	metricsFlag := flag.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9464")
	flag.Parse()

	level, err := config.ParseLevel(*levelFlag)
	if err != nil {
		log.Fatalf("journey-mcp: %v", err)
	}
	// stdout carries the MCP protocol.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	src, closeSource, err := source.Open(*dbFlag, *collectionsFlag)
	if err != nil {
		log.Fatalf("journey-mcp: %v", err)
	}
	defer closeSource()

	j, err := journey.New(journey.Config{})
	if err != nil {
		log.Fatalf("journey-mcp: %v", err)
	}
	j.WithLogger(logger)

	if *traceFlag != "" {
		exporter, err := trace.NewFileExporter(*traceFlag)
		if err != nil {
			log.Fatalf("journey-mcp: %v", err)
		}
		defer exporter.Close()
		j.WithExporter(exporter)
	}

	if *metricsFlag != "" {
		collector := metrics.NewCollector()
		j.WithMetrics(collector)
		go serveMetrics(*metricsFlag, collector, logger)
	}

	mcpServer := server.NewMCPServer(
		"journey-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	mcptools.RegisterTools(mcpServer, &mcptools.Backend{
		Journey:          j,
		Source:           src,
		CurrentSessionID: *sessionFlag,
	})

	if err := server.ServeStdio(mcpServer); err != nil {
		log.Fatalf("journey-mcp: %v", err)
	}
}

func serveMetrics(addr string, collector *metrics.MetricsCollector, logger *slog.Logger) {
	router := chi.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(collector.Registry(), promhttp.HandlerOpts{}))
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server stopped", "error", err)
	}
}

// Package journey builds, lays out and queries the research journey graph
// from chat sessions, runs and charts.
package journey

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dan-solli/journeygraph/pkg/focus"
	"github.com/dan-solli/journeygraph/pkg/graph"
	"github.com/dan-solli/journeygraph/pkg/insight"
	"github.com/dan-solli/journeygraph/pkg/layout"
	"github.com/dan-solli/journeygraph/pkg/metrics"
	"github.com/dan-solli/journeygraph/pkg/provenance"
	"github.com/dan-solli/journeygraph/pkg/source"
	"github.com/dan-solli/journeygraph/pkg/synth"
	"github.com/dan-solli/journeygraph/pkg/trace"
)

// Operation names used in metrics and traces.
const (
	OpRebuild = "rebuild"
	OpImport  = "import"
)

// Config holds configuration for a Journey.
type Config struct {
	// Layout grid (default: layout.DefaultOptions())
	Layout layout.Options

	// Message events kept per session (default: 40)
	MessageEventLimit int

	// Event note length in runes (default: 180)
	NoteLimit int

	// Parallel history fetches in Load (default: 4)
	HistoryConcurrency int

	// Provenance linker for charts (default: provenance.TextLinker)
	Linker provenance.Linker

	// Clock used for open-ended run effort (default: time.Now)
	Now func() time.Time
}

// Snapshot is one fully derived journey.
type Snapshot struct {
	Graph   *graph.Graph
	Depths  map[string]int
	Layout  *layout.Layout
	Summary insight.Summary
	Trace   *OperationTrace
	// Warning is a non-fatal condition, e.g. histories that failed to load.
	Warning string
}

// Journey is the main entry point. It owns the current snapshot and the
// focus selection; everything else is recomputed from inputs.
type Journey struct {
	config   Config
	logger   *slog.Logger
	metrics  metrics.Collector
	exporter trace.Exporter

	mu       sync.Mutex
	snapshot *Snapshot
	focus    focus.State
}

// New creates a Journey, applying defaults and validating the layout grid.
func New(cfg Config) (*Journey, error) {
	if cfg.Layout == (layout.Options{}) {
		cfg.Layout = layout.DefaultOptions()
	}
	layout.ApplyDefaults(&cfg.Layout)
	if err := cfg.Layout.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout config: %w", err)
	}
	if cfg.MessageEventLimit <= 0 {
		cfg.MessageEventLimit = synth.DefaultMessageEventLimit
	}
	if cfg.NoteLimit <= 0 {
		cfg.NoteLimit = synth.DefaultNoteLimit
	}
	if cfg.HistoryConcurrency <= 0 {
		cfg.HistoryConcurrency = source.DefaultHistoryConcurrency
	}
	if cfg.Linker == nil {
		cfg.Linker = provenance.NewTextLinker()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Journey{
		config:   cfg,
		logger:   slog.New(slog.DiscardHandler),
		metrics:  metrics.NewNoopCollector(),
		exporter: trace.NewNoopExporter(),
	}, nil
}

// WithLogger sets the logger and logs the active configuration.
// Returns j for chaining.
func (j *Journey) WithLogger(logger *slog.Logger) *Journey {
	if logger == nil {
		return j
	}
	j.logger = logger
	j.logger.Info("journey configured",
		"max_visible_nodes", j.config.Layout.MaxNodes,
		"message_event_limit", j.config.MessageEventLimit,
		"note_limit", j.config.NoteLimit,
		"history_concurrency", j.config.HistoryConcurrency,
	)
	return j
}

// WithMetrics sets the metrics collector. Returns j for chaining.
func (j *Journey) WithMetrics(c metrics.Collector) *Journey {
	if c != nil {
		j.metrics = c
	}
	return j
}

// WithExporter sets the trace exporter. Returns j for chaining.
func (j *Journey) WithExporter(e trace.Exporter) *Journey {
	if e != nil {
		j.exporter = e
	}
	return j
}

// Load fetches all collections from src, loads missing message histories
// best-effort, and rebuilds. loaded holds histories the caller already has,
// typically the open session's, and is never refetched.
func (j *Journey) Load(ctx context.Context, src source.Source, currentSessionID string, loaded map[string][]source.Message) (*Snapshot, error) {
	tr := newTrace(uuid.New().String())
	start := time.Now()

	fetch := newSpanTimer("fetch", tr)
	in, history, err := j.fetch(ctx, src, currentSessionID, loaded)
	dur := fetch.finish(err, map[string]int64{
		"sessions":        int64(len(in.Sessions)),
		"runs":            int64(len(in.Runs)),
		"charts":          int64(len(in.Charts)),
		"failedHistories": int64(history.Failed),
	})
	j.metrics.RecordStage(ctx, OpRebuild, "fetch", dur)
	if err != nil {
		return nil, j.fail(ctx, OpRebuild, tr, start, err)
	}

	warning := history.Warning()
	if warning != "" {
		j.logger.Warn("message history incomplete", "failed_sessions", history.Failed)
	}
	return j.rebuild(ctx, in, tr, start, warning)
}

func (j *Journey) fetch(ctx context.Context, src source.Source, currentSessionID string, loaded map[string][]source.Message) (synth.Input, source.HistoryResult, error) {
	in := synth.Input{CurrentSessionID: currentSessionID}
	var history source.HistoryResult
	var err error

	if in.Sessions, err = src.Sessions(ctx); err != nil {
		return in, history, &SourceError{Collection: "sessions", Err: err}
	}
	if in.Runs, err = src.Runs(ctx); err != nil {
		return in, history, &SourceError{Collection: "runs", Err: err}
	}
	if in.Charts, err = src.Charts(ctx); err != nil {
		return in, history, &SourceError{Collection: "charts", Err: err}
	}

	history, err = source.FetchHistories(ctx, src, in.Sessions, loaded, j.config.HistoryConcurrency)
	if err != nil {
		return in, history, fmt.Errorf("fetch histories: %w", err)
	}
	in.Messages = history.Messages
	return in, history, nil
}

// Build rebuilds the journey from already fetched collections.
func (j *Journey) Build(ctx context.Context, in synth.Input) (*Snapshot, error) {
	tr := newTrace(uuid.New().String())
	return j.rebuild(ctx, in, tr, time.Now(), "")
}

func (j *Journey) rebuild(ctx context.Context, in synth.Input, tr *OperationTrace, start time.Time, warning string) (*Snapshot, error) {
	st := newSpanTimer("synthesize", tr)
	g := synth.Synthesize(in, synth.Options{
		Linker:            j.config.Linker,
		Now:               j.config.Now,
		MessageEventLimit: j.config.MessageEventLimit,
		NoteLimit:         j.config.NoteLimit,
	})
	j.metrics.RecordStage(ctx, OpRebuild, "synthesize", st.finish(nil, map[string]int64{
		"nodes":  int64(len(g.Nodes)),
		"edges":  int64(len(g.Edges)),
		"events": int64(len(g.Events)),
	}))

	snap, err := j.derive(ctx, OpRebuild, g, tr)
	if err != nil {
		return nil, j.fail(ctx, OpRebuild, tr, start, err)
	}
	snap.Warning = warning

	j.commit(ctx, OpRebuild, snap, start, false)
	return snap, nil
}

// derive runs depth, layout and summary over a finished graph.
func (j *Journey) derive(ctx context.Context, op string, g *graph.Graph, tr *OperationTrace) (*Snapshot, error) {
	st := newSpanTimer("depth", tr)
	depths := graph.Depths(g.Nodes)
	j.metrics.RecordStage(ctx, op, "depth", st.finish(nil, map[string]int64{
		"maxDepth": int64(graph.MaxDepth(depths)),
	}))

	st = newSpanTimer("layout", tr)
	l, err := layout.Compute(g.Nodes, g.Edges, depths, j.config.Layout)
	counters := map[string]int64{}
	if l != nil {
		counters["visibleNodes"] = int64(len(l.VisibleNodes))
		counters["visibleEdges"] = int64(len(l.VisibleEdges))
	}
	j.metrics.RecordStage(ctx, op, "layout", st.finish(err, counters))
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}

	st = newSpanTimer("summarize", tr)
	summary := insight.Summarize(g)
	j.metrics.RecordStage(ctx, op, "summarize", st.finish(nil, map[string]int64{
		"hotspots":     int64(len(summary.Hotspots)),
		"failurePaths": int64(len(summary.FailurePaths)),
	}))

	return &Snapshot{
		Graph:   g,
		Depths:  depths,
		Layout:  l,
		Summary: summary,
		Trace:   tr,
	}, nil
}

// commit swaps in snap as the current journey and reports the operation.
func (j *Journey) commit(ctx context.Context, op string, snap *Snapshot, start time.Time, resetFocus bool) {
	j.mu.Lock()
	j.snapshot = snap
	if resetFocus {
		j.focus.Clear()
	}
	j.mu.Unlock()

	total := time.Since(start).Milliseconds()
	j.metrics.RecordOperation(ctx, op, "success", total)
	j.metrics.SetGraphSize(ctx, "nodes", int64(len(snap.Graph.Nodes)))
	j.metrics.SetGraphSize(ctx, "edges", int64(len(snap.Graph.Edges)))
	j.metrics.SetGraphSize(ctx, "events", int64(len(snap.Graph.Events)))
	j.metrics.SetGraphSize(ctx, "visible_nodes", int64(len(snap.Layout.VisibleNodes)))

	j.logger.Info("journey rebuilt",
		"operation", op,
		"operation_id", snap.Trace.OperationID,
		"nodes", len(snap.Graph.Nodes),
		"edges", len(snap.Graph.Edges),
		"events", len(snap.Graph.Events),
		"visible_nodes", len(snap.Layout.VisibleNodes),
		"duration_ms", total,
	)

	j.export(ctx, &trace.TraceRecord{
		Timestamp:   start,
		OperationID: snap.Trace.OperationID,
		Operation:   op,
		DurationMs:  total,
		Status:      "success",
		Spans:       spanRecords(snap.Trace),
		Counters: map[string]int64{
			"nodes":        int64(len(snap.Graph.Nodes)),
			"edges":        int64(len(snap.Graph.Edges)),
			"events":       int64(len(snap.Graph.Events)),
			"visibleNodes": int64(len(snap.Layout.VisibleNodes)),
		},
		Warning: snap.Warning,
	})
}

// fail reports a failed operation and returns err unchanged. The current
// snapshot is left untouched.
func (j *Journey) fail(ctx context.Context, op string, tr *OperationTrace, start time.Time, err error) error {
	errType := ClassifyError(err)
	total := time.Since(start).Milliseconds()
	j.metrics.RecordOperation(ctx, op, "error", total)
	j.metrics.RecordError(ctx, op, errType)
	j.logger.Error("journey operation failed",
		"operation", op,
		"operation_id", tr.OperationID,
		"error_type", errType,
		"error", err,
	)
	j.export(ctx, &trace.TraceRecord{
		Timestamp:   start,
		OperationID: tr.OperationID,
		Operation:   op,
		DurationMs:  total,
		Status:      "error",
		Spans:       spanRecords(tr),
		ErrorType:   errType,
	})
	return err
}

func (j *Journey) export(ctx context.Context, rec *trace.TraceRecord) {
	if err := j.exporter.Export(ctx, rec); err != nil {
		j.logger.Warn("trace export failed", "operation_id", rec.OperationID, "error", err)
	}
}

func spanRecords(tr *OperationTrace) []trace.SpanRecord {
	out := make([]trace.SpanRecord, 0, len(tr.Spans))
	for _, s := range tr.Spans {
		out = append(out, trace.SpanRecord{
			Name:       s.Name,
			DurationMs: s.DurationMs,
			OK:         s.OK,
			ErrorType:  s.ErrorType,
			Counters:   s.Counters,
		})
	}
	return out
}

// Import replaces the current journey with one read from r. A malformed
// payload is rejected and the current journey is kept.
func (j *Journey) Import(ctx context.Context, r io.Reader) (*Snapshot, error) {
	tr := newTrace(uuid.New().String())
	start := time.Now()

	st := newSpanTimer("decode", tr)
	g, stats, err := graph.Import(r)
	counters := map[string]int64{
		"defaultedLinks": int64(stats.DefaultedLinks),
		"droppedEvents":  int64(stats.DroppedEvents),
	}
	j.metrics.RecordStage(ctx, OpImport, "decode", st.finish(err, counters))
	if err != nil {
		return nil, j.fail(ctx, OpImport, tr, start, err)
	}
	if stats.DroppedEvents > 0 {
		j.logger.Warn("imported events reference unknown nodes", "dropped_events", stats.DroppedEvents)
	}

	snap, err := j.derive(ctx, OpImport, g, tr)
	if err != nil {
		return nil, j.fail(ctx, OpImport, tr, start, err)
	}

	j.commit(ctx, OpImport, snap, start, true)
	return snap, nil
}

// Export writes the current journey in the exchange format.
func (j *Journey) Export(w io.Writer) error {
	snap, err := j.Current()
	if err != nil {
		return err
	}
	return graph.Export(w, snap.Graph)
}

// Current returns the latest snapshot.
func (j *Journey) Current() (*Snapshot, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.snapshot == nil {
		return nil, ErrNoSnapshot
	}
	return j.snapshot, nil
}

// FocusResult is a highlight together with the snapshot it was computed
// against. Callers render Snapshot, not Current, so both always agree.
type FocusResult struct {
	*focus.Highlight
	Snapshot *Snapshot
	// Pinned reports whether the effective focus comes from a click.
	Pinned bool
}

// Click toggles the pinned focus and returns the resulting highlight.
func (j *Journey) Click(t focus.Target) (*FocusResult, error) {
	return j.updateFocus(func(s *focus.State) { s.Click(t) })
}

// Hover sets the transient focus and returns the resulting highlight.
func (j *Journey) Hover(t focus.Target) (*FocusResult, error) {
	return j.updateFocus(func(s *focus.State) { s.Hover(t) })
}

// HoverOut clears the transient focus and returns the resulting highlight.
func (j *Journey) HoverOut() (*FocusResult, error) {
	return j.updateFocus(func(s *focus.State) { s.HoverOut() })
}

// ClearFocus resets pinned and transient focus.
func (j *Journey) ClearFocus() (*FocusResult, error) {
	return j.updateFocus(func(s *focus.State) { s.Clear() })
}

// Highlight returns the highlight of the current focus.
func (j *Journey) Highlight() (*FocusResult, error) {
	return j.updateFocus(func(*focus.State) {})
}

// FocusPinned reports whether the current focus comes from a click.
func (j *Journey) FocusPinned() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.focus.Pinned()
}

func (j *Journey) updateFocus(apply func(*focus.State)) (*FocusResult, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	apply(&j.focus)
	if j.snapshot == nil {
		return nil, ErrNoSnapshot
	}
	return &FocusResult{
		Highlight: focus.Component(j.snapshot.Layout.VisibleEdges, j.focus.Active()),
		Snapshot:  j.snapshot,
		Pinned:    j.focus.Pinned(),
	}, nil
}

// Package trace exports per-operation timing records for journey rebuilds.
package trace

import (
	"context"
	"time"
)

// Exporter writes operation traces somewhere durable.
// Implementations must be safe for concurrent use.
type Exporter interface {
	Export(ctx context.Context, record *TraceRecord) error
	Close() error
}

// TraceRecord is one finished operation. It carries ids and counts only,
// never chat or chart text.
type TraceRecord struct {
	Timestamp   time.Time    `json:"timestamp"`
	OperationID string       `json:"operationId"`
	Operation   string       `json:"operation"` // "rebuild", "import"
	DurationMs  int64        `json:"durationMs"`
	Status      string       `json:"status"` // "success" or "error"
	Spans       []SpanRecord `json:"spans"`
	ErrorType   string       `json:"errorType,omitempty"`
	// Counters holds graph sizes, e.g. nodes, edges, visibleNodes.
	Counters map[string]int64 `json:"counters,omitempty"`
	// Warning carries non-fatal conditions such as failed history fetches.
	Warning string `json:"warning,omitempty"`
}

// SpanRecord is a single stage within an operation.
type SpanRecord struct {
	// Name is one of fetch, synthesize, depth, layout, summarize, decode.
	Name       string           `json:"name"`
	DurationMs int64            `json:"durationMs"`
	OK         bool             `json:"ok"`
	ErrorType  string           `json:"errorType,omitempty"`
	Counters   map[string]int64 `json:"counters,omitempty"`
}

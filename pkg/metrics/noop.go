package metrics

import "context"

// NoopCollector discards everything. It is the default collector.
type NoopCollector struct{}

// NewNoopCollector creates a no-op collector
func NewNoopCollector() *NoopCollector {
	return &NoopCollector{}
}

var _ Collector = (*NoopCollector)(nil)

func (n *NoopCollector) RecordOperation(ctx context.Context, operation string, status string, durationMs int64) {
}

func (n *NoopCollector) RecordStage(ctx context.Context, operation string, stage string, durationMs int64) {
}

func (n *NoopCollector) RecordError(ctx context.Context, operation string, errorType string) {
}

func (n *NoopCollector) SetGraphSize(ctx context.Context, element string, count int64) {
}

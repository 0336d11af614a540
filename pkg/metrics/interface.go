package metrics

import "context"

// Collector records journey engine activity. Implementations are the
// Prometheus-backed MetricsCollector and NoopCollector.
type Collector interface {
	RecordOperation(ctx context.Context, operation string, status string, durationMs int64)
	RecordStage(ctx context.Context, operation string, stage string, durationMs int64)
	RecordError(ctx context.Context, operation string, errorType string)
	SetGraphSize(ctx context.Context, element string, count int64)
}

// Package metrics exposes Prometheus instrumentation for journey rebuilds.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector provides Prometheus metrics for journey operations
type MetricsCollector struct {
	operationsTotal *prometheus.CounterVec
	stageDuration   *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec
	graphSize       *prometheus.GaugeVec
	registry        *prometheus.Registry
}

var _ Collector = (*MetricsCollector)(nil)

// NewCollector creates a collector with its own registry
func NewCollector() *MetricsCollector {
	registry := prometheus.NewRegistry()

	operationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "journey_operations_total",
			Help: "Total number of journey operations by type and status",
		},
		[]string{"operation", "status"},
	)

	// Rebuilds are in-memory folds; buckets start well under a millisecond.
	stageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "journey_stage_duration_seconds",
			Help:    "Duration of journey operation stages",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		},
		[]string{"operation", "stage"},
	)

	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "journey_errors_total",
			Help: "Total number of errors by operation and error type",
		},
		[]string{"operation", "error_type"},
	)

	graphSize := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "journey_graph_size",
			Help: "Element counts of the current journey graph",
		},
		[]string{"element"},
	)

	registry.MustRegister(operationsTotal, stageDuration, errorsTotal, graphSize)

	return &MetricsCollector{
		operationsTotal: operationsTotal,
		stageDuration:   stageDuration,
		errorsTotal:     errorsTotal,
		graphSize:       graphSize,
		registry:        registry,
	}
}

// RecordOperation counts a finished operation
func (m *MetricsCollector) RecordOperation(ctx context.Context, operation string, status string, durationMs int64) {
	m.operationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordStage observes the duration of one stage of an operation
func (m *MetricsCollector) RecordStage(ctx context.Context, operation string, stage string, durationMs int64) {
	m.stageDuration.WithLabelValues(operation, stage).Observe(float64(durationMs) / 1000.0)
}

// RecordError counts an error occurrence
func (m *MetricsCollector) RecordError(ctx context.Context, operation string, errorType string) {
	m.errorsTotal.WithLabelValues(operation, errorType).Inc()
}

// SetGraphSize sets the current count of nodes, edges, events or visible nodes
func (m *MetricsCollector) SetGraphSize(ctx context.Context, element string, count int64) {
	m.graphSize.WithLabelValues(element).Set(float64(count))
}

// Registry returns the Prometheus registry for HTTP exposure
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

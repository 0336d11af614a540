package journey

import "time"

// OperationTrace captures per-stage timing of a rebuild or import.
// Stage names are stable:
//   - "fetch": loading collections and message histories
//   - "decode": parsing an imported journey
//   - "synthesize": building nodes, edges and events
//   - "depth": computing topological layers
//   - "layout": placing visible nodes
//   - "summarize": computing rollups
type OperationTrace struct {
	OperationID     string `json:"operationId"`
	Spans           []Span `json:"spans"`
	TotalDurationMs int64  `json:"totalDurationMs"`
}

// Span is a single timed stage.
type Span struct {
	Name       string           `json:"name"`
	DurationMs int64            `json:"durationMs"`
	OK         bool             `json:"ok"`
	Error      string           `json:"error,omitempty"`
	ErrorType  string           `json:"errorType,omitempty"`
	Counters   map[string]int64 `json:"counters,omitempty"`
}

func newTrace(operationID string) *OperationTrace {
	return &OperationTrace{
		OperationID: operationID,
		Spans:       make([]Span, 0),
	}
}

func (t *OperationTrace) addSpan(span Span) {
	t.Spans = append(t.Spans, span)
	t.TotalDurationMs += span.DurationMs
}

// spanTimer measures one stage and records it on finish.
type spanTimer struct {
	name    string
	start   time.Time
	trace   *OperationTrace
	enabled bool
}

func newSpanTimer(name string, trace *OperationTrace) *spanTimer {
	if trace == nil {
		return &spanTimer{enabled: false}
	}
	return &spanTimer{
		name:    name,
		start:   time.Now(),
		trace:   trace,
		enabled: true,
	}
}

// finish records the span and returns its duration in milliseconds.
func (st *spanTimer) finish(err error, counters map[string]int64) int64 {
	if !st.enabled {
		return 0
	}

	duration := time.Since(st.start).Milliseconds()
	span := Span{
		Name:       st.name,
		DurationMs: duration,
		OK:         err == nil,
		Counters:   counters,
	}
	if err != nil {
		span.Error = err.Error()
		span.ErrorType = ClassifyError(err)
	}
	st.trace.addSpan(span)
	return duration
}

package journey

import (
	"context"
	"errors"
	"strings"

	"github.com/dan-solli/journeygraph/pkg/graph"
	"github.com/dan-solli/journeygraph/pkg/layout"
)

// Error type constants for classification
const (
	ErrTypeValidation = "validation"
	ErrTypeTimeout    = "timeout"
	ErrTypeCanceled   = "canceled"
	ErrTypeSource     = "source"
	ErrTypeUnknown    = "unknown"
)

// ErrNoSnapshot is returned when a query runs before any journey was built.
var ErrNoSnapshot = errors.New("no journey has been built yet")

// SourceError wraps a failure to load a collaborator collection.
type SourceError struct {
	Collection string
	Err        error
}

func (e *SourceError) Error() string {
	return "load " + e.Collection + ": " + e.Err.Error()
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// ClassifyError returns the error class used in metric labels and traces.
func ClassifyError(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTypeTimeout
	}
	if errors.Is(err, context.Canceled) {
		return ErrTypeCanceled
	}
	if errors.Is(err, graph.ErrInvalidImport) || errors.Is(err, layout.ErrOverlap) {
		return ErrTypeValidation
	}

	var srcErr *SourceError
	if errors.As(err, &srcErr) {
		return ErrTypeSource
	}

	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "timeout") {
		return ErrTypeTimeout
	}
	if strings.Contains(lower, "invalid") || strings.Contains(lower, "required") {
		return ErrTypeValidation
	}

	return ErrTypeUnknown
}

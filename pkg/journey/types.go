package journey

import (
	"github.com/dan-solli/journeygraph/pkg/focus"
	"github.com/dan-solli/journeygraph/pkg/graph"
	"github.com/dan-solli/journeygraph/pkg/synth"
)

// Type re-exports for caller convenience

// Node is re-exported from graph package
type Node = graph.Node

// Edge is re-exported from graph package
type Edge = graph.Edge

// Event is re-exported from graph package
type Event = graph.Event

// Input is re-exported from synth package
type Input = synth.Input

// Target is re-exported from focus package
type Target = focus.Target

// Highlight is re-exported from focus package
type Highlight = focus.Highlight

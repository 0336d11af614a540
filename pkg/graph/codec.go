package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidImport is returned when an imported journey is structurally invalid.
var ErrInvalidImport = errors.New("invalid journey import")

var validate = validator.New()

// Export writes g in the journey exchange format.
func Export(w io.Writer, g *Graph) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode journey: %w", err)
	}
	return nil
}

// wire types keep required fields as pointers so absence is distinguishable
// from a zero value.

type wireGraph struct {
	Nodes  []wireNode  `json:"nodes" validate:"required,dive"`
	Edges  []wireEdge  `json:"edges" validate:"dive"`
	Events []wireEvent `json:"events" validate:"dive"`
}

type wireNode struct {
	ID              *string    `json:"id" validate:"required,min=1"`
	Kind            *string    `json:"kind" validate:"required,oneof=question experiment result decision hypothesis artifact"`
	Title           *string    `json:"title" validate:"required"`
	CreatedAt       *time.Time `json:"createdAt" validate:"required"`
	Status          *string    `json:"status" validate:"required,oneof=active completed failed blocked archived"`
	EffortMinutes   *float64   `json:"effortMinutes" validate:"required,gte=0"`
	CostUSD         *float64   `json:"costUsd" validate:"required,gte=0"`
	Confidence      *float64   `json:"confidence" validate:"required,gte=0,lte=1"`
	InformationGain *float64   `json:"informationGain" validate:"required,gte=0,lte=1"`
	WhyStopped      string     `json:"whyStopped"`
	ParentIDs       []string   `json:"parentIds" validate:"required,dive,min=1"`
	Tags            []string   `json:"tags" validate:"required"`
	SourceRef       *SourceRef `json:"sourceRef"`
}

type wireEdge struct {
	From       *string `json:"from" validate:"required,min=1"`
	To         *string `json:"to" validate:"required,min=1"`
	Relation   *string `json:"relation" validate:"required,oneof=derived_from tests contradicts supersedes blocked_by informs depends_on"`
	LinkMethod *string `json:"linkMethod" validate:"omitempty,oneof=explicit inferred"`
}

type wireEvent struct {
	ID          *string    `json:"id" validate:"required,min=1"`
	Timestamp   *time.Time `json:"timestamp" validate:"required"`
	NodeID      *string    `json:"nodeId" validate:"required,min=1"`
	Actor       *string    `json:"actor" validate:"required,oneof=human agent system"`
	Kind        *string    `json:"kind" validate:"required,oneof=chat_started user_message assistant_reply run_created run_queued run_launched run_running run_completed run_failed run_canceled chart_created"`
	Note        string     `json:"note"`
	RunStatus   string     `json:"runStatus"`
	RunProgress *float64   `json:"runProgress"`
}

// ImportStats reports what Import normalized or dropped.
type ImportStats struct {
	DefaultedLinks int // edges without linkMethod, set to inferred
	DroppedEvents  int // events whose node does not exist
}

// Import reads a journey in the exchange format. The whole payload is
// validated before a graph is returned; a malformed payload, including one
// with missing node fields or data after the journey object, yields an error
// wrapping ErrInvalidImport and no graph.
//
// Edges without a linkMethod become inferred. Edges whose endpoints are
// unknown are kept and simply never become visible. Events pointing at
// unknown nodes are dropped.
func Import(r io.Reader) (*Graph, ImportStats, error) {
	var stats ImportStats

	var wg wireGraph
	dec := json.NewDecoder(r)
	if err := dec.Decode(&wg); err != nil {
		return nil, stats, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, stats, fmt.Errorf("%w: unexpected data after journey", ErrInvalidImport)
	}
	if err := validate.Struct(&wg); err != nil {
		return nil, stats, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}

	g := &Graph{
		Nodes:  make([]*Node, 0, len(wg.Nodes)),
		Edges:  make([]Edge, 0, len(wg.Edges)),
		Events: make([]Event, 0, len(wg.Events)),
	}

	seen := make(map[string]bool, len(wg.Nodes))
	for i, wn := range wg.Nodes {
		if seen[*wn.ID] {
			return nil, stats, fmt.Errorf("%w: duplicate node id %q at index %d", ErrInvalidImport, *wn.ID, i)
		}
		seen[*wn.ID] = true

		g.Nodes = append(g.Nodes, &Node{
			ID:              *wn.ID,
			Kind:            NodeKind(*wn.Kind),
			Title:           *wn.Title,
			CreatedAt:       *wn.CreatedAt,
			Status:          NodeStatus(*wn.Status),
			EffortMinutes:   *wn.EffortMinutes,
			CostUSD:         *wn.CostUSD,
			Confidence:      *wn.Confidence,
			InformationGain: *wn.InformationGain,
			WhyStopped:      wn.WhyStopped,
			ParentIDs:       wn.ParentIDs,
			Tags:            wn.Tags,
			SourceRef:       wn.SourceRef,
		})
	}

	for _, we := range wg.Edges {
		method := LinkInferred
		if we.LinkMethod != nil && *we.LinkMethod != "" {
			method = LinkMethod(*we.LinkMethod)
		} else {
			stats.DefaultedLinks++
		}
		g.Edges = append(g.Edges, Edge{
			From:       *we.From,
			To:         *we.To,
			Relation:   Relation(*we.Relation),
			LinkMethod: method,
		})
	}

	for _, wv := range wg.Events {
		if !seen[*wv.NodeID] {
			stats.DroppedEvents++
			continue
		}
		g.Events = append(g.Events, Event{
			ID:          *wv.ID,
			Timestamp:   *wv.Timestamp,
			NodeID:      *wv.NodeID,
			Actor:       Actor(*wv.Actor),
			Kind:        EventKind(*wv.Kind),
			Note:        wv.Note,
			RunStatus:   wv.RunStatus,
			RunProgress: wv.RunProgress,
		})
	}

	return g, stats, nil
}

// Package graph holds the journey provenance graph: nodes, edges, the
// chronological event log, depth computation and the JSON exchange format.
package graph

import "time"

// NodeKind is the discriminant of the single tagged-variant Node record.
type NodeKind string

const (
	KindQuestion   NodeKind = "question"
	KindExperiment NodeKind = "experiment"
	KindResult     NodeKind = "result"
	KindDecision   NodeKind = "decision"
	KindHypothesis NodeKind = "hypothesis"
	KindArtifact   NodeKind = "artifact"
)

// NodeStatus is derived from the originating record's own status.
type NodeStatus string

const (
	StatusActive    NodeStatus = "active"
	StatusCompleted NodeStatus = "completed"
	StatusFailed    NodeStatus = "failed"
	StatusBlocked   NodeStatus = "blocked"
	StatusArchived  NodeStatus = "archived"
)

// Relation is the type of a directed edge.
type Relation string

const (
	RelDerivedFrom Relation = "derived_from"
	RelTests       Relation = "tests"
	RelContradicts Relation = "contradicts"
	RelSupersedes  Relation = "supersedes"
	RelBlockedBy   Relation = "blocked_by"
	RelInforms     Relation = "informs"
	RelDependsOn   Relation = "depends_on"
)

// LinkMethod records how confidently an edge was established.
type LinkMethod string

const (
	// LinkExplicit edges come from structured fields or a validated text match.
	LinkExplicit LinkMethod = "explicit"
	// LinkInferred edges come from contextual heuristics.
	LinkInferred LinkMethod = "inferred"
)

// Actor identifies who produced an event.
type Actor string

const (
	ActorHuman  Actor = "human"
	ActorAgent  Actor = "agent"
	ActorSystem Actor = "system"
)

// EventKind is drawn from a fixed vocabulary used by downstream label lookups.
type EventKind string

const (
	EventChatStarted    EventKind = "chat_started"
	EventUserMessage    EventKind = "user_message"
	EventAssistantReply EventKind = "assistant_reply"
	EventRunCreated     EventKind = "run_created"
	EventRunQueued      EventKind = "run_queued"
	EventRunLaunched    EventKind = "run_launched"
	EventRunRunning     EventKind = "run_running"
	EventRunCompleted   EventKind = "run_completed"
	EventRunFailed      EventKind = "run_failed"
	EventRunCanceled    EventKind = "run_canceled"
	EventChartCreated   EventKind = "chart_created"
)

// Node id prefixes, one per originating collection.
const (
	PrefixChat  = "chat:"
	PrefixRun   = "run:"
	PrefixChart = "chart:"
)

// ChatNodeID returns the namespaced node id of a chat session.
func ChatNodeID(sessionID string) string { return PrefixChat + sessionID }

// RunNodeID returns the namespaced node id of a run.
func RunNodeID(runID string) string { return PrefixRun + runID }

// ChartNodeID returns the namespaced node id of a chart.
func ChartNodeID(chartID string) string { return PrefixChart + chartID }

// SourceRef points back at the collaborator record a node was built from.
type SourceRef struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
}

// Node is one unit of journey history. Scores are heuristics, not measurements.
type Node struct {
	ID              string     `json:"id"`
	Kind            NodeKind   `json:"kind"`
	Title           string     `json:"title"`
	CreatedAt       time.Time  `json:"createdAt"`
	Status          NodeStatus `json:"status"`
	EffortMinutes   float64    `json:"effortMinutes"`
	CostUSD         float64    `json:"costUsd"`
	Confidence      float64    `json:"confidence"`
	InformationGain float64    `json:"informationGain"`
	WhyStopped      string     `json:"whyStopped,omitempty"`
	ParentIDs       []string   `json:"parentIds"`
	Tags            []string   `json:"tags"`
	SourceRef       *SourceRef `json:"sourceRef,omitempty"`
}

// IsRoot reports whether the node was produced from nothing.
func (n *Node) IsRoot() bool {
	return len(n.ParentIDs) == 0
}

// HasTag reports whether the node carries the given label.
func (n *Node) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Edge is a directed relation between two node ids.
type Edge struct {
	From       string     `json:"from"`
	To         string     `json:"to"`
	Relation   Relation   `json:"relation"`
	LinkMethod LinkMethod `json:"linkMethod"`
}

// Key identifies the edge by its endpoint pair.
func (e Edge) Key() EdgeKey {
	return EdgeKey{From: e.From, To: e.To}
}

// Dashed reports whether the edge renders as a lower-confidence link.
func (e Edge) Dashed() bool {
	return e.LinkMethod != LinkExplicit
}

// EdgeKey is an edge's endpoint pair.
type EdgeKey struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Event is one entry in the chronological journey log.
type Event struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	NodeID      string    `json:"nodeId"`
	Actor       Actor     `json:"actor"`
	Kind        EventKind `json:"kind"`
	Note        string    `json:"note"`
	RunStatus   string    `json:"runStatus,omitempty"`
	RunProgress *float64  `json:"runProgress,omitempty"`
}

// Graph is the synthesized journey. It is rebuilt, never mutated in place.
type Graph struct {
	Nodes  []*Node `json:"nodes"`
	Edges  []Edge  `json:"edges"`
	Events []Event `json:"events"`
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id string) *Node {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// HasNode reports whether id names a node in the graph.
func (g *Graph) HasNode(id string) bool {
	return g.Node(id) != nil
}

// NodeIndex maps node ids to their position in synthesis order.
func (g *Graph) NodeIndex() map[string]int {
	idx := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		idx[n.ID] = i
	}
	return idx
}

// EventsByActor returns the events produced by actor in chronological order.
// An empty actor returns every event.
func (g *Graph) EventsByActor(actor Actor) []Event {
	out := make([]Event, 0, len(g.Events))
	for _, ev := range g.Events {
		if actor == "" || ev.Actor == actor {
			out = append(out, ev)
		}
	}
	return out
}

// CountKind returns the number of nodes of the given kind.
func (g *Graph) CountKind(kind NodeKind) int {
	count := 0
	for _, n := range g.Nodes {
		if n.Kind == kind {
			count++
		}
	}
	return count
}

// Package focus computes which parts of the visible journey are highlighted
// when a node or edge is hovered or clicked.
package focus

import "github.com/dan-solli/journeygraph/pkg/graph"

// Target is a focused node or edge. Exactly one of NodeID and Edge is set.
type Target struct {
	NodeID string         `json:"nodeId,omitempty"`
	Edge   *graph.EdgeKey `json:"edge,omitempty"`
}

// NodeTarget focuses a node.
func NodeTarget(id string) Target {
	return Target{NodeID: id}
}

// EdgeTarget focuses the edge between from and to.
func EdgeTarget(from, to string) Target {
	return Target{Edge: &graph.EdgeKey{From: from, To: to}}
}

// Seeds returns the node ids the traversal starts from.
func (t Target) Seeds() []string {
	if t.Edge != nil {
		return []string{t.Edge.From, t.Edge.To}
	}
	if t.NodeID != "" {
		return []string{t.NodeID}
	}
	return nil
}

// Equal reports whether two targets name the same element.
func (t Target) Equal(o Target) bool {
	if (t.Edge == nil) != (o.Edge == nil) {
		return false
	}
	if t.Edge != nil {
		return *t.Edge == *o.Edge
	}
	return t.NodeID == o.NodeID
}

// State holds the pinned (click) and transient (hover) selections. Pinned
// wins when both are set.
type State struct {
	pinned    *Target
	transient *Target
}

// Click pins t, or unpins it when t is already pinned.
func (s *State) Click(t Target) {
	if s.pinned != nil && s.pinned.Equal(t) {
		s.pinned = nil
		return
	}
	s.pinned = &t
}

// Hover sets the transient focus.
func (s *State) Hover(t Target) {
	s.transient = &t
}

// HoverOut clears the transient focus.
func (s *State) HoverOut() {
	s.transient = nil
}

// Clear resets both selections.
func (s *State) Clear() {
	s.pinned = nil
	s.transient = nil
}

// Active returns the effective focus, or nil when nothing is focused.
func (s *State) Active() *Target {
	if s.pinned != nil {
		return s.pinned
	}
	return s.transient
}

// Pinned reports whether the effective focus comes from a click.
func (s *State) Pinned() bool {
	return s.pinned != nil
}

// Highlight is the set of active elements. A nil target activates everything.
type Highlight struct {
	all   bool
	Nodes map[string]bool
	Edges map[graph.EdgeKey]bool
}

// NodeActive reports whether the node renders at full opacity.
func (h *Highlight) NodeActive(id string) bool {
	return h.all || h.Nodes[id]
}

// EdgeActive reports whether the edge renders at full opacity.
func (h *Highlight) EdgeActive(e graph.Edge) bool {
	return h.all || h.Edges[e.Key()]
}

// All reports whether nothing is dimmed.
func (h *Highlight) All() bool {
	return h.all
}

// Component returns the connected component of the visible edges reachable
// from target, treating edges as undirected. A nil target activates all.
func Component(edges []graph.Edge, target *Target) *Highlight {
	if target == nil || len(target.Seeds()) == 0 {
		return &Highlight{all: true}
	}

	adjacency := make(map[string][]string)
	for _, e := range edges {
		adjacency[e.From] = append(adjacency[e.From], e.To)
		adjacency[e.To] = append(adjacency[e.To], e.From)
	}

	h := &Highlight{
		Nodes: make(map[string]bool),
		Edges: make(map[graph.EdgeKey]bool),
	}

	queue := make([]string, 0)
	for _, seed := range target.Seeds() {
		if !h.Nodes[seed] {
			h.Nodes[seed] = true
			queue = append(queue, seed)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, next := range adjacency[current] {
			if !h.Nodes[next] {
				h.Nodes[next] = true
				queue = append(queue, next)
			}
		}
	}

	for _, e := range edges {
		if h.Nodes[e.From] && h.Nodes[e.To] {
			h.Edges[e.Key()] = true
		}
	}

	return h
}

// NodeIDs returns the active node ids in the order they appear in nodes.
func (h *Highlight) NodeIDs(nodes []*graph.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if h.NodeActive(n.ID) {
			out = append(out, n.ID)
		}
	}
	return out
}

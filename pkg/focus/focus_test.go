package focus

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dan-solli/journeygraph/pkg/graph"
)

// Two components: s1 - r1 - c1 and s2 - r2, plus isolated x.
func visibleEdges() []graph.Edge {
	return []graph.Edge{
		{From: "chat:s1", To: "run:r1", Relation: graph.RelTests, LinkMethod: graph.LinkExplicit},
		{From: "run:r1", To: "chart:c1", Relation: graph.RelInforms, LinkMethod: graph.LinkExplicit},
		{From: "chat:s2", To: "run:r2", Relation: graph.RelTests, LinkMethod: graph.LinkExplicit},
	}
}

func TestComponent_NodeFocusIsUndirected(t *testing.T) {
	edges := visibleEdges()

	h := Component(edges, &Target{NodeID: "chart:c1"})

	assert.False(t, h.All())
	assert.Equal(t, map[string]bool{"chat:s1": true, "run:r1": true, "chart:c1": true}, h.Nodes)
	assert.True(t, h.EdgeActive(edges[0]))
	assert.True(t, h.EdgeActive(edges[1]))
	assert.False(t, h.EdgeActive(edges[2]))
	assert.False(t, h.NodeActive("run:r2"))
}

func TestComponent_EdgeFocusSeedsBothEnds(t *testing.T) {
	edges := visibleEdges()

	target := EdgeTarget("chat:s2", "run:r2")
	h := Component(edges, &target)

	assert.Equal(t, map[string]bool{"chat:s2": true, "run:r2": true}, h.Nodes)
	assert.Equal(t, map[graph.EdgeKey]bool{{From: "chat:s2", To: "run:r2"}: true}, h.Edges)
}

func TestComponent_IsolatedNode(t *testing.T) {
	h := Component(visibleEdges(), &Target{NodeID: "x"})

	assert.Equal(t, map[string]bool{"x": true}, h.Nodes)
	assert.Empty(t, h.Edges)
}

func TestComponent_NoFocusActivatesAll(t *testing.T) {
	edges := visibleEdges()
	h := Component(edges, nil)

	assert.True(t, h.All())
	assert.True(t, h.NodeActive("anything"))
	assert.True(t, h.EdgeActive(edges[2]))

	assert.True(t, Component(edges, &Target{}).All())
}

func TestComponent_Symmetry(t *testing.T) {
	edges := visibleEdges()
	ids := []string{"chat:s1", "run:r1", "chart:c1", "chat:s2", "run:r2", "x"}

	for _, x := range ids {
		for _, y := range ids {
			fromY := Component(edges, &Target{NodeID: y})
			fromX := Component(edges, &Target{NodeID: x})
			assert.Equal(t, fromY.NodeActive(x), fromX.NodeActive(y), "x=%s y=%s", x, y)
		}
	}
}

func TestComponent_Cycle(t *testing.T) {
	edges := []graph.Edge{
		{From: "a", To: "b"},
		{From: "b", To: "a"},
		{From: "b", To: "c"},
	}

	h := Component(edges, &Target{NodeID: "c"})

	assert.Len(t, h.Nodes, 3)
	assert.Len(t, h.Edges, 3)
}

func TestState_ClickToggles(t *testing.T) {
	var s State

	s.Click(NodeTarget("run:r1"))
	assert.True(t, s.Pinned())
	assert.Equal(t, "run:r1", s.Active().NodeID)

	s.Click(NodeTarget("run:r1"))
	assert.False(t, s.Pinned())
	assert.Nil(t, s.Active())

	s.Click(EdgeTarget("a", "b"))
	s.Click(EdgeTarget("a", "b"))
	assert.Nil(t, s.Active())
}

func TestState_ClickOtherTargetRepins(t *testing.T) {
	var s State

	s.Click(NodeTarget("a"))
	s.Click(NodeTarget("b"))

	assert.Equal(t, "b", s.Active().NodeID)
}

func TestState_PinnedBeatsHover(t *testing.T) {
	var s State

	s.Hover(NodeTarget("hovered"))
	assert.Equal(t, "hovered", s.Active().NodeID)

	s.Click(NodeTarget("clicked"))
	assert.Equal(t, "clicked", s.Active().NodeID)

	s.Click(NodeTarget("clicked"))
	assert.Equal(t, "hovered", s.Active().NodeID)

	s.HoverOut()
	assert.Nil(t, s.Active())
}

func TestState_Clear(t *testing.T) {
	var s State
	s.Hover(NodeTarget("a"))
	s.Click(EdgeTarget("a", "b"))

	s.Clear()

	assert.Nil(t, s.Active())
	assert.False(t, s.Pinned())
}

func TestTarget_Equal(t *testing.T) {
	assert.True(t, NodeTarget("a").Equal(NodeTarget("a")))
	assert.False(t, NodeTarget("a").Equal(NodeTarget("b")))
	assert.True(t, EdgeTarget("a", "b").Equal(EdgeTarget("a", "b")))
	assert.False(t, EdgeTarget("a", "b").Equal(EdgeTarget("b", "a")))
	assert.False(t, EdgeTarget("a", "b").Equal(NodeTarget("a")))
}

func TestHighlight_NodeIDs(t *testing.T) {
	ns := []*graph.Node{{ID: "chat:s2"}, {ID: "chat:s1"}, {ID: "run:r2"}}

	h := Component(visibleEdges(), &Target{NodeID: "run:r2"})

	assert.Equal(t, []string{"chat:s2", "run:r2"}, h.NodeIDs(ns))
}

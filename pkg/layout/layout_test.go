package layout

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dan-solli/journeygraph/pkg/graph"
)

func nodes(ids ...string) []*graph.Node {
	out := make([]*graph.Node, 0, len(ids))
	for _, id := range ids {
		out = append(out, &graph.Node{ID: id, ParentIDs: []string{}, Tags: []string{}})
	}
	return out
}

func TestCompute_ColumnsAndRows(t *testing.T) {
	ns := nodes("chat:s1", "run:r1", "run:r2", "chart:c1", "chat:s2")
	depths := map[string]int{"chat:s1": 0, "run:r1": 1, "run:r2": 1, "chart:c1": 2, "chat:s2": 0}
	edges := []graph.Edge{
		{From: "chat:s1", To: "run:r1", Relation: graph.RelTests, LinkMethod: graph.LinkExplicit},
		{From: "run:r1", To: "chart:c1", Relation: graph.RelInforms, LinkMethod: graph.LinkExplicit},
	}

	l, err := Compute(ns, edges, depths, Options{})
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"chat:s1", "chat:s2"},
		{"run:r1", "run:r2"},
		{"chart:c1"},
	}, l.Columns)

	assert.Equal(t, Point{X: 22, Y: 26}, l.Positions["chat:s1"])
	assert.Equal(t, Point{X: 22, Y: 26 + 84}, l.Positions["chat:s2"])
	assert.Equal(t, Point{X: 22 + 260, Y: 26 + 84}, l.Positions["run:r2"])
	assert.Equal(t, Point{X: 22 + 2*260, Y: 26}, l.Positions["chart:c1"])

	assert.Equal(t, 22*2+3*260, l.Width)
	assert.Equal(t, 26*2+2*84, l.Height)
	assert.Equal(t, 190, l.NodeWidth)
	assert.Equal(t, 42, l.NodeHeight)
	assert.Equal(t, edges, l.VisibleEdges)
}

func TestCompute_CapsVisibleNodes(t *testing.T) {
	var ids []string
	for i := 0; i < 40; i++ {
		ids = append(ids, fmt.Sprintf("n%d", i))
	}
	ns := nodes(ids...)
	depths := map[string]int{}
	for i, id := range ids {
		depths[id] = i % 3
	}
	edges := []graph.Edge{
		{From: "n0", To: "n35", Relation: graph.RelInforms},
		{From: "n0", To: "n36", Relation: graph.RelInforms},
		{From: "n38", To: "n39", Relation: graph.RelInforms},
	}

	l, err := Compute(ns, edges, depths, Options{})
	require.NoError(t, err)

	require.Len(t, l.VisibleNodes, DefaultMaxNodes)
	assert.Equal(t, "n35", l.VisibleNodes[DefaultMaxNodes-1].ID)
	assert.True(t, l.Visible("n35"))
	assert.False(t, l.Visible("n36"))
	assert.Equal(t, []graph.Edge{edges[0]}, l.VisibleEdges)
}

func TestCompute_EdgesToUnknownNodesHidden(t *testing.T) {
	ns := nodes("a", "b")
	edges := []graph.Edge{
		{From: "a", To: "b", Relation: graph.RelInforms},
		{From: "ghost", To: "b", Relation: graph.RelInforms},
		{From: "a", To: "ghost", Relation: graph.RelInforms},
	}

	l, err := Compute(ns, edges, map[string]int{"a": 0, "b": 1}, Options{})
	require.NoError(t, err)
	assert.Len(t, l.VisibleEdges, 1)
}

func TestCompute_Empty(t *testing.T) {
	l, err := Compute(nil, nil, nil, Options{})
	require.NoError(t, err)

	assert.Empty(t, l.VisibleNodes)
	assert.Empty(t, l.VisibleEdges)
	assert.Equal(t, 22*2, l.Width)
	assert.Equal(t, 26*2, l.Height)
}

func TestCompute_NoOverlap(t *testing.T) {
	ns := nodes("a", "b", "c", "d", "e", "f")
	depths := map[string]int{"a": 0, "b": 0, "c": 1, "d": 1, "e": 0, "f": 2}

	l, err := Compute(ns, nil, depths, Options{})
	require.NoError(t, err)

	for _, n := range l.VisibleNodes {
		for _, m := range l.VisibleNodes {
			if n.ID == m.ID {
				continue
			}
			p, q := l.Positions[n.ID], l.Positions[m.ID]
			apart := p.X+l.NodeWidth <= q.X || q.X+l.NodeWidth <= p.X ||
				p.Y+l.NodeHeight <= q.Y || q.Y+l.NodeHeight <= p.Y
			assert.True(t, apart, "%s overlaps %s", n.ID, m.ID)
		}
	}
}

func TestCompute_CustomOptions(t *testing.T) {
	opts := Options{MaxNodes: 2, ColumnWidth: 100, RowHeight: 50, NodeWidth: 80, NodeHeight: 30, PaddingX: 10, PaddingY: 5}

	l, err := Compute(nodes("a", "b", "c"), nil, map[string]int{"a": 0, "b": 1, "c": 0}, opts)
	require.NoError(t, err)

	assert.Len(t, l.VisibleNodes, 2)
	assert.Equal(t, Point{X: 110, Y: 5}, l.Positions["b"])
	assert.Equal(t, 10*2+2*100, l.Width)
	assert.Equal(t, 5*2+50, l.Height)
}

func TestOptions_Validate(t *testing.T) {
	assert.NoError(t, DefaultOptions().Validate())

	tall := DefaultOptions()
	tall.NodeHeight = tall.RowHeight
	assert.ErrorIs(t, tall.Validate(), ErrOverlap)

	wide := DefaultOptions()
	wide.NodeWidth = wide.ColumnWidth + 1
	assert.ErrorIs(t, wide.Validate(), ErrOverlap)

	_, err := Compute(nodes("a"), nil, nil, tall)
	assert.ErrorIs(t, err, ErrOverlap)
}

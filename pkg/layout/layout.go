// Package layout places journey nodes on a column/row grid for rendering.
package layout

import (
	"errors"
	"fmt"

	"github.com/dan-solli/journeygraph/pkg/graph"
)

// ErrOverlap is returned when the options would make node boxes overlap.
var ErrOverlap = errors.New("layout options make nodes overlap")

// Rendering defaults. They are not semantic; any values that keep boxes
// apart work.
const (
	DefaultMaxNodes    = 36
	DefaultColumnWidth = 260
	DefaultRowHeight   = 84
	DefaultNodeWidth   = 190
	DefaultNodeHeight  = 42
	DefaultPaddingX    = 22
	DefaultPaddingY    = 26
)

// Options configures the grid.
type Options struct {
	MaxNodes    int // hard cap on visible nodes, in synthesis order
	ColumnWidth int
	RowHeight   int
	NodeWidth   int
	NodeHeight  int
	PaddingX    int
	PaddingY    int
}

// ApplyDefaults fills zero-valued options with defaults.
func ApplyDefaults(opts *Options) {
	if opts.MaxNodes <= 0 {
		opts.MaxNodes = DefaultMaxNodes
	}
	if opts.ColumnWidth <= 0 {
		opts.ColumnWidth = DefaultColumnWidth
	}
	if opts.RowHeight <= 0 {
		opts.RowHeight = DefaultRowHeight
	}
	if opts.NodeWidth <= 0 {
		opts.NodeWidth = DefaultNodeWidth
	}
	if opts.NodeHeight <= 0 {
		opts.NodeHeight = DefaultNodeHeight
	}
	if opts.PaddingX <= 0 {
		opts.PaddingX = DefaultPaddingX
	}
	if opts.PaddingY <= 0 {
		opts.PaddingY = DefaultPaddingY
	}
}

// DefaultOptions returns the stock grid.
func DefaultOptions() Options {
	return Options{
		MaxNodes:    DefaultMaxNodes,
		ColumnWidth: DefaultColumnWidth,
		RowHeight:   DefaultRowHeight,
		NodeWidth:   DefaultNodeWidth,
		NodeHeight:  DefaultNodeHeight,
		PaddingX:    DefaultPaddingX,
		PaddingY:    DefaultPaddingY,
	}
}

// Validate checks that boxes cannot overlap.
func (o Options) Validate() error {
	if o.NodeHeight >= o.RowHeight {
		return fmt.Errorf("%w: node height %d must be less than row height %d", ErrOverlap, o.NodeHeight, o.RowHeight)
	}
	if o.NodeWidth > o.ColumnWidth {
		return fmt.Errorf("%w: node width %d exceeds column width %d", ErrOverlap, o.NodeWidth, o.ColumnWidth)
	}
	return nil
}

// Point is a node's top-left corner in pixels.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Layout is the renderable geometry of the visible part of a journey.
type Layout struct {
	VisibleNodes []*graph.Node    `json:"visibleNodes"`
	VisibleEdges []graph.Edge     `json:"visibleEdges"`
	Positions    map[string]Point `json:"positions"`
	Columns      [][]string       `json:"columns"`
	Width        int              `json:"width"`
	Height       int              `json:"height"`
	NodeWidth    int              `json:"nodeWidth"`
	NodeHeight   int              `json:"nodeHeight"`
}

// Visible reports whether id is laid out.
func (l *Layout) Visible(id string) bool {
	_, ok := l.Positions[id]
	return ok
}

// Compute lays out nodes. Only the first opts.MaxNodes nodes are visible;
// each goes in the column of its depth and keeps synthesis order as its row.
// Edges survive only when both endpoints are visible.
func Compute(nodes []*graph.Node, edges []graph.Edge, depths map[string]int, opts Options) (*Layout, error) {
	ApplyDefaults(&opts)
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	visible := nodes
	if len(visible) > opts.MaxNodes {
		visible = visible[:opts.MaxNodes]
	}

	l := &Layout{
		VisibleNodes: make([]*graph.Node, 0, len(visible)),
		VisibleEdges: []graph.Edge{},
		Positions:    make(map[string]Point, len(visible)),
		NodeWidth:    opts.NodeWidth,
		NodeHeight:   opts.NodeHeight,
	}

	maxDepth := 0
	for _, n := range visible {
		if _, dup := l.Positions[n.ID]; dup {
			continue
		}
		d := depths[n.ID]
		if d < 0 {
			d = 0
		}
		for len(l.Columns) <= d {
			l.Columns = append(l.Columns, []string{})
		}
		row := len(l.Columns[d])
		l.Columns[d] = append(l.Columns[d], n.ID)
		l.Positions[n.ID] = Point{
			X: opts.PaddingX + d*opts.ColumnWidth,
			Y: opts.PaddingY + row*opts.RowHeight,
		}
		l.VisibleNodes = append(l.VisibleNodes, n)
		if d > maxDepth {
			maxDepth = d
		}
	}

	maxRows := 0
	for _, col := range l.Columns {
		if len(col) > maxRows {
			maxRows = len(col)
		}
	}
	columnCount := 0
	if len(l.VisibleNodes) > 0 {
		columnCount = maxDepth + 1
	}
	l.Width = opts.PaddingX*2 + columnCount*opts.ColumnWidth
	l.Height = opts.PaddingY*2 + maxRows*opts.RowHeight

	for _, e := range edges {
		if l.Visible(e.From) && l.Visible(e.To) {
			l.VisibleEdges = append(l.VisibleEdges, e)
		}
	}

	return l, nil
}

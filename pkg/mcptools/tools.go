// Package mcptools exposes the journey graph as MCP tools.
package mcptools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dan-solli/journeygraph/pkg/focus"
	"github.com/dan-solli/journeygraph/pkg/graph"
	"github.com/dan-solli/journeygraph/pkg/journey"
	"github.com/dan-solli/journeygraph/pkg/source"
)

// Backend is what the tools read from. Every tool except journey_focus
// reloads the collections first, so answers track the source.
type Backend struct {
	Journey          *journey.Journey
	Source           source.Source
	CurrentSessionID string
}

func (b *Backend) reload(ctx context.Context) (*journey.Snapshot, error) {
	return b.Journey.Load(ctx, b.Source, b.CurrentSessionID, nil)
}

// current returns the latest snapshot, loading one on first use.
func (b *Backend) current(ctx context.Context) (*journey.Snapshot, error) {
	snap, err := b.Journey.Current()
	if errors.Is(err, journey.ErrNoSnapshot) {
		return b.reload(ctx)
	}
	return snap, err
}

// RegisterTools adds all journey tools to the MCP server.
func RegisterTools(s *server.MCPServer, b *Backend) {
	s.AddTool(summaryTool(), summaryHandler(b))
	s.AddTool(layoutTool(), layoutHandler(b))
	s.AddTool(focusTool(), focusHandler(b))
	s.AddTool(exportTool(), exportHandler(b))
	s.AddTool(eventsTool(), eventsHandler(b))
}

// --- summary ---

func summaryTool() mcp.Tool {
	return mcp.NewTool("journey_summary",
		mcp.WithDescription("Summarize the research journey: total effort and cost, experiment count, low-efficiency hotspots, failed runs and suggested next actions."),
	)
}

type summaryView struct {
	TotalEffort     float64    `json:"totalEffort"`
	TotalCost       float64    `json:"totalCost"`
	ExperimentCount int        `json:"experimentCount"`
	Hotspots        []nodeView `json:"hotspots"`
	FailurePaths    []nodeView `json:"failurePaths"`
	Reflections     []string   `json:"reflections"`
	Warning         string     `json:"warning,omitempty"`
}

type nodeView struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Status     string  `json:"status"`
	Effort     float64 `json:"effortMinutes"`
	WhyStopped string  `json:"whyStopped,omitempty"`
}

func viewNodes(nodes []*graph.Node) []nodeView {
	out := make([]nodeView, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, nodeView{
			ID:         n.ID,
			Title:      n.Title,
			Status:     string(n.Status),
			Effort:     n.EffortMinutes,
			WhyStopped: n.WhyStopped,
		})
	}
	return out
}

func summaryHandler(b *Backend) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		snap, err := b.reload(ctx)
		if err != nil {
			return toolError(err)
		}
		s := snap.Summary
		return jsonResult(summaryView{
			TotalEffort:     s.TotalEffort,
			TotalCost:       s.TotalCost,
			ExperimentCount: s.ExperimentCount,
			Hotspots:        viewNodes(s.Hotspots),
			FailurePaths:    viewNodes(s.FailurePaths),
			Reflections:     s.Reflections,
			Warning:         snap.Warning,
		})
	}
}

// --- layout ---

func layoutTool() mcp.Tool {
	return mcp.NewTool("journey_layout",
		mcp.WithDescription("Lay out the visible journey graph on a column/row grid. Returns node positions, visible edges and canvas size."),
	)
}

type layoutView struct {
	Width      int            `json:"width"`
	Height     int            `json:"height"`
	NodeWidth  int            `json:"nodeWidth"`
	NodeHeight int            `json:"nodeHeight"`
	Nodes      []placedNode   `json:"nodes"`
	Edges      []graph.Edge   `json:"edges"`
	Depths     map[string]int `json:"depths"`
	Warning    string         `json:"warning,omitempty"`
}

type placedNode struct {
	ID    string `json:"id"`
	Kind  string `json:"kind"`
	Title string `json:"title"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
}

func layoutHandler(b *Backend) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		snap, err := b.reload(ctx)
		if err != nil {
			return toolError(err)
		}
		l := snap.Layout
		view := layoutView{
			Width:      l.Width,
			Height:     l.Height,
			NodeWidth:  l.NodeWidth,
			NodeHeight: l.NodeHeight,
			Nodes:      make([]placedNode, 0, len(l.VisibleNodes)),
			Edges:      l.VisibleEdges,
			Depths:     make(map[string]int, len(l.VisibleNodes)),
			Warning:    snap.Warning,
		}
		for _, n := range l.VisibleNodes {
			p := l.Positions[n.ID]
			view.Nodes = append(view.Nodes, placedNode{ID: n.ID, Kind: string(n.Kind), Title: n.Title, X: p.X, Y: p.Y})
			view.Depths[n.ID] = snap.Depths[n.ID]
		}
		return jsonResult(view)
	}
}

// --- focus ---

const (
	actionClick    = "click"
	actionHover    = "hover"
	actionHoverOut = "hover_out"
	actionClear    = "clear"
)

func focusTool() mcp.Tool {
	return mcp.NewTool("journey_focus",
		mcp.WithDescription("Focus a node or edge and return the connected part of the visible graph. Clicking the same target again unpins it."),
		mcp.WithString("action",
			mcp.Description("What to do: click (pin/unpin), hover, hover_out or clear. Defaults to click."),
			mcp.Enum(actionClick, actionHover, actionHoverOut, actionClear),
		),
		mcp.WithString("node_id",
			mcp.Description("Node to focus, e.g. run:abc123"),
		),
		mcp.WithString("edge_from",
			mcp.Description("Source node of an edge to focus; requires edge_to"),
		),
		mcp.WithString("edge_to",
			mcp.Description("Target node of an edge to focus; requires edge_from"),
		),
	)
}

type focusView struct {
	All    bool            `json:"all"`
	Pinned bool            `json:"pinned"`
	Nodes  []string        `json:"nodes"`
	Edges  []graph.EdgeKey `json:"edges"`
}

func focusHandler(b *Backend) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if _, err := b.current(ctx); err != nil {
			return toolError(err)
		}

		action := req.GetString("action", actionClick)
		var res *journey.FocusResult
		var err error
		switch action {
		case actionClick, actionHover:
			target, err := parseTarget(req)
			if err != nil {
				return toolError(err)
			}
			if action == actionClick {
				res, err = b.Journey.Click(target)
			} else {
				res, err = b.Journey.Hover(target)
			}
			if err != nil {
				return toolError(err)
			}
		case actionHoverOut:
			if res, err = b.Journey.HoverOut(); err != nil {
				return toolError(err)
			}
		case actionClear:
			if res, err = b.Journey.ClearFocus(); err != nil {
				return toolError(err)
			}
		default:
			return toolError(fmt.Errorf("invalid action: %s (expected click, hover, hover_out or clear)", action))
		}

		// The highlight and the layout come from the same snapshot, even if
		// another tool call rebuilt the journey meanwhile.
		l := res.Snapshot.Layout
		view := focusView{
			All:    res.All(),
			Pinned: res.Pinned,
			Nodes:  res.NodeIDs(l.VisibleNodes),
			Edges:  []graph.EdgeKey{},
		}
		for _, e := range l.VisibleEdges {
			if res.EdgeActive(e) {
				view.Edges = append(view.Edges, e.Key())
			}
		}
		return jsonResult(view)
	}
}

func parseTarget(req mcp.CallToolRequest) (focus.Target, error) {
	nodeID := req.GetString("node_id", "")
	from := req.GetString("edge_from", "")
	to := req.GetString("edge_to", "")

	switch {
	case nodeID != "" && (from != "" || to != ""):
		return focus.Target{}, fmt.Errorf("give either node_id or edge_from/edge_to, not both")
	case nodeID != "":
		return focus.NodeTarget(nodeID), nil
	case from != "" && to != "":
		return focus.EdgeTarget(from, to), nil
	case from != "" || to != "":
		return focus.Target{}, fmt.Errorf("edge focus needs both edge_from and edge_to")
	default:
		return focus.Target{}, fmt.Errorf("node_id or edge_from/edge_to is required")
	}
}

// --- export ---

func exportTool() mcp.Tool {
	return mcp.NewTool("journey_export",
		mcp.WithDescription("Export the full journey graph (nodes, edges, events) in the JSON exchange format."),
	)
}

func exportHandler(b *Backend) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if _, err := b.reload(ctx); err != nil {
			return toolError(err)
		}
		var buf bytes.Buffer
		if err := b.Journey.Export(&buf); err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(buf.String()), nil
	}
}

// --- events ---

func eventsTool() mcp.Tool {
	return mcp.NewTool("journey_events",
		mcp.WithDescription("List the journey timeline in chronological order, optionally filtered by actor."),
		mcp.WithString("actor",
			mcp.Description("Only events by this actor"),
			mcp.Enum(string(graph.ActorHuman), string(graph.ActorAgent), string(graph.ActorSystem)),
		),
	)
}

func eventsHandler(b *Backend) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		actor := graph.Actor(req.GetString("actor", ""))
		switch actor {
		case "", graph.ActorHuman, graph.ActorAgent, graph.ActorSystem:
		default:
			return toolError(fmt.Errorf("invalid actor: %s (expected human, agent or system)", actor))
		}

		snap, err := b.reload(ctx)
		if err != nil {
			return toolError(err)
		}

		events := snap.Graph.EventsByActor(actor)
		if len(events) == 0 {
			return mcp.NewToolResultText("No events."), nil
		}

		var sb strings.Builder
		for _, ev := range events {
			fmt.Fprintf(&sb, "%s  %-6s  %-15s  %s  %s\n",
				ev.Timestamp.UTC().Format("2006-01-02 15:04"), ev.Actor, ev.Kind, ev.NodeID, ev.Note)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- helpers ---

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError(fmt.Errorf("encode result: %w", err))
	}
	return mcp.NewToolResultText(string(data)), nil
}

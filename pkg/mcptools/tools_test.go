package mcptools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dan-solli/journeygraph/pkg/journey"
	"github.com/dan-solli/journeygraph/pkg/source"
)

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func ptr(t time.Time) *time.Time { return &t }

func newBackend(t *testing.T) *Backend {
	t.Helper()
	j, err := journey.New(journey.Config{Now: func() time.Time { return base.Add(24 * time.Hour) }})
	require.NoError(t, err)

	return &Backend{
		Journey: j,
		Source: &source.Collections{
			ChatSessions: []source.ChatSession{
				{ID: "s1", Title: "Why does loss spike?", CreatedAt: base, MessageCount: 2},
				{ID: "s2", Title: "Unrelated", CreatedAt: base.Add(time.Minute)},
			},
			RunList: []source.Run{
				{ID: "r1", Name: "baseline", Status: source.RunFailed, Error: "OOM", ChatSessionID: "s1",
					CreatedAt: base.Add(time.Hour), StartedAt: ptr(base.Add(time.Hour)), StoppedAt: ptr(base.Add(2 * time.Hour))},
			},
			ChartList: []source.Chart{
				{ID: "c1", Title: "Loss", Description: "run_id: r1", Type: "line", Source: "manual", CreatedAt: base.Add(3 * time.Hour)},
			},
			History: map[string][]source.Message{
				"s1": {
					{Role: source.RoleUser, Content: "loss spikes", Timestamp: base.Add(time.Minute)},
					{Role: source.RoleAssistant, Content: "lower the lr", Timestamp: base.Add(2 * time.Minute)},
				},
			},
		},
	}
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args

	res, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)

	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text, res.IsError
}

func TestSummaryTool(t *testing.T) {
	b := newBackend(t)

	out, isErr := call(t, summaryHandler(b), nil)
	require.False(t, isErr, out)

	var view summaryView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, 1, view.ExperimentCount)
	require.Len(t, view.FailurePaths, 1)
	assert.Equal(t, "run:r1", view.FailurePaths[0].ID)
	assert.Equal(t, "OOM", view.FailurePaths[0].WhyStopped)
	assert.NotEmpty(t, view.Reflections)
	assert.Empty(t, view.Warning)
}

func TestLayoutTool(t *testing.T) {
	b := newBackend(t)

	out, isErr := call(t, layoutHandler(b), nil)
	require.False(t, isErr, out)

	var view layoutView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Len(t, view.Nodes, 4)
	assert.Len(t, view.Edges, 2)
	assert.Equal(t, 2, view.Depths["chart:c1"])
	assert.Equal(t, 22*2+3*260, view.Width)
}

func TestFocusTool(t *testing.T) {
	b := newBackend(t)
	handler := focusHandler(b)

	out, isErr := call(t, handler, map[string]any{"node_id": "chart:c1"})
	require.False(t, isErr, out)

	var view focusView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.False(t, view.All)
	assert.True(t, view.Pinned)
	assert.Equal(t, []string{"chat:s1", "run:r1", "chart:c1"}, view.Nodes)
	assert.Len(t, view.Edges, 2)

	// Clicking the pinned node again unpins it.
	out, _ = call(t, handler, map[string]any{"node_id": "chart:c1"})
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.True(t, view.All)
	assert.False(t, view.Pinned)

	out, _ = call(t, handler, map[string]any{"action": "hover", "edge_from": "chat:s1", "edge_to": "run:r1"})
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Len(t, view.Nodes, 3)

	out, _ = call(t, handler, map[string]any{"action": "clear"})
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.True(t, view.All)
}

func TestFocusTool_BadArguments(t *testing.T) {
	b := newBackend(t)
	handler := focusHandler(b)

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"no target", map[string]any{}, "required"},
		{"half edge", map[string]any{"edge_from": "chat:s1"}, "both"},
		{"node and edge", map[string]any{"node_id": "a", "edge_from": "b", "edge_to": "c"}, "not both"},
		{"unknown action", map[string]any{"action": "poke", "node_id": "a"}, "invalid action"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, isErr := call(t, handler, tt.args)
			assert.True(t, isErr)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestExportTool(t *testing.T) {
	b := newBackend(t)

	out, isErr := call(t, exportHandler(b), nil)
	require.False(t, isErr, out)

	var payload struct {
		Nodes []map[string]any `json:"nodes"`
		Edges []map[string]any `json:"edges"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Len(t, payload.Nodes, 4)
	assert.Len(t, payload.Edges, 2)
}

func TestEventsTool(t *testing.T) {
	b := newBackend(t)

	out, isErr := call(t, eventsHandler(b), map[string]any{"actor": "agent"})
	require.False(t, isErr, out)
	assert.Contains(t, out, "lower the lr")
	assert.NotContains(t, out, "loss spikes")

	all, _ := call(t, eventsHandler(b), nil)
	assert.Contains(t, all, "chat_started")
	assert.Contains(t, all, "run_failed")
	lines := strings.Split(strings.TrimSpace(all), "\n")
	assert.True(t, strings.Contains(lines[0], "chat_started"))

	out, isErr = call(t, eventsHandler(b), map[string]any{"actor": "robot"})
	assert.True(t, isErr)
	assert.Contains(t, out, "invalid actor")
}

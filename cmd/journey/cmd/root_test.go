package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snapshotJSON = `{
	"sessions": [
		{"id": "s1", "title": "Why does loss spike?", "createdAt": "2026-03-01T09:00:00Z", "messageCount": 2},
		{"id": "s9", "title": "Scratch", "createdAt": "2026-03-01T10:00:00Z", "messageCount": 0}
	],
	"runs": [
		{"id": "run-42", "name": "baseline", "status": "failed", "command": "make train", "error": "CUDA OOM",
		 "chatSessionId": "s1", "createdAt": "2026-03-01T09:10:00Z",
		 "startedAt": "2026-03-01T09:11:00Z", "stoppedAt": "2026-03-01T09:41:00Z"},
		{"id": "idle", "name": "never", "status": "ready", "command": "make", "createdAt": "2026-03-01T09:00:00Z"}
	],
	"charts": [
		{"id": "c1", "title": "Loss", "description": "run_id: run-42 summary", "type": "line", "source": "chat", "createdAt": "2026-03-01T11:00:00Z"},
		{"id": "c2", "title": "Notes", "type": "bar", "source": "chat", "createdAt": "2026-03-01T12:00:00Z"}
	],
	"messages": {
		"s1": [
			{"role": "user", "content": "loss spikes at 4k steps", "timestamp": "2026-03-01T09:01:00Z"},
			{"role": "assistant", "content": "try warmup", "timestamp": "2026-03-01T09:02:00Z"}
		]
	}
}`

func writeSnapshot(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte(snapshotJSON), 0o644))
	return path
}

// execute runs the root command with fresh flag state.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	dbPath = filepath.Join(t.TempDir(), "journey.db")
	collectionsPath, currentSession, traceFile = "", "", ""
	logLevel = "error"
	focusEdge, eventsActor, graphOutput = "", "", ""

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestLayoutCommand(t *testing.T) {
	snap := writeSnapshot(t)

	out, _, err := execute(t, "layout", "-c", snap, "-s", "s9")
	require.NoError(t, err)

	assert.Contains(t, out, "5 of 5 nodes visible")
	assert.Contains(t, out, "depth 2")
	assert.Contains(t, out, "run:run-42 --> chart:c1")
	assert.Contains(t, out, "chat:s9 - > chart:c2")
	assert.NotContains(t, out, "run:idle")
}

func TestSummaryCommand(t *testing.T) {
	out, _, err := execute(t, "summary", "-c", writeSnapshot(t))
	require.NoError(t, err)

	assert.Contains(t, out, "experiments 1")
	assert.Contains(t, out, "run:run-42  CUDA OOM")
	assert.Contains(t, out, "Address the failure cause first: CUDA OOM")
}

func TestFocusCommand(t *testing.T) {
	snap := writeSnapshot(t)

	out, _, err := execute(t, "focus", "chart:c1", "-c", snap, "-s", "s9")
	require.NoError(t, err)
	assert.Contains(t, out, "chat:s1")
	assert.Contains(t, out, "run:run-42 -> chart:c1  [informs, explicit]")
	assert.NotContains(t, out, "chat:s9")

	out, _, err = execute(t, "focus", "--edge", "chat:s9,chart:c2", "-c", snap, "-s", "s9")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 3)

	_, _, err = execute(t, "focus", "-c", snap)
	assert.Error(t, err)

	_, _, err = execute(t, "focus", "--edge", "chat:s9", "-c", snap)
	assert.Error(t, err)
}

func TestEventsCommand(t *testing.T) {
	snap := writeSnapshot(t)

	out, _, err := execute(t, "events", "--actor", "human", "-c", snap)
	require.NoError(t, err)
	assert.Contains(t, out, "loss spikes at 4k steps")
	assert.NotContains(t, out, "try warmup")

	_, _, err = execute(t, "events", "--actor", "robot", "-c", snap)
	assert.Error(t, err)
}

func TestGraphImportRoundTrip(t *testing.T) {
	snap := writeSnapshot(t)
	exported := filepath.Join(t.TempDir(), "journey.json")

	_, _, err := execute(t, "graph", "-c", snap, "-o", exported)
	require.NoError(t, err)

	out, _, err := execute(t, "import", exported)
	require.NoError(t, err)
	assert.Contains(t, out, "5 of 5 nodes visible")

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"nodes": [{"id": 1}]}`), 0o644))
	_, _, err = execute(t, "import", bad)
	assert.Error(t, err)
}

func TestSeedThenReadFromDatabase(t *testing.T) {
	snap := writeSnapshot(t)
	db := filepath.Join(t.TempDir(), "seeded.db")

	out, _, err := execute(t, "seed", snap, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "seeded 2 sessions, 2 runs, 2 charts")

	out, _, err = execute(t, "events", "--actor", "agent", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "try warmup")
	assert.Contains(t, out, "Run created: baseline (make train)")
}

func TestMissingHistoryWarns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	trimmed := strings.Replace(snapshotJSON, `"messageCount": 0`, `"messageCount": 3`, 1)
	require.NoError(t, os.WriteFile(path, []byte(trimmed), 0o644))

	_, errOut, err := execute(t, "summary", "-c", path)
	require.NoError(t, err)
	assert.Contains(t, errOut, "could not load message history for 1 session(s)")
}

func TestTraceFile(t *testing.T) {
	snap := writeSnapshot(t)

	dir := t.TempDir()
	tracePath := filepath.Join(dir, "traces.jsonl")
	_, _, err := execute(t, "summary", "-c", snap, "--trace-file", tracePath)
	require.NoError(t, err)

	data, err := os.ReadFile(tracePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"operation":"rebuild"`)
}

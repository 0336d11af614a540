// Package synth turns chat sessions, runs and charts into one journey graph.
package synth

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/dan-solli/journeygraph/pkg/graph"
	"github.com/dan-solli/journeygraph/pkg/provenance"
	"github.com/dan-solli/journeygraph/pkg/source"
)

const (
	// DefaultMessageEventLimit bounds message events per session (most recent kept).
	DefaultMessageEventLimit = 40
	// DefaultNoteLimit bounds event note length in runes.
	DefaultNoteLimit = 180

	// EmptyNodeID names the informational node of an empty journey.
	EmptyNodeID = "journey:empty"
	// EmptyTag marks the informational empty-state node.
	EmptyTag = "empty"
)

// Input is everything a synthesis depends on.
type Input struct {
	Sessions []source.ChatSession
	Runs     []source.Run
	Charts   []source.Chart
	// Messages maps session id to its loaded history; may be partial.
	Messages map[string][]source.Message
	// CurrentSessionID is the session open in the dashboard, if any.
	CurrentSessionID string
}

// Options tunes synthesis. Zero values use defaults.
type Options struct {
	Linker            provenance.Linker
	Now               func() time.Time
	MessageEventLimit int
	NoteLimit         int
}

// ApplyDefaults fills in zero-valued options.
func ApplyDefaults(opts *Options) {
	if opts.Linker == nil {
		opts.Linker = provenance.NewTextLinker()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MessageEventLimit <= 0 {
		opts.MessageEventLimit = DefaultMessageEventLimit
	}
	if opts.NoteLimit <= 0 {
		opts.NoteLimit = DefaultNoteLimit
	}
}

// Synthesize builds the journey graph. It is a pure function of in and the
// clock in opts; identical inputs yield identical graphs.
func Synthesize(in Input, opts Options) *graph.Graph {
	ApplyDefaults(&opts)

	b := &builder{
		opts:    opts,
		nodeIDs: make(map[string]bool),
		g: &graph.Graph{
			Nodes:  []*graph.Node{},
			Edges:  []graph.Edge{},
			Events: []graph.Event{},
		},
	}

	if len(in.Sessions) == 0 && len(in.Runs) == 0 && len(in.Charts) == 0 {
		b.addNode(emptyNode(opts.Now()))
		return b.g
	}

	known := provenance.Known{
		RunIDs:           make(map[string]bool),
		SessionIDs:       make(map[string]bool),
		NodeIDs:          b.nodeIDs,
		CurrentSessionID: in.CurrentSessionID,
	}

	for _, s := range sortedSessions(in.Sessions) {
		b.addSession(s, in.Messages)
		known.SessionIDs[s.ID] = true
	}

	// Parent runs may appear later in the list, so resolve membership first.
	for i := range in.Runs {
		if HasExecutionEvidence(&in.Runs[i]) {
			known.RunIDs[in.Runs[i].ID] = true
		}
	}
	for i := range in.Runs {
		r := &in.Runs[i]
		if !known.RunIDs[r.ID] {
			continue
		}
		b.addRun(r, known)
	}

	for _, c := range in.Charts {
		b.addChart(c, known)
	}

	sort.SliceStable(b.g.Events, func(i, j int) bool {
		return b.g.Events[i].Timestamp.Before(b.g.Events[j].Timestamp)
	})

	return b.g
}

type builder struct {
	opts    Options
	g       *graph.Graph
	nodeIDs map[string]bool
}

func (b *builder) addNode(n *graph.Node) {
	b.g.Nodes = append(b.g.Nodes, n)
	b.nodeIDs[n.ID] = true
}

func (b *builder) addEdge(from, to string, rel graph.Relation, method graph.LinkMethod) {
	b.g.Edges = append(b.g.Edges, graph.Edge{From: from, To: to, Relation: rel, LinkMethod: method})
}

func (b *builder) addEvent(ev graph.Event) {
	ev.Note = Truncate(ev.Note, b.opts.NoteLimit)
	b.g.Events = append(b.g.Events, ev)
}

func (b *builder) addSession(s source.ChatSession, history map[string][]source.Message) {
	id := graph.ChatNodeID(s.ID)
	if b.nodeIDs[id] {
		return
	}

	msgs, loaded := history[s.ID]
	count := s.MessageCount
	if loaded {
		count = len(msgs)
	}
	if count < 0 {
		count = 0
	}

	status := graph.StatusActive
	if count > 0 {
		status = graph.StatusCompleted
	}

	b.addNode(&graph.Node{
		ID:              id,
		Kind:            graph.KindQuestion,
		Title:           orDefault(s.Title, "Untitled chat"),
		CreatedAt:       s.CreatedAt,
		Status:          status,
		EffortMinutes:   math.Max(2, float64(count*2)),
		Confidence:      math.Min(0.85, 0.35+float64(count)*0.02),
		InformationGain: math.Min(1, float64(count)/20),
		ParentIDs:       []string{},
		Tags:            []string{"chat"},
		SourceRef:       &graph.SourceRef{Collection: "chat", ID: s.ID},
	})

	b.addEvent(graph.Event{
		ID:        id + ":started",
		Timestamp: s.CreatedAt,
		NodeID:    id,
		Actor:     graph.ActorHuman,
		Kind:      graph.EventChatStarted,
		Note:      "Chat started: " + orDefault(s.Title, "Untitled chat"),
	})

	ordered := make([]source.Message, len(msgs))
	copy(ordered, msgs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})
	offset := 0
	if len(ordered) > b.opts.MessageEventLimit {
		offset = len(ordered) - b.opts.MessageEventLimit
	}
	for i, m := range ordered[offset:] {
		actor, kind := graph.ActorAgent, graph.EventAssistantReply
		if m.Role == source.RoleUser {
			actor, kind = graph.ActorHuman, graph.EventUserMessage
		}
		ts := m.Timestamp
		if ts.IsZero() {
			ts = s.CreatedAt
		}
		b.addEvent(graph.Event{
			ID:        fmt.Sprintf("%s:msg:%d", id, offset+i),
			Timestamp: ts,
			NodeID:    id,
			Actor:     actor,
			Kind:      kind,
			Note:      m.Content,
		})
	}
}

func (b *builder) addRun(r *source.Run, known provenance.Known) {
	id := graph.RunNodeID(r.ID)
	if b.nodeIDs[id] {
		return
	}
	status := RunNodeStatus(r.Status)
	confidence, gain := runScores(status)

	n := &graph.Node{
		ID:              id,
		Kind:            graph.KindExperiment,
		Title:           r.DisplayName(),
		CreatedAt:       r.CreatedAt,
		Status:          status,
		EffortMinutes:   runEffortMinutes(r, b.opts.Now()),
		Confidence:      confidence,
		InformationGain: gain,
		ParentIDs:       []string{},
		Tags:            runTags(r),
		SourceRef:       &graph.SourceRef{Collection: "run", ID: r.ID},
	}
	if status == graph.StatusFailed {
		n.WhyStopped = r.Error
	}

	if r.ChatSessionID != "" && known.SessionIDs[r.ChatSessionID] {
		parent := graph.ChatNodeID(r.ChatSessionID)
		n.ParentIDs = append(n.ParentIDs, parent)
		b.addEdge(parent, id, graph.RelTests, graph.LinkExplicit)
	}
	if r.ParentRunID != "" && r.ParentRunID != r.ID && known.RunIDs[r.ParentRunID] {
		parent := graph.RunNodeID(r.ParentRunID)
		n.ParentIDs = append(n.ParentIDs, parent)
		b.addEdge(parent, id, graph.RelDerivedFrom, graph.LinkExplicit)
	}
	b.addNode(n)

	runEvent := func(suffix string, kind graph.EventKind, ts time.Time, actor graph.Actor, note string) {
		b.addEvent(graph.Event{
			ID:          id + ":" + suffix,
			Timestamp:   ts,
			NodeID:      id,
			Actor:       actor,
			Kind:        kind,
			Note:        note,
			RunStatus:   r.Status,
			RunProgress: r.Progress,
		})
	}

	created := "Run created: " + r.DisplayName()
	if r.Command != "" {
		created += " (" + r.Command + ")"
	}
	runEvent("created", graph.EventRunCreated, r.CreatedAt, graph.ActorAgent, created)
	if r.QueuedAt != nil {
		runEvent("queued", graph.EventRunQueued, *r.QueuedAt, graph.ActorSystem, "Run queued")
	}
	if r.LaunchedAt != nil {
		runEvent("launched", graph.EventRunLaunched, *r.LaunchedAt, graph.ActorSystem, "Run launched")
	}
	if r.StartedAt != nil {
		runEvent("running", graph.EventRunRunning, *r.StartedAt, graph.ActorSystem, "Run started")
	}
	if end := firstTime(r.EndTime, r.StoppedAt); end != nil {
		kind, note := graph.EventRunCompleted, "Run completed"
		switch r.Status {
		case source.RunFailed:
			kind, note = graph.EventRunFailed, "Run failed"
			if r.Error != "" {
				note += ": " + r.Error
			}
		case source.RunCanceled:
			kind, note = graph.EventRunCanceled, "Run canceled"
		}
		runEvent("ended", kind, *end, graph.ActorSystem, note)
	}
}

func (b *builder) addChart(c source.Chart, known provenance.Known) {
	id := graph.ChartNodeID(c.ID)
	if b.nodeIDs[id] {
		return
	}
	att := b.opts.Linker.Link(provenance.Subject{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Source:      c.Source,
	}, known)

	n := &graph.Node{
		ID:              id,
		Kind:            graph.KindResult,
		Title:           orDefault(c.Title, "Untitled chart"),
		CreatedAt:       c.CreatedAt,
		Status:          graph.StatusCompleted,
		EffortMinutes:   5,
		CostUSD:         0,
		Confidence:      0.6,
		InformationGain: 0.55,
		ParentIDs:       []string{},
		Tags:            nonEmpty("chart", c.Type),
		SourceRef:       &graph.SourceRef{Collection: "chart", ID: c.ID},
	}
	if att.Attached() && att.ParentID != id {
		n.ParentIDs = append(n.ParentIDs, att.ParentID)
		b.addEdge(att.ParentID, id, att.Relation, att.Method)
	}
	b.addNode(n)

	b.addEvent(graph.Event{
		ID:        id + ":created",
		Timestamp: c.CreatedAt,
		NodeID:    id,
		Actor:     chartActor(c.Source),
		Kind:      graph.EventChartCreated,
		Note:      fmt.Sprintf("Chart created: %s (link: %s)", orDefault(c.Title, "Untitled chart"), att.Tier),
	})
}

// HasExecutionEvidence reports whether a run ever actually ran. Runs without
// evidence carry no journey information and are left out entirely.
func HasExecutionEvidence(r *source.Run) bool {
	if r.LaunchedAt != nil || r.StartedAt != nil || r.EndTime != nil || r.StoppedAt != nil {
		return true
	}
	if r.Progress != nil && *r.Progress > 0 {
		return true
	}
	switch r.Status {
	case source.RunRunning, source.RunCompleted, source.RunFailed, source.RunCanceled:
		return true
	}
	return false
}

// RunNodeStatus maps a run status onto a node status.
func RunNodeStatus(status string) graph.NodeStatus {
	switch status {
	case source.RunCompleted:
		return graph.StatusCompleted
	case source.RunFailed:
		return graph.StatusFailed
	case source.RunRunning:
		return graph.StatusActive
	case source.RunQueued, source.RunReady:
		return graph.StatusBlocked
	case source.RunCanceled:
		return graph.StatusArchived
	default:
		return graph.StatusActive
	}
}

func runScores(status graph.NodeStatus) (confidence, gain float64) {
	switch status {
	case graph.StatusCompleted:
		return 0.75, 0.80
	case graph.StatusFailed:
		return 0.35, 0.25
	default:
		return 0.50, 0.45
	}
}

func runEffortMinutes(r *source.Run, now time.Time) float64 {
	start := r.CreatedAt
	if s := firstTime(r.StartedAt, r.LaunchedAt); s != nil {
		start = *s
	}
	end := now
	if e := firstTime(r.EndTime, r.StoppedAt); e != nil {
		end = *e
	}
	if start.IsZero() {
		return 0
	}
	return math.Max(0, math.Round(end.Sub(start).Minutes()))
}

func runTags(r *source.Run) []string {
	return nonEmpty("run", r.Status)
}

func chartActor(src string) graph.Actor {
	if strings.Contains(strings.ToLower(src), "chat") {
		return graph.ActorAgent
	}
	return graph.ActorHuman
}

func emptyNode(now time.Time) *graph.Node {
	return &graph.Node{
		ID:              EmptyNodeID,
		Kind:            graph.KindQuestion,
		Title:           "No journey yet",
		CreatedAt:       now,
		Status:          graph.StatusActive,
		EffortMinutes:   0,
		Confidence:      0,
		InformationGain: 0,
		ParentIDs:       []string{},
		Tags:            []string{EmptyTag},
	}
}

func sortedSessions(sessions []source.ChatSession) []source.ChatSession {
	out := make([]source.ChatSession, len(sessions))
	copy(out, sessions)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func firstTime(ts ...*time.Time) *time.Time {
	for _, t := range ts {
		if t != nil && !t.IsZero() {
			return t
		}
	}
	return nil
}

// Truncate shortens s to at most limit runes, marking the cut with "…".
func Truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

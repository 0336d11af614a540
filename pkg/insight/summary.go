// Package insight folds a journey graph into read-only rollups.
package insight

import (
	"fmt"
	"math"
	"sort"

	"github.com/dan-solli/journeygraph/pkg/graph"
	"github.com/dan-solli/journeygraph/pkg/synth"
)

// HotspotCount is how many low-efficiency nodes are reported.
const HotspotCount = 4

// EmptyReflections are the placeholder reflections of an empty journey.
var EmptyReflections = []string{
	"Start a chat session to frame the first research question.",
	"Launch a run to turn a question into an experiment.",
	"Save a chart to capture what a run produced.",
}

// Summary is the derived view of a journey.
type Summary struct {
	TotalEffort     float64       `json:"totalEffort"`
	TotalCost       float64       `json:"totalCost"`
	ExperimentCount int           `json:"experimentCount"`
	Hotspots        []*graph.Node `json:"hotspots"`
	FailurePaths    []*graph.Node `json:"failurePaths"`
	Reflections     []string      `json:"reflections"`
}

// Efficiency is information gained per unit of spend. Cost is weighted so a
// dollar counts like 40 minutes of effort.
func Efficiency(n *graph.Node) float64 {
	return n.InformationGain / math.Max(1, n.EffortMinutes+n.CostUSD*40)
}

// Summarize computes the rollups of g. It is deterministic.
func Summarize(g *graph.Graph) Summary {
	s := Summary{
		Hotspots:     []*graph.Node{},
		FailurePaths: []*graph.Node{},
	}

	if isEmptyState(g) {
		s.Reflections = append([]string{}, EmptyReflections...)
		return s
	}

	var sessions, charts int
	for _, n := range g.Nodes {
		s.TotalEffort += n.EffortMinutes
		s.TotalCost += n.CostUSD
		switch n.Kind {
		case graph.KindExperiment:
			s.ExperimentCount++
		case graph.KindQuestion:
			sessions++
		case graph.KindResult:
			charts++
		}
		if n.Status == graph.StatusFailed {
			s.FailurePaths = append(s.FailurePaths, n)
		}
	}

	ranked := make([]*graph.Node, len(g.Nodes))
	copy(ranked, g.Nodes)
	sort.SliceStable(ranked, func(i, j int) bool {
		return Efficiency(ranked[i]) < Efficiency(ranked[j])
	})
	if len(ranked) > HotspotCount {
		ranked = ranked[:HotspotCount]
	}
	s.Hotspots = ranked

	sort.SliceStable(s.FailurePaths, func(i, j int) bool {
		return s.FailurePaths[i].EffortMinutes > s.FailurePaths[j].EffortMinutes
	})

	s.Reflections = nextActions(s, sessions, charts)
	return s
}

func nextActions(s Summary, sessions, charts int) []string {
	var out []string

	if n := len(s.FailurePaths); n > 0 {
		worst := s.FailurePaths[0]
		out = append(out, fmt.Sprintf("Review %d failed run(s) before relaunching; start with %q.", n, worst.Title))
		if worst.WhyStopped != "" {
			out = append(out, fmt.Sprintf("Address the failure cause first: %s", synth.Truncate(worst.WhyStopped, 120)))
		}
	}
	if sessions == 0 {
		out = append(out, "Open a chat session to capture the question behind these runs.")
	}
	if s.ExperimentCount == 0 && sessions > 0 {
		out = append(out, "Turn an open question into a run to test it.")
	}
	if charts == 0 && s.ExperimentCount > 0 {
		out = append(out, "Chart results from completed runs so findings are not lost.")
	}
	if len(out) == 0 {
		out = append(out, "Branch the next experiment from the highest-information result.")
	}
	return out
}

func isEmptyState(g *graph.Graph) bool {
	if len(g.Nodes) == 0 {
		return true
	}
	return len(g.Nodes) == 1 && g.Nodes[0].ID == synth.EmptyNodeID && g.Nodes[0].HasTag(synth.EmptyTag)
}

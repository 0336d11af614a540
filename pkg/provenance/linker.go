// Package provenance resolves free-text records to the run or chat session
// they were produced from.
package provenance

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/dan-solli/journeygraph/pkg/graph"
)

// Tier names the rule that produced an attachment.
type Tier string

const (
	TierStructured Tier = "structured"
	TierText       Tier = "text"
	TierInferred   Tier = "inferred"
	TierNone       Tier = "none"
)

// Subject is the record being attached.
type Subject struct {
	ID          string
	Title       string
	Description string
	// Source is the declared origin tag, e.g. "chat" or "run".
	Source string
	// ParentRef is a structured parent node id. Charts never carry one today.
	ParentRef string
}

// Known describes the entities a subject may attach to.
type Known struct {
	// RunIDs and SessionIDs hold raw collaborator ids that have a node.
	RunIDs     map[string]bool
	SessionIDs map[string]bool
	// NodeIDs holds every synthesized node id, for structured references.
	NodeIDs map[string]bool
	// CurrentSessionID is the session open in the dashboard, if any.
	CurrentSessionID string
}

// Attachment is the resolved parent of a subject.
type Attachment struct {
	ParentID string
	Relation graph.Relation
	Method   graph.LinkMethod
	Tier     Tier
}

// Attached reports whether a parent was found.
func (a Attachment) Attached() bool {
	return a.Tier != TierNone && a.ParentID != ""
}

// Linker resolves a subject to a candidate parent node.
type Linker interface {
	Link(subject Subject, known Known) Attachment
}

var (
	runRefPattern     = regexp.MustCompile(`(?i)run[_-]?id?[:=#-]?\s*(\S+)`)
	sessionRefPattern = regexp.MustCompile(`(?i)(?:session|chat)[_-]?id?[:=#-]?\s*(\S+)`)
)

// TextLinker applies, in strict order: structured reference, explicit textual
// reference, inferred current-session reference, none.
type TextLinker struct{}

// NewTextLinker returns the default linker.
func NewTextLinker() *TextLinker {
	return &TextLinker{}
}

var _ Linker = (*TextLinker)(nil)

// Link implements Linker.
func (l *TextLinker) Link(subject Subject, known Known) Attachment {
	if ref := strings.TrimSpace(subject.ParentRef); ref != "" && known.NodeIDs[ref] {
		return Attachment{
			ParentID: ref,
			Relation: graph.RelInforms,
			Method:   graph.LinkExplicit,
			Tier:     TierStructured,
		}
	}

	text := strings.Join([]string{subject.ID, subject.Title, subject.Description}, " ")

	if id, ok := matchToken(runRefPattern, text, known.RunIDs); ok {
		return Attachment{
			ParentID: graph.RunNodeID(id),
			Relation: graph.RelInforms,
			Method:   graph.LinkExplicit,
			Tier:     TierText,
		}
	}
	if id, ok := matchToken(sessionRefPattern, text, known.SessionIDs); ok {
		return Attachment{
			ParentID: graph.ChatNodeID(id),
			Relation: graph.RelInforms,
			Method:   graph.LinkExplicit,
			Tier:     TierText,
		}
	}

	if isChatSource(subject.Source) && known.CurrentSessionID != "" && known.SessionIDs[known.CurrentSessionID] {
		return Attachment{
			ParentID: graph.ChatNodeID(known.CurrentSessionID),
			Relation: graph.RelInforms,
			Method:   graph.LinkInferred,
			Tier:     TierInferred,
		}
	}

	return Attachment{Tier: TierNone}
}

// matchToken returns the first reference token in text that names a known id.
func matchToken(pattern *regexp.Regexp, text string, ids map[string]bool) (string, bool) {
	for _, m := range pattern.FindAllStringSubmatch(text, -1) {
		token := CleanToken(m[len(m)-1])
		if token != "" && ids[token] {
			return token, true
		}
	}
	return "", false
}

// CleanToken strips leading and trailing punctuation from a reference token.
func CleanToken(token string) string {
	return strings.TrimFunc(token, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
}

func isChatSource(source string) bool {
	return strings.Contains(strings.ToLower(source), "chat")
}

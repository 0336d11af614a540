package provenance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dan-solli/journeygraph/pkg/graph"
)

func known() Known {
	return Known{
		RunIDs:     map[string]bool{"run-42": true, "abc123": true},
		SessionIDs: map[string]bool{"s9": true, "s1": true},
		NodeIDs: map[string]bool{
			"run:run-42": true, "run:abc123": true,
			"chat:s9": true, "chat:s1": true,
		},
		CurrentSessionID: "s9",
	}
}

func TestLink_TextReferenceBeatsCurrentSession(t *testing.T) {
	l := NewTextLinker()

	att := l.Link(Subject{
		ID:          "c1",
		Description: "run_id: run-42 summary",
		Source:      "chat",
	}, known())

	assert.Equal(t, Attachment{
		ParentID: "run:run-42",
		Relation: graph.RelInforms,
		Method:   graph.LinkExplicit,
		Tier:     TierText,
	}, att)
}

func TestLink_StructuredReferenceWins(t *testing.T) {
	l := NewTextLinker()

	att := l.Link(Subject{
		ID:          "c1",
		Description: "run_id: run-42",
		Source:      "chat",
		ParentRef:   "chat:s1",
	}, known())

	assert.Equal(t, "chat:s1", att.ParentID)
	assert.Equal(t, TierStructured, att.Tier)
	assert.Equal(t, graph.LinkExplicit, att.Method)
}

func TestLink_UnknownStructuredReferenceFallsThrough(t *testing.T) {
	att := NewTextLinker().Link(Subject{
		ID:          "c1",
		Description: "runid=abc123",
		ParentRef:   "run:gone",
	}, known())

	assert.Equal(t, "run:abc123", att.ParentID)
	assert.Equal(t, TierText, att.Tier)
}

func TestLink_TextPatterns(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		parent string
	}{
		{"run id colon", "from run_id: run-42", "run:run-42"},
		{"run id hash", "RUNID#abc123.", "run:abc123"},
		{"run dash id", "see run-id=(abc123)", "run:abc123"},
		{"session id", "session_id: s1", "chat:s1"},
		{"chat id", "chatid=s9,", "chat:s9"},
		{"second match resolves", "run_id: nope then run_id: run-42", "run:run-42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			att := NewTextLinker().Link(Subject{ID: "c1", Title: tt.text}, known())
			assert.Equal(t, tt.parent, att.ParentID)
			assert.Equal(t, graph.LinkExplicit, att.Method)
		})
	}
}

func TestLink_RunPatternCheckedBeforeSession(t *testing.T) {
	att := NewTextLinker().Link(Subject{
		ID:          "c1",
		Description: "session_id: s1 run_id: run-42",
	}, known())

	assert.Equal(t, "run:run-42", att.ParentID)
}

func TestLink_UnknownTextReferenceFallsThrough(t *testing.T) {
	att := NewTextLinker().Link(Subject{
		ID:          "c1",
		Description: "run_id: run-999",
		Source:      "Chat assistant",
	}, known())

	assert.Equal(t, Attachment{
		ParentID: "chat:s9",
		Relation: graph.RelInforms,
		Method:   graph.LinkInferred,
		Tier:     TierInferred,
	}, att)
}

func TestLink_NoAttachment(t *testing.T) {
	tests := []struct {
		name    string
		subject Subject
		known   Known
	}{
		{"not chat source", Subject{ID: "c1", Source: "run"}, known()},
		{"no current session", Subject{ID: "c1", Source: "chat"}, func() Known {
			k := known()
			k.CurrentSessionID = ""
			return k
		}()},
		{"current session without node", Subject{ID: "c1", Source: "chat"}, func() Known {
			k := known()
			k.CurrentSessionID = "s-unsynthesized"
			return k
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			att := NewTextLinker().Link(tt.subject, tt.known)
			assert.False(t, att.Attached())
			assert.Equal(t, TierNone, att.Tier)
		})
	}
}

func TestCleanToken(t *testing.T) {
	assert.Equal(t, "run-42", CleanToken("(run-42),"))
	assert.Equal(t, "abc", CleanToken("\"abc\"."))
	assert.Equal(t, "", CleanToken("..."))
}

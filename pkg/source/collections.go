package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Collections is an offline snapshot of all three collections plus any
// message histories captured with it.
type Collections struct {
	ChatSessions []ChatSession        `json:"sessions"`
	RunList      []Run                `json:"runs"`
	ChartList    []Chart              `json:"charts"`
	History      map[string][]Message `json:"messages,omitempty"`
}

var _ Source = (*Collections)(nil)

// ReadCollections decodes a snapshot from r.
func ReadCollections(r io.Reader) (*Collections, error) {
	var c Collections
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("decode collections: %w", err)
	}
	return &c, nil
}

// LoadCollections reads a snapshot file.
func LoadCollections(path string) (*Collections, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open collections: %w", err)
	}
	defer f.Close()
	return ReadCollections(f)
}

func (c *Collections) Sessions(ctx context.Context) ([]ChatSession, error) {
	return c.ChatSessions, nil
}

func (c *Collections) Runs(ctx context.Context) ([]Run, error) {
	return c.RunList, nil
}

func (c *Collections) Charts(ctx context.Context) ([]Chart, error) {
	return c.ChartList, nil
}

// Messages returns the captured history, or ErrNoHistory when the snapshot
// holds none for the session.
func (c *Collections) Messages(ctx context.Context, sessionID string) ([]Message, error) {
	msgs, ok := c.History[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrNoHistory)
	}
	return msgs, nil
}

// Package source defines the collaborator records the journey is built from
// and adapters that load them.
package source

import (
	"context"
	"time"
)

// Message roles as reported by the chat store.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Run statuses as reported by the run store.
const (
	RunReady     = "ready"
	RunQueued    = "queued"
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
	RunCanceled  = "canceled"
)

// ChatSession is a chat session header.
type ChatSession struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"createdAt"`
	MessageCount int       `json:"messageCount"`
}

// Message is one chat message.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Run is an experiment run. Lifecycle timestamps are nil until reached.
type Run struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Alias         string     `json:"alias,omitempty"`
	Status        string     `json:"status"`
	Command       string     `json:"command"`
	Error         string     `json:"error,omitempty"`
	ChatSessionID string     `json:"chatSessionId,omitempty"`
	ParentRunID   string     `json:"parentRunId,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	QueuedAt      *time.Time `json:"queuedAt,omitempty"`
	LaunchedAt    *time.Time `json:"launchedAt,omitempty"`
	StartedAt     *time.Time `json:"startedAt,omitempty"`
	EndTime       *time.Time `json:"endTime,omitempty"`
	StoppedAt     *time.Time `json:"stoppedAt,omitempty"`
	Progress      *float64   `json:"progress,omitempty"`
}

// DisplayName prefers the alias, then the name, then the id.
func (r *Run) DisplayName() string {
	switch {
	case r.Alias != "":
		return r.Alias
	case r.Name != "":
		return r.Name
	default:
		return r.ID
	}
}

// Chart is a saved chart. Provenance lives only in its free text.
type Chart struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Type        string    `json:"type"`
	Source      string    `json:"source"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Source loads the three collections and per-session message histories.
// Implementations return records in store order; callers must not assume
// any sorting.
type Source interface {
	Sessions(ctx context.Context) ([]ChatSession, error)
	Runs(ctx context.Context) ([]Run, error)
	Charts(ctx context.Context) ([]Chart, error)
	Messages(ctx context.Context, sessionID string) ([]Message, error)
}

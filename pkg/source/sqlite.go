package source

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteSource reads the collaborator collections from a SQLite database.
type SQLiteSource struct {
	db *sql.DB
}

var _ Source = (*SQLiteSource)(nil)

// NewSQLiteSource opens the database at dbPath (a file path or ":memory:")
// and creates the schema if it doesn't exist.
func NewSQLiteSource(dbPath string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// :memory: databases are per-connection.
	db.SetMaxOpenConns(1)

	s := &SQLiteSource{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteSource) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS chat_sessions (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		message_count INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS chat_messages (
		session_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		created_at DATETIME,
		PRIMARY KEY (session_id, seq)
	);

	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		alias TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT '',
		command TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT '',
		chat_session_id TEXT NOT NULL DEFAULT '',
		parent_run_id TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		queued_at DATETIME,
		launched_at DATETIME,
		started_at DATETIME,
		end_time DATETIME,
		stopped_at DATETIME,
		progress REAL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_session ON runs(chat_session_id);

	CREATE TABLE IF NOT EXISTS charts (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		type TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// DB exposes the underlying handle, mainly for tests.
func (s *SQLiteSource) DB() *sql.DB {
	return s.db
}

// Close releases the database.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

// PutSession inserts or replaces a chat session.
func (s *SQLiteSource) PutSession(ctx context.Context, session ChatSession) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO chat_sessions (id, title, created_at, message_count)
		VALUES (?, ?, ?, ?)
	`, session.ID, session.Title, session.CreatedAt.UTC(), session.MessageCount)
	if err != nil {
		return fmt.Errorf("failed to put session: %w", err)
	}
	return nil
}

// PutMessage appends a message to a session's history.
func (s *SQLiteSource) PutMessage(ctx context.Context, sessionID string, msg Message) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chat_messages (session_id, seq, role, content, created_at)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM chat_messages WHERE session_id = ?), ?, ?, ?)
	`, sessionID, sessionID, msg.Role, msg.Content, nullTime(&msg.Timestamp))
	if err != nil {
		return fmt.Errorf("failed to put message: %w", err)
	}
	return nil
}

// PutRun inserts or replaces a run.
func (s *SQLiteSource) PutRun(ctx context.Context, run Run) error {
	var progress sql.NullFloat64
	if run.Progress != nil {
		progress = sql.NullFloat64{Float64: *run.Progress, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs (id, name, alias, status, command, error, chat_session_id, parent_run_id,
			created_at, queued_at, launched_at, started_at, end_time, stopped_at, progress)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID, run.Name, run.Alias, run.Status, run.Command, run.Error, run.ChatSessionID, run.ParentRunID,
		run.CreatedAt.UTC(),
		nullTime(run.QueuedAt),
		nullTime(run.LaunchedAt),
		nullTime(run.StartedAt),
		nullTime(run.EndTime),
		nullTime(run.StoppedAt),
		progress,
	)
	if err != nil {
		return fmt.Errorf("failed to put run: %w", err)
	}
	return nil
}

// PutChart inserts or replaces a chart.
func (s *SQLiteSource) PutChart(ctx context.Context, chart Chart) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO charts (id, title, description, type, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, chart.ID, chart.Title, chart.Description, chart.Type, chart.Source, chart.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to put chart: %w", err)
	}
	return nil
}

// Sessions returns all chat sessions ordered by creation time.
func (s *SQLiteSource) Sessions(ctx context.Context) ([]ChatSession, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, created_at, message_count
		FROM chat_sessions
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []ChatSession
	for rows.Next() {
		var cs ChatSession
		if err := rows.Scan(&cs.ID, &cs.Title, &cs.CreatedAt, &cs.MessageCount); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, cs)
	}
	return sessions, rows.Err()
}

// Messages returns a session's history in insertion order.
func (s *SQLiteSource) Messages(ctx context.Context, sessionID string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT role, content, created_at
		FROM chat_messages
		WHERE session_id = ?
		ORDER BY seq
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		var ts sql.NullTime
		if err := rows.Scan(&m.Role, &m.Content, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		if ts.Valid {
			m.Timestamp = ts.Time
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// Runs returns all runs ordered by creation time.
func (s *SQLiteSource) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, alias, status, command, error, chat_session_id, parent_run_id,
			created_at, queued_at, launched_at, started_at, end_time, stopped_at, progress
		FROM runs
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var queued, launched, started, ended, stopped sql.NullTime
		var progress sql.NullFloat64
		err := rows.Scan(
			&r.ID, &r.Name, &r.Alias, &r.Status, &r.Command, &r.Error, &r.ChatSessionID, &r.ParentRunID,
			&r.CreatedAt, &queued, &launched, &started, &ended, &stopped, &progress,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.QueuedAt = timePtr(queued)
		r.LaunchedAt = timePtr(launched)
		r.StartedAt = timePtr(started)
		r.EndTime = timePtr(ended)
		r.StoppedAt = timePtr(stopped)
		if progress.Valid {
			p := progress.Float64
			r.Progress = &p
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Charts returns all charts ordered by creation time.
func (s *SQLiteSource) Charts(ctx context.Context) ([]Chart, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, type, source, created_at
		FROM charts
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query charts: %w", err)
	}
	defer rows.Close()

	var charts []Chart
	for rows.Next() {
		var c Chart
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.Type, &c.Source, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chart: %w", err)
		}
		charts = append(charts, c)
	}
	return charts, rows.Err()
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil || t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

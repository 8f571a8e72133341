// Package sqlsink implements event.Sink over database/sql, supporting
// Postgres (github.com/lib/pq) or embedded SQLite
// (github.com/mattn/go-sqlite3). Grounded on the teacher's
// pkg/memory.SQLSessionService: a dialect-tagged *sql.DB, a
// create-table-if-not-exists schema, and parameter-placeholder
// translation between postgres ($1) and sqlite (?).
//
// The persistence layer this feeds — the durable task/event/output
// tables — is an external concern (§6); this package only owns the
// insert path the core's events flow through.
package sqlsink

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/taskforge/taskforge/pkg/event"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS task_events (
    id VARCHAR(255) PRIMARY KEY,
    task_id VARCHAR(255) NOT NULL,
    kind VARCHAR(64) NOT NULL,
    role VARCHAR(64),
    payload TEXT,
    created_at TIMESTAMP NOT NULL
);
`

const sqliteCreateTableSQL = `
CREATE TABLE IF NOT EXISTS task_events (
    id TEXT PRIMARY KEY,
    task_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    role TEXT,
    payload TEXT,
    created_at DATETIME NOT NULL
);
`

// Sink appends events to a task_events table.
type Sink struct {
	db      *sql.DB
	dialect string // "postgres" or "sqlite3"
}

// Open connects to dialect ("postgres" or "sqlite3") at dsn and ensures
// the task_events table exists.
func Open(dialect, dsn string) (*Sink, error) {
	db, err := sql.Open(dialect, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlsink: open %s: %w", dialect, err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("sqlsink: ping %s: %w", dialect, err)
	}

	schema := createTableSQL
	if dialect == "sqlite3" {
		schema = sqliteCreateTableSQL
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("sqlsink: create table: %w", err)
	}

	return &Sink{db: db, dialect: dialect}, nil
}

func (s *Sink) Emit(ctx context.Context, e event.Event) error {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return fmt.Errorf("sqlsink: marshal payload: %w", err)
	}

	query := "INSERT INTO task_events (id, task_id, kind, role, payload, created_at) VALUES ($1, $2, $3, $4, $5, $6)"
	if s.dialect == "sqlite3" {
		query = "INSERT INTO task_events (id, task_id, kind, role, payload, created_at) VALUES (?, ?, ?, ?, ?, ?)"
	}

	_, err = s.db.ExecContext(ctx, query, e.ID, e.TaskID, string(e.Kind), e.Role, string(payload), e.Timestamp)
	if err != nil {
		return fmt.Errorf("sqlsink: insert event: %w", err)
	}
	return nil
}

// Close releases the underlying database connection.
func (s *Sink) Close() error {
	return s.db.Close()
}

var _ event.Sink = (*Sink)(nil)

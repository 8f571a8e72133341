package sqlsink

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taskforge/taskforge/pkg/event"
)

func TestEmitInsertsEventRow(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "events.db")
	sink, err := Open("sqlite3", dsn)
	require.NoError(t, err)
	defer sink.Close()

	var s event.Sink = sink
	err = s.Emit(context.Background(), event.Event{
		ID:        "evt-1",
		TaskID:    "task-1",
		Kind:      event.KindRoleOutcome,
		Role:      "proposer",
		Payload:   map[string]any{"outcome": "approved"},
		Timestamp: time.Now(),
	})
	require.NoError(t, err)

	db, err := sql.Open("sqlite3", dsn)
	require.NoError(t, err)
	defer db.Close()

	var id, taskID, kind string
	row := db.QueryRow("SELECT id, task_id, kind FROM task_events WHERE id = ?", "evt-1")
	require.NoError(t, row.Scan(&id, &taskID, &kind))
	require.Equal(t, "evt-1", id)
	require.Equal(t, "task-1", taskID)
	require.Equal(t, string(event.KindRoleOutcome), kind)
}

func TestOpenRejectsUnknownDialect(t *testing.T) {
	_, err := Open("oracle", "whatever")
	require.Error(t, err)
}

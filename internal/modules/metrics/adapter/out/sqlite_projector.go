package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mdash/internal/modules/metrics/domain"
	metricsout "mdash/internal/modules/metrics/port/out"

	_ "modernc.org/sqlite"
)

type SQLiteEntryProjector struct {
	db *sql.DB
}

func NewSQLiteEntryProjector(dbPath string) (metricsout.EntryIndexProjector, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	projector := &SQLiteEntryProjector{db: db}
	if err := projector.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return projector, nil
}

func (s *SQLiteEntryProjector) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS entries (
  id TEXT PRIMARY KEY,
  date TEXT NOT NULL,
  tool_calls_before INTEGER NOT NULL,
  tool_calls_after INTEGER NOT NULL,
  terminal_before INTEGER NOT NULL,
  terminal_after INTEGER NOT NULL,
  debug_time_before INTEGER NOT NULL,
  debug_time_after INTEGER NOT NULL,
  task_description TEXT,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_entries_date ON entries(date);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create entries table: %w", err)
	}
	return nil
}

func (s *SQLiteEntryProjector) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return fmt.Errorf("reset entries: %w", err)
	}
	return nil
}

func (s *SQLiteEntryProjector) UpsertEntry(ctx context.Context, entry domain.Entry) error {
	const stmt = `
INSERT INTO entries (id, date, tool_calls_before, tool_calls_after, terminal_before, terminal_after, debug_time_before, debug_time_after, task_description, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  date=excluded.date,
  tool_calls_before=excluded.tool_calls_before,
  tool_calls_after=excluded.tool_calls_after,
  terminal_before=excluded.terminal_before,
  terminal_after=excluded.terminal_after,
  debug_time_before=excluded.debug_time_before,
  debug_time_after=excluded.debug_time_after,
  task_description=excluded.task_description,
  created_at=excluded.created_at;
`
	_, err := s.db.ExecContext(ctx, stmt,
		entry.ID,
		entry.Date,
		entry.ToolCallsBefore,
		entry.ToolCallsAfter,
		entry.TerminalBefore,
		entry.TerminalAfter,
		entry.DebugTimeBefore,
		entry.DebugTimeAfter,
		entry.TaskDescription,
		entry.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert entry: %w", err)
	}
	return nil
}

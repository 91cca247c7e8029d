// Package sqlite stores the saga log in a SQLite file through the pure-Go
// modernc driver. The database runs in WAL mode so status reads do not wait
// on checkout writes.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jcmexdev/storefront-api/internal/coordinator/sagalog"

	_ "modernc.org/sqlite"
)

// saga_logs is append-only; the row with the highest id per saga_id is the
// current state.
const schema = `
CREATE TABLE IF NOT EXISTS saga_logs (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    saga_id         TEXT NOT NULL,
    status          TEXT NOT NULL,
    current_step    TEXT NOT NULL DEFAULT '',
    payload         TEXT,
    error_messages  TEXT NOT NULL DEFAULT '[]',
    trace_id        TEXT NOT NULL DEFAULT '',
    span_id         TEXT NOT NULL DEFAULT '',
    updated_at      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_saga_logs_saga_id ON saga_logs(saga_id, id);
CREATE INDEX IF NOT EXISTS idx_saga_logs_status ON saga_logs(status);
`

const columns = `saga_id, status, current_step, COALESCE(payload, ''), error_messages, trace_id, span_id, updated_at`

const timeLayout = "2006-01-02T15:04:05.999999999Z"

var _ sagalog.Repository = (*Repository)(nil)

type Repository struct {
	db *sql.DB
}

// Open creates the database at path when missing and applies the schema.
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	// One writer at a time; SQLite serializes writes anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) Save(ctx context.Context, entry *sagalog.SagaLog) error {
	var payload any
	if entry.Payload != "" {
		payload = entry.Payload
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO saga_logs (saga_id, status, current_step, payload, error_messages, trace_id, span_id, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.SagaID,
		string(entry.Status),
		entry.CurrentStep,
		payload,
		entry.ErrorMessages,
		entry.TraceID,
		entry.SpanID,
		entry.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save saga log for %q: %w", entry.SagaID, err)
	}
	return nil
}

func (r *Repository) GetLatest(ctx context.Context, sagaID string) (*sagalog.SagaLog, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+columns+` FROM saga_logs WHERE saga_id = ? ORDER BY id DESC LIMIT 1`, sagaID)

	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sqlite: saga %q: %w", sagaID, sagalog.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get latest for %q: %w", sagaID, err)
	}
	return entry, nil
}

func (r *Repository) ListLatestByStatus(ctx context.Context, status sagalog.Status) ([]*sagalog.SagaLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+columns+`
		 FROM saga_logs
		 WHERE id IN (SELECT MAX(id) FROM saga_logs GROUP BY saga_id) AND status = ?
		 ORDER BY saga_id`, string(status))
	if err != nil {
		return nil, fmt.Errorf("sqlite: list latest by status %q: %w", status, err)
	}
	defer rows.Close()

	var out []*sagalog.SagaLog
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan saga log: %w", err)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*sagalog.SagaLog, error) {
	var (
		entry     sagalog.SagaLog
		updatedAt string
	)
	if err := s.Scan(
		&entry.SagaID,
		&entry.Status,
		&entry.CurrentStep,
		&entry.Payload,
		&entry.ErrorMessages,
		&entry.TraceID,
		&entry.SpanID,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at %q: %w", updatedAt, err)
	}
	entry.UpdatedAt = t
	return &entry, nil
}

package sagalog

import (
	"context"
	"errors"
)

// ErrNotFound is returned by GetLatest when a saga has no entries.
var ErrNotFound = errors.New("sagalog: saga not found")

// Repository is the port (interface) for persisting saga log entries.
// The coordinator depends on this abstraction, not on SQLite directly.
type Repository interface {
	// Save persists a new log entry. Each call appends a row; the table is
	// an append-only audit log, not an upsert.
	Save(ctx context.Context, entry *SagaLog) error

	// GetLatest returns the most recent entry for sagaID or ErrNotFound.
	GetLatest(ctx context.Context, sagaID string) (*SagaLog, error)

	// ListLatestByStatus returns the latest entry of every saga currently in
	// status, ordered by saga ID.
	ListLatestByStatus(ctx context.Context, status Status) ([]*SagaLog, error)
}

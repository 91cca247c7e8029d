package sagalog

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository keeps saga log entries in process. It is the default when
// no SQLite path is configured and is what the tests use.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries map[string][]SagaLog
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{entries: make(map[string][]SagaLog)}
}

func (r *MemoryRepository) Save(_ context.Context, entry *SagaLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.SagaID] = append(r.entries[entry.SagaID], *entry)
	return nil
}

func (r *MemoryRepository) GetLatest(_ context.Context, sagaID string) (*SagaLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rows := r.entries[sagaID]
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	latest := rows[len(rows)-1]
	return &latest, nil
}

func (r *MemoryRepository) ListLatestByStatus(_ context.Context, status Status) ([]*SagaLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*SagaLog
	for _, rows := range r.entries {
		latest := rows[len(rows)-1]
		if latest.Status == status {
			out = append(out, &latest)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SagaID < out[j].SagaID })
	return out, nil
}

// History returns every entry recorded for sagaID in insertion order.
func (r *MemoryRepository) History(sagaID string) []SagaLog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]SagaLog, len(r.entries[sagaID]))
	copy(out, r.entries[sagaID])
	return out
}

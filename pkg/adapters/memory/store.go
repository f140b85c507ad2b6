package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/kenjpais/diagram-generator/pkg/domain"
)

// Store implements ports.RunStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]domain.RunRecord
	mu   sync.RWMutex
}

// NewStore creates a new in-memory run store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]domain.RunRecord),
	}
}

// Save persists the record in memory. The diagnostics slice is cloned so the
// caller cannot mutate stored history through a shared backing array.
func (s *Store) Save(_ context.Context, record domain.RunRecord) error {
	record.Diagnostics = slices.Clone(record.Diagnostics)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[record.ID] = record
	return nil
}

// Load retrieves one record by ID.
func (s *Store) Load(_ context.Context, id string) (domain.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.data[id]
	if !ok {
		return domain.RunRecord{}, domain.ErrRunNotFound
	}
	record.Diagnostics = slices.Clone(record.Diagnostics)
	return record, nil
}

// List returns records newest-first.
func (s *Store) List(_ context.Context, limit int) ([]domain.RunRecord, error) {
	s.mu.RLock()
	records := make([]domain.RunRecord, 0, len(s.data))
	for _, r := range s.data {
		r.Diagnostics = slices.Clone(r.Diagnostics)
		records = append(records, r)
	}
	s.mu.RUnlock()

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Delete removes the record. Unknown IDs are a no-op.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

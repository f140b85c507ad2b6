package middleware_test

import (
	"context"
	"sort"

	"github.com/kenjpais/diagram-generator/pkg/domain"
	"github.com/kenjpais/diagram-generator/pkg/ports"
)

// MockStore is a simple map-based store for observing what the middleware
// actually persists.
type MockStore struct {
	data map[string]domain.RunRecord
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]domain.RunRecord),
	}
}

func (s *MockStore) Save(_ context.Context, record domain.RunRecord) error {
	s.data[record.ID] = record
	return nil
}

func (s *MockStore) Load(_ context.Context, id string) (domain.RunRecord, error) {
	record, ok := s.data[id]
	if !ok {
		return domain.RunRecord{}, domain.ErrRunNotFound
	}
	return record, nil
}

func (s *MockStore) List(_ context.Context, limit int) ([]domain.RunRecord, error) {
	records := make([]domain.RunRecord, 0, len(s.data))
	for _, r := range s.data {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (s *MockStore) Delete(_ context.Context, id string) error {
	delete(s.data, id)
	return nil
}

var _ ports.RunStore = (*MockStore)(nil)

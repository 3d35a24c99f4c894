package memory

import (
	"context"
	"sync"

	"quizzy-service/internal/domain"
)

// ResultStore is an in-memory append-only implementation of
// app.ResultStore. Queries return copies so callers hold a stable snapshot.
type ResultStore struct {
	mu      sync.RWMutex
	records []domain.ResultRecord
}

func NewResultStore() *ResultStore {
	return &ResultStore{}
}

func (s *ResultStore) Append(_ context.Context, record domain.ResultRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

func (s *ResultStore) QueryAll(_ context.Context) ([]domain.ResultRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ResultRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *ResultStore) QueryByOwner(_ context.Context, ownerID string) ([]domain.ResultRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ResultRecord, 0)
	for _, r := range s.records {
		if r.OwnerID == ownerID {
			out = append(out, r)
		}
	}
	return out, nil
}

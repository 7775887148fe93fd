package memory

import (
	"context"
	"sync"

	"stellar-copytrade-lab/internal/domain"
	"stellar-copytrade-lab/internal/storage"
)

// CandidateStore is an in-memory implementation of storage.CandidateStore.
type CandidateStore struct {
	mu    sync.RWMutex
	data  map[string]*domain.CandidateSet // keyed by run_id
	order []string                        // run_ids in insertion order
}

// NewCandidateStore creates a new in-memory candidate store.
func NewCandidateStore() *CandidateStore {
	return &CandidateStore{
		data: make(map[string]*domain.CandidateSet),
	}
}

// Compile-time interface check.
var _ storage.CandidateStore = (*CandidateStore)(nil)

// Insert adds a candidate set. Returns ErrDuplicateKey if run_id exists.
func (s *CandidateStore) Insert(_ context.Context, set *domain.CandidateSet) error {
	if set == nil || set.RunID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[set.RunID]; exists {
		return storage.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	s.data[set.RunID] = set.Clone()
	s.order = append(s.order, set.RunID)
	return nil
}

// GetByRun retrieves a candidate set by run. Returns ErrNotFound if not exists.
func (s *CandidateStore) GetByRun(_ context.Context, runID string) (*domain.CandidateSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set, exists := s.data[runID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return set.Clone(), nil
}

// GetLatest retrieves the set with the latest GeneratedAt for source.
// Equal timestamps resolve to the later insert.
func (s *CandidateStore) GetLatest(_ context.Context, source domain.RunSource) (*domain.CandidateSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.CandidateSet
	for _, id := range s.order {
		set := s.data[id]
		if set.Source != source {
			continue
		}
		if latest == nil || !set.GeneratedAt.Before(latest.GeneratedAt) {
			latest = set
		}
	}
	if latest == nil {
		return nil, storage.ErrNotFound
	}
	return latest.Clone(), nil
}

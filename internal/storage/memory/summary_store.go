package memory

import (
	"context"
	"sort"
	"sync"

	"stellar-copytrade-lab/internal/domain"
	"stellar-copytrade-lab/internal/storage"
)

// SummaryStore is an in-memory implementation of storage.SummaryStore.
type SummaryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]*domain.WalletPnLSummary // run_id -> wallet_id -> summary
}

// NewSummaryStore creates a new in-memory summary store.
func NewSummaryStore() *SummaryStore {
	return &SummaryStore{
		data: make(map[string]map[string]*domain.WalletPnLSummary),
	}
}

// Compile-time interface check.
var _ storage.SummaryStore = (*SummaryStore)(nil)

// InsertBulk adds all summaries of a run atomically.
func (s *SummaryStore) InsertBulk(_ context.Context, runID string, summaries []*domain.WalletPnLSummary) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(summaries) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.data[runID]
	batch := make(map[string]*domain.WalletPnLSummary, len(summaries))
	for _, sum := range summaries {
		if sum == nil || sum.WalletID == "" {
			return storage.ErrInvalidInput
		}
		if _, dup := batch[sum.WalletID]; dup {
			return storage.ErrDuplicateKey
		}
		if _, dup := existing[sum.WalletID]; dup {
			return storage.ErrDuplicateKey
		}
		batch[sum.WalletID] = sum.Clone()
	}

	if existing == nil {
		existing = make(map[string]*domain.WalletPnLSummary, len(batch))
		s.data[runID] = existing
	}
	for id, sum := range batch {
		existing[id] = sum
	}
	return nil
}

// GetByRun retrieves the summaries of a run ordered by wallet_id ASC.
func (s *SummaryStore) GetByRun(_ context.Context, runID string) ([]*domain.WalletPnLSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run := s.data[runID]
	result := make([]*domain.WalletPnLSummary, 0, len(run))
	for _, sum := range run {
		result = append(result, sum.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].WalletID < result[j].WalletID
	})
	return result, nil
}

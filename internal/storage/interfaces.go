package storage

import (
	"context"

	"stellar-copytrade-lab/internal/domain"
)

// SummaryStore provides access to per-run wallet P&L summaries.
type SummaryStore interface {
	// InsertBulk adds all summaries of a run atomically.
	// Returns ErrDuplicateKey if any (run_id, wallet_id) exists, including within the batch.
	InsertBulk(ctx context.Context, runID string, summaries []*domain.WalletPnLSummary) error

	// GetByRun retrieves the summaries of a run ordered by wallet_id ASC.
	GetByRun(ctx context.Context, runID string) ([]*domain.WalletPnLSummary, error)
}

// CandidateStore provides access to ranked candidate sets.
type CandidateStore interface {
	// Insert adds a candidate set. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, set *domain.CandidateSet) error

	// GetByRun retrieves a candidate set by run. Returns ErrNotFound if not exists.
	GetByRun(ctx context.Context, runID string) (*domain.CandidateSet, error)

	// GetLatest retrieves the most recently generated set for a source.
	// Returns ErrNotFound if no set exists.
	GetLatest(ctx context.Context, source domain.RunSource) (*domain.CandidateSet, error)
}

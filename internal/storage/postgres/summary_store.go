package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"stellar-copytrade-lab/internal/domain"
	"stellar-copytrade-lab/internal/storage"
)

// SummaryStore implements storage.SummaryStore using PostgreSQL.
type SummaryStore struct {
	pool *Pool
}

// NewSummaryStore creates a new SummaryStore.
func NewSummaryStore(pool *Pool) *SummaryStore {
	return &SummaryStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SummaryStore = (*SummaryStore)(nil)

const insertSummarySQL = `
	INSERT INTO wallet_pnl_summaries (
		run_id, wallet_id, num_swaps, total_volume_native, total_pnl_native,
		num_round_trips, avg_pnl_per_round_trip, net_native_change,
		num_swaps_analyzed, asset_pairs, pair_swap_counts
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

// InsertBulk adds all summaries of a run in one transaction.
// Any duplicate (run_id, wallet_id) rolls back the whole batch.
func (s *SummaryStore) InsertBulk(ctx context.Context, runID string, summaries []*domain.WalletPnLSummary) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(summaries) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, sum := range summaries {
		if sum == nil || sum.WalletID == "" {
			return storage.ErrInvalidInput
		}
		pairs := sum.AssetPairs
		if pairs == nil {
			pairs = []string{}
		}
		counts := sum.PairSwapCounts
		if counts == nil {
			counts = map[string]int{}
		}
		batch.Queue(insertSummarySQL,
			runID,
			sum.WalletID,
			sum.NumSwaps,
			sum.TotalVolumeNative,
			sum.TotalPnLNative,
			sum.NumRoundTrips,
			sum.AvgPnLPerRoundTrip,
			sum.NetNativeChange,
			sum.NumSwapsAnalyzed,
			pairs,
			counts,
		)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert summaries: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByRun retrieves the summaries of a run ordered by wallet_id ASC.
func (s *SummaryStore) GetByRun(ctx context.Context, runID string) ([]*domain.WalletPnLSummary, error) {
	query := `
		SELECT wallet_id, num_swaps, total_volume_native, total_pnl_native,
		       num_round_trips, avg_pnl_per_round_trip, net_native_change,
		       num_swaps_analyzed, asset_pairs, pair_swap_counts
		FROM wallet_pnl_summaries
		WHERE run_id = $1
		ORDER BY wallet_id ASC
	`

	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("get summaries by run: %w", err)
	}
	defer rows.Close()

	result := []*domain.WalletPnLSummary{}
	for rows.Next() {
		var sum domain.WalletPnLSummary
		if err := rows.Scan(
			&sum.WalletID,
			&sum.NumSwaps,
			&sum.TotalVolumeNative,
			&sum.TotalPnLNative,
			&sum.NumRoundTrips,
			&sum.AvgPnLPerRoundTrip,
			&sum.NetNativeChange,
			&sum.NumSwapsAnalyzed,
			&sum.AssetPairs,
			&sum.PairSwapCounts,
		); err != nil {
			return nil, fmt.Errorf("scan summary row: %w", err)
		}
		result = append(result, &sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summary rows: %w", err)
	}
	return result, nil
}

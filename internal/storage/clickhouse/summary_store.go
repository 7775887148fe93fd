package clickhouse

import (
	"context"
	"fmt"

	"stellar-copytrade-lab/internal/domain"
	"stellar-copytrade-lab/internal/storage"
)

// SummaryStore implements storage.SummaryStore on a ClickHouse MergeTree.
// MergeTree does not enforce keys, so duplicates are checked before insert.
type SummaryStore struct {
	conn *Conn
}

// NewSummaryStore creates a new SummaryStore.
func NewSummaryStore(conn *Conn) *SummaryStore {
	return &SummaryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SummaryStore = (*SummaryStore)(nil)

// InsertBulk appends the summaries of a run as one batch.
func (s *SummaryStore) InsertBulk(ctx context.Context, runID string, summaries []*domain.WalletPnLSummary) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(summaries) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(summaries))
	for _, sum := range summaries {
		if sum == nil || sum.WalletID == "" {
			return storage.ErrInvalidInput
		}
		if _, dup := seen[sum.WalletID]; dup {
			return storage.ErrDuplicateKey
		}
		seen[sum.WalletID] = struct{}{}
	}

	existing, err := s.existingWallets(ctx, runID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	for id := range seen {
		if _, dup := existing[id]; dup {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO wallet_pnl_history (
			run_id, wallet_id, num_swaps, total_volume_native, total_pnl_native,
			num_round_trips, avg_pnl_per_round_trip, net_native_change,
			num_swaps_analyzed, asset_pairs, pair_swap_counts
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, sum := range summaries {
		pairs := sum.AssetPairs
		if pairs == nil {
			pairs = []string{}
		}
		counts := make(map[string]uint32, len(sum.PairSwapCounts))
		for k, v := range sum.PairSwapCounts {
			counts[k] = uint32(v)
		}
		if err := batch.Append(
			runID,
			sum.WalletID,
			uint32(sum.NumSwaps),
			sum.TotalVolumeNative,
			sum.TotalPnLNative,
			uint32(sum.NumRoundTrips),
			sum.AvgPnLPerRoundTrip,
			sum.NetNativeChange,
			uint32(sum.NumSwapsAnalyzed),
			pairs,
			counts,
		); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByRun retrieves the summaries of a run ordered by wallet_id ASC.
func (s *SummaryStore) GetByRun(ctx context.Context, runID string) ([]*domain.WalletPnLSummary, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT wallet_id, num_swaps, total_volume_native, total_pnl_native,
		       num_round_trips, avg_pnl_per_round_trip, net_native_change,
		       num_swaps_analyzed, asset_pairs, pair_swap_counts
		FROM wallet_pnl_history
		WHERE run_id = ?
		ORDER BY wallet_id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query by run: %w", err)
	}
	defer rows.Close()

	result := []*domain.WalletPnLSummary{}
	for rows.Next() {
		var (
			sum                               domain.WalletPnLSummary
			numSwaps, roundTrips, numAnalyzed uint32
			counts                            map[string]uint32
		)
		if err := rows.Scan(
			&sum.WalletID,
			&numSwaps,
			&sum.TotalVolumeNative,
			&sum.TotalPnLNative,
			&roundTrips,
			&sum.AvgPnLPerRoundTrip,
			&sum.NetNativeChange,
			&numAnalyzed,
			&sum.AssetPairs,
			&counts,
		); err != nil {
			return nil, fmt.Errorf("scan summary row: %w", err)
		}
		sum.NumSwaps = int(numSwaps)
		sum.NumRoundTrips = int(roundTrips)
		sum.NumSwapsAnalyzed = int(numAnalyzed)
		sum.PairSwapCounts = make(map[string]int, len(counts))
		for k, v := range counts {
			sum.PairSwapCounts[k] = int(v)
		}
		result = append(result, &sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summary rows: %w", err)
	}
	return result, nil
}

func (s *SummaryStore) existingWallets(ctx context.Context, runID string) (map[string]struct{}, error) {
	rows, err := s.conn.Query(ctx, `SELECT DISTINCT wallet_id FROM wallet_pnl_history WHERE run_id = ?`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = struct{}{}
	}
	return out, rows.Err()
}

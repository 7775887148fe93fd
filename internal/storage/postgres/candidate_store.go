package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"stellar-copytrade-lab/internal/domain"
	"stellar-copytrade-lab/internal/storage"
)

const (
	tierPrimary   = "primary"
	tierSecondary = "secondary"
)

// CandidateStore implements storage.CandidateStore using PostgreSQL.
type CandidateStore struct {
	pool *Pool
}

// NewCandidateStore creates a new CandidateStore.
func NewCandidateStore(pool *Pool) *CandidateStore {
	return &CandidateStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CandidateStore = (*CandidateStore)(nil)

const insertRecordSQL = `
	INSERT INTO candidate_records (
		run_id, tier, position, wallet_id, net_native_change, num_swaps,
		total_volume_native, total_pnl_native, num_round_trips, per_swap_profit,
		daily_rate, pair_diversity, asset_pairs,
		profitability_score, activity_score, efficiency_score, stability_score,
		score, risk_level, trade_type, recommendation
	) VALUES (
		$1, $2, $3, $4, $5, $6,
		$7, $8, $9, $10,
		$11, $12, $13,
		$14, $15, $16, $17,
		$18, $19, $20, $21
	)
`

// Insert adds a candidate set and its records in one transaction.
// Returns ErrDuplicateKey if run_id exists.
func (s *CandidateStore) Insert(ctx context.Context, set *domain.CandidateSet) error {
	if set == nil || set.RunID == "" {
		return storage.ErrInvalidInput
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO candidate_sets (run_id, source, generated_at) VALUES ($1, $2, $3)`,
		set.RunID, string(set.Source), set.GeneratedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert candidate set: %w", err)
	}

	batch := &pgx.Batch{}
	queueRecords(batch, set.RunID, tierPrimary, set.PrimaryCandidates)
	queueRecords(batch, set.RunID, tierSecondary, set.SecondaryCandidates)
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert candidate records: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func queueRecords(batch *pgx.Batch, runID, tier string, records []*domain.WalletScoreRecord) {
	for i, r := range records {
		pairs := r.AssetPairs
		if pairs == nil {
			pairs = []string{}
		}
		batch.Queue(insertRecordSQL,
			runID, tier, i, r.WalletID, r.NetNativeChange, r.NumSwaps,
			r.TotalVolumeNative, r.TotalPnLNative, r.NumRoundTrips, r.PerSwapProfit,
			r.DailyRate, r.PairDiversity, pairs,
			r.Components.Profitability, r.Components.Activity, r.Components.Efficiency, r.Components.Stability,
			r.Score, string(r.RiskLevel), string(r.TradeType), r.Recommendation,
		)
	}
}

// GetByRun retrieves a candidate set by run. Returns ErrNotFound if not exists.
func (s *CandidateStore) GetByRun(ctx context.Context, runID string) (*domain.CandidateSet, error) {
	var set domain.CandidateSet
	var source string

	err := s.pool.QueryRow(ctx,
		`SELECT run_id, source, generated_at FROM candidate_sets WHERE run_id = $1`,
		runID,
	).Scan(&set.RunID, &source, &set.GeneratedAt)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get candidate set by run: %w", err)
	}
	set.Source = domain.RunSource(source)
	set.GeneratedAt = set.GeneratedAt.UTC()

	if err := s.loadRecords(ctx, &set); err != nil {
		return nil, err
	}
	return &set, nil
}

// GetLatest retrieves the most recently generated set for a source.
func (s *CandidateStore) GetLatest(ctx context.Context, source domain.RunSource) (*domain.CandidateSet, error) {
	var runID string
	err := s.pool.QueryRow(ctx, `
		SELECT run_id FROM candidate_sets
		WHERE source = $1
		ORDER BY generated_at DESC, created_at DESC
		LIMIT 1
	`, string(source)).Scan(&runID)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest candidate set: %w", err)
	}
	return s.GetByRun(ctx, runID)
}

func (s *CandidateStore) loadRecords(ctx context.Context, set *domain.CandidateSet) error {
	rows, err := s.pool.Query(ctx, `
		SELECT tier, wallet_id, net_native_change, num_swaps,
		       total_volume_native, total_pnl_native, num_round_trips, per_swap_profit,
		       daily_rate, pair_diversity, asset_pairs,
		       profitability_score, activity_score, efficiency_score, stability_score,
		       score, risk_level, trade_type, recommendation
		FROM candidate_records
		WHERE run_id = $1
		ORDER BY tier ASC, position ASC
	`, set.RunID)
	if err != nil {
		return fmt.Errorf("get candidate records: %w", err)
	}
	defer rows.Close()

	set.PrimaryCandidates = []*domain.WalletScoreRecord{}
	set.SecondaryCandidates = []*domain.WalletScoreRecord{}
	for rows.Next() {
		var (
			r          domain.WalletScoreRecord
			tier       string
			risk, kind string
		)
		if err := rows.Scan(
			&tier, &r.WalletID, &r.NetNativeChange, &r.NumSwaps,
			&r.TotalVolumeNative, &r.TotalPnLNative, &r.NumRoundTrips, &r.PerSwapProfit,
			&r.DailyRate, &r.PairDiversity, &r.AssetPairs,
			&r.Components.Profitability, &r.Components.Activity, &r.Components.Efficiency, &r.Components.Stability,
			&r.Score, &risk, &kind, &r.Recommendation,
		); err != nil {
			return fmt.Errorf("scan candidate record: %w", err)
		}
		r.RiskLevel = domain.RiskLevel(risk)
		r.TradeType = domain.TradeType(kind)

		if tier == tierPrimary {
			set.PrimaryCandidates = append(set.PrimaryCandidates, &r)
		} else {
			set.SecondaryCandidates = append(set.SecondaryCandidates, &r)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate candidate records: %w", err)
	}
	return nil
}

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stellar-copytrade-lab/internal/domain"
	"stellar-copytrade-lab/internal/storage"
)

func makeRecord(walletID string, score float64, risk domain.RiskLevel) *domain.WalletScoreRecord {
	return &domain.WalletScoreRecord{
		WalletID:          walletID,
		NetNativeChange:   80,
		NumSwaps:          200,
		TotalVolumeNative: 5000,
		TotalPnLNative:    12,
		NumRoundTrips:     2,
		PerSwapProfit:     4,
		DailyRate:         133.3,
		PairDiversity:     2,
		AssetPairs:        []string{"XLM/SHX", "SHX/XLM"},
		Components:        domain.ScoreComponents{Profitability: 1, Activity: 0.5, Efficiency: 0.25, Stability: 0},
		Score:             score,
		RiskLevel:         risk,
		TradeType:         domain.TradeTypeDirectionalRoundTrip,
		Recommendation:    "Replicate Directional+RoundTrip trades on XLM/SHX, SHX/XLM.",
	}
}

func makeSet(runID string, source domain.RunSource, at time.Time) *domain.CandidateSet {
	return &domain.CandidateSet{
		RunID:       runID,
		Source:      source,
		GeneratedAt: at,
		PrimaryCandidates: []*domain.WalletScoreRecord{
			makeRecord("w1", 0.9, domain.RiskLow),
			makeRecord("w2", 0.7, domain.RiskModerate),
		},
		SecondaryCandidates: []*domain.WalletScoreRecord{
			makeRecord("w3", 0.5, domain.RiskHigh),
		},
	}
}

func TestCandidateStore_InsertAndGetByRun(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewCandidateStore(pool)
	ctx := context.Background()
	set := makeSet("run-1", domain.RunSourceNetwork, time.Date(2024, 11, 3, 10, 0, 0, 0, time.UTC))

	require.NoError(t, store.Insert(ctx, set))

	got, err := store.GetByRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, set, got)
}

func TestCandidateStore_InsertDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewCandidateStore(pool)
	ctx := context.Background()
	set := makeSet("run-dup", domain.RunSourceNetwork, time.Unix(1700000000, 0).UTC())

	require.NoError(t, store.Insert(ctx, set))
	assert.ErrorIs(t, store.Insert(ctx, set), storage.ErrDuplicateKey)
}

func TestCandidateStore_NotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewCandidateStore(pool)
	ctx := context.Background()

	_, err := store.GetByRun(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = store.GetLatest(ctx, domain.RunSourceDomain)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCandidateStore_GetLatest(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewCandidateStore(pool)
	ctx := context.Background()
	base := time.Date(2024, 11, 3, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Insert(ctx, makeSet("old", domain.RunSourceDomain, base)))
	require.NoError(t, store.Insert(ctx, makeSet("new", domain.RunSourceDomain, base.Add(time.Hour))))
	require.NoError(t, store.Insert(ctx, makeSet("net", domain.RunSourceNetwork, base.Add(2*time.Hour))))

	got, err := store.GetLatest(ctx, domain.RunSourceDomain)
	require.NoError(t, err)
	assert.Equal(t, "new", got.RunID)
	assert.Len(t, got.PrimaryCandidates, 2)
	assert.Equal(t, "w3", got.SecondaryCandidates[0].WalletID)
}

package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stellar-copytrade-lab/internal/domain"
)

func summary(id string, net float64, swaps, analyzed int, pairs ...string) *domain.WalletPnLSummary {
	return &domain.WalletPnLSummary{
		WalletID:         id,
		NetNativeChange:  net,
		NumSwaps:         swaps,
		NumSwapsAnalyzed: analyzed,
		AssetPairs:       pairs,
	}
}

func TestScore_SingleWalletCohort(t *testing.T) {
	recs := New(DefaultConfig()).Score([]*domain.WalletPnLSummary{
		summary("w", 120, 30, 10, "XLM/SHX", "SHX/XLM"),
	})

	require.Len(t, recs, 1)
	c := recs[0].Components
	assert.Equal(t, 1.0, c.Profitability)
	assert.Equal(t, 1.0, c.Activity)
	assert.Equal(t, 1.0, c.Efficiency)
	assert.Equal(t, 0.0, c.Stability)
	assert.InDelta(t, 0.9, recs[0].Score, 1e-12)
}

func TestScore_SingleWalletWithoutPairs(t *testing.T) {
	recs := New(DefaultConfig()).Score([]*domain.WalletPnLSummary{summary("w", 120, 30, 10)})

	assert.Equal(t, 1.0, recs[0].Components.Stability)
	assert.InDelta(t, 1.0, recs[0].Score, 1e-12)
}

func TestScore_EmptyCohort(t *testing.T) {
	assert.Empty(t, New(DefaultConfig()).Score(nil))
}

func TestScore_CohortRelative(t *testing.T) {
	cohort := []*domain.WalletPnLSummary{
		summary("a", 200, 30, 10, "XLM/A", "XLM/B"),
		summary("b", 100, 15, 10, "XLM/A", "XLM/B", "XLM/C", "XLM/D"),
	}

	recs := New(DefaultConfig()).Score(cohort)

	require.Len(t, recs, 2)
	assert.Equal(t, "a", recs[0].WalletID)
	assert.InDelta(t, 0.5, recs[0].Components.Stability, 1e-12)

	b := recs[1]
	assert.InDelta(t, 0.5, b.Components.Profitability, 1e-12)
	assert.InDelta(t, 0.5, b.Components.Activity, 1e-12)
	assert.InDelta(t, 0.5, b.Components.Efficiency, 1e-12)
	assert.InDelta(t, 0.0, b.Components.Stability, 1e-12)
	assert.InDelta(t, 0.45, b.Score, 1e-12)
	assert.InDelta(t, 10.0, b.PerSwapProfit, 1e-12)
	assert.InDelta(t, 10.0, b.DailyRate, 1e-12)
	assert.Equal(t, 4, b.PairDiversity)
}

func TestScore_ZeroMaximaYieldZeroComponents(t *testing.T) {
	recs := New(DefaultConfig()).Score([]*domain.WalletPnLSummary{summary("w", 0, 0, 0)})

	c := recs[0].Components
	assert.Equal(t, 0.0, c.Profitability)
	assert.Equal(t, 0.0, c.Activity)
	assert.Equal(t, 0.0, c.Efficiency)
	assert.Equal(t, 1.0, c.Stability)
	assert.Equal(t, 0.0, recs[0].PerSwapProfit)
}

func TestScore_WindowLengthIsConfigurable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WindowDays = DomainWindowDays

	recs := New(cfg).Score([]*domain.WalletPnLSummary{summary("w", 60, 30, 3, "XLM/A")})

	assert.InDelta(t, 15.0, recs[0].DailyRate, 1e-12)
	assert.Equal(t, domain.RiskModerate, recs[0].RiskLevel)
}

func TestScore_CustomWeights(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weights = Weights{Profitability: 1}

	recs := New(cfg).Score([]*domain.WalletPnLSummary{
		summary("a", 100, 1, 1, "XLM/A"),
		summary("b", 25, 100, 1, "XLM/A"),
	})

	assert.InDelta(t, 1.0, recs[0].Score, 1e-12)
	assert.InDelta(t, 0.25, recs[1].Score, 1e-12)
}

func TestClassifyRisk(t *testing.T) {
	th := DefaultRiskThresholds()
	tests := []struct {
		name      string
		daily     float64
		diversity int
		want      domain.RiskLevel
	}{
		{"high activity", 150, 3, domain.RiskLow},
		{"boundary 100 is moderate", 100, 3, domain.RiskModerate},
		{"moderate", 50, 3, domain.RiskModerate},
		{"boundary 10 is high", 10, 3, domain.RiskHigh},
		{"low activity", 2, 3, domain.RiskHigh},
		{"low escalated", 150, 21, domain.RiskModerate},
		{"moderate escalated", 50, 21, domain.RiskHigh},
		{"high stays high", 2, 40, domain.RiskHigh},
		{"diversity 20 not escalated", 150, 20, domain.RiskLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyRisk(tt.daily, tt.diversity, th))
		})
	}
}

func TestClassifyTradeType(t *testing.T) {
	assert.Equal(t, domain.TradeTypeDirectionalRoundTrip, ClassifyTradeType(2, 5))
	assert.Equal(t, domain.TradeTypeDirectional, ClassifyTradeType(2, -5))
	assert.Equal(t, domain.TradeTypeDirectional, ClassifyTradeType(0, 0))
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.WindowDays = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = DefaultConfig()
	cfg.Weights = Weights{}
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

package pnl

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"stellar-copytrade-lab/internal/domain"
)

const testIssuer = "GAAQCAIBAEAQCAIBAEAQCAIBAEAQCAIBAEAQCAIBAEAQCAIBAEAQDZ7H"

func zeroCostConfig() Config {
	return Config{Tolerance: DefaultTolerance, Policy: MatchFirst}
}

func buy(seq int64, code string, spend, receive float64) *domain.SwapEvent {
	return &domain.SwapEvent{
		WalletID:     "w1",
		Timestamp:    seq * 1000,
		Sequence:     seq,
		Kind:         domain.OperationPathPayment,
		SourceAsset:  domain.NativeAsset(),
		SourceAmount: spend,
		DestAsset:    domain.IssuedAsset(code, testIssuer),
		DestAmount:   receive,
	}
}

func sell(seq int64, code string, spend, receive float64) *domain.SwapEvent {
	return &domain.SwapEvent{
		WalletID:     "w1",
		Timestamp:    seq * 1000,
		Sequence:     seq,
		Kind:         domain.OperationPathPayment,
		SourceAsset:  domain.IssuedAsset(code, testIssuer),
		SourceAmount: spend,
		DestAsset:    domain.NativeAsset(),
		DestAmount:   receive,
	}
}

func TestEstimate_ZeroEvents(t *testing.T) {
	est := NewEstimator(DefaultConfig(), nil)

	s := est.Estimate(WalletInput{WalletID: "w1", NumSwaps: 12, TotalVolumeNative: 400})

	assert.Equal(t, 0, s.NumRoundTrips)
	assert.Equal(t, 0.0, s.TotalPnLNative)
	assert.Equal(t, 0.0, s.NetNativeChange)
	assert.Equal(t, 0.0, s.AvgPnLPerRoundTrip)
	assert.Equal(t, 0, s.NumSwapsAnalyzed)
	assert.Empty(t, s.AssetPairs)
	assert.Equal(t, 12, s.NumSwaps)
	assert.Equal(t, 400.0, s.TotalVolumeNative)
}

func TestEstimate_SingleRoundTrip(t *testing.T) {
	est := NewEstimator(zeroCostConfig(), nil)

	s := est.Estimate(WalletInput{
		WalletID: "w1",
		Events:   []*domain.SwapEvent{buy(1, "X", 100, 50), sell(2, "X", 50, 120)},
	})

	assert.Equal(t, 1, s.NumRoundTrips)
	assert.InDelta(t, 20.0, s.TotalPnLNative, 1e-9)
	assert.InDelta(t, 20.0, s.AvgPnLPerRoundTrip, 1e-9)
	assert.InDelta(t, 20.0, s.NetNativeChange, 1e-9)
	assert.Equal(t, 2, s.NumSwapsAnalyzed)
	assert.Equal(t, []string{"XLM/X", "X/XLM"}, s.AssetPairs)
}

func TestEstimate_FeeAndSlippage(t *testing.T) {
	cfg := Config{FeePerSwap: 0.1, SlippageRate: 0.5, Tolerance: 0.01, Policy: MatchFirst}
	est := NewEstimator(cfg, nil)

	s := est.Estimate(WalletInput{
		WalletID: "w1",
		Events:   []*domain.SwapEvent{buy(1, "X", 100, 50), sell(2, "X", 50, 120)},
	})

	// (120-100)*(1-0.5) - 2*0.1
	assert.InDelta(t, 9.8, s.TotalPnLNative, 1e-9)
	// -100 - 0.1 + 120 - 0.1
	assert.InDelta(t, 19.8, s.NetNativeChange, 1e-9)
}

func TestEstimate_ToleranceRejectsFarAmounts(t *testing.T) {
	est := NewEstimator(zeroCostConfig(), nil)

	tests := []struct {
		name      string
		sold      float64
		wantMatch bool
	}{
		{"exact", 50, true},
		{"inside tolerance", 50.009, true},
		{"just beyond tolerance", 50.011, false},
		{"beyond tolerance", 50.02, false},
		{"below beyond tolerance", 49.9, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := est.Estimate(WalletInput{
				WalletID: "w1",
				Events:   []*domain.SwapEvent{buy(1, "X", 100, 50), sell(2, "X", tt.sold, 120)},
			})
			if tt.wantMatch {
				assert.Equal(t, 1, s.NumRoundTrips)
			} else {
				assert.Equal(t, 0, s.NumRoundTrips)
				assert.Equal(t, 0.0, s.TotalPnLNative)
			}
		})
	}
}

func TestEstimate_PairCardinalityOneDirection(t *testing.T) {
	est := NewEstimator(DefaultConfig(), nil)

	s := est.Estimate(WalletInput{
		WalletID: "w1",
		Events:   []*domain.SwapEvent{buy(1, "X", 10, 5), buy(2, "X", 20, 10), buy(3, "X", 30, 15)},
	})

	assert.Equal(t, []string{"XLM/X"}, s.AssetPairs)
	assert.Equal(t, 3, s.PairSwapCounts["XLM/X"])
}

func TestEstimate_FirstMatchWithinTolerance(t *testing.T) {
	events := []*domain.SwapEvent{
		buy(1, "X", 100, 50.008),
		buy(2, "X", 80, 50.0),
		sell(3, "X", 50.0, 110),
	}

	first := NewEstimator(zeroCostConfig(), nil).Estimate(WalletInput{WalletID: "w1", Events: events})
	assert.InDelta(t, 10.0, first.TotalPnLNative, 1e-9)

	cfg := zeroCostConfig()
	cfg.Policy = MatchNearest
	nearest := NewEstimator(cfg, nil).Estimate(WalletInput{WalletID: "w1", Events: events})
	assert.InDelta(t, 30.0, nearest.TotalPnLNative, 1e-9)
}

func TestEstimate_SameCodeDifferentIssuerDoesNotMatch(t *testing.T) {
	other := sell(2, "X", 50, 120)
	other.SourceAsset = domain.IssuedAsset("X", "GOTHERISSUER")

	s := NewEstimator(zeroCostConfig(), nil).Estimate(WalletInput{
		WalletID: "w1",
		Events:   []*domain.SwapEvent{buy(1, "X", 100, 50), other},
	})

	assert.Equal(t, 0, s.NumRoundTrips)
	assert.Len(t, s.AssetPairs, 2)
}

func TestEstimate_UnmatchedDisposalStillMovesBalance(t *testing.T) {
	s := NewEstimator(zeroCostConfig(), nil).Estimate(WalletInput{
		WalletID: "w1",
		Events:   []*domain.SwapEvent{sell(1, "Y", 10, 75)},
	})

	assert.Equal(t, 0, s.NumRoundTrips)
	assert.InDelta(t, 75.0, s.NetNativeChange, 1e-9)
	assert.Equal(t, []string{"Y/XLM"}, s.AssetPairs)
}

func TestEstimate_OtherEventsPayFeeOnly(t *testing.T) {
	cfg := zeroCostConfig()
	cfg.FeePerSwap = 1
	native := &domain.SwapEvent{
		WalletID: "w1", Sequence: 1,
		SourceAsset: domain.NativeAsset(), SourceAmount: 500,
		DestAsset: domain.NativeAsset(), DestAmount: 500,
	}

	s := NewEstimator(cfg, nil).Estimate(WalletInput{WalletID: "w1", Events: []*domain.SwapEvent{native}})

	assert.Equal(t, 1, s.NumSwapsAnalyzed)
	assert.Equal(t, -1.0, s.NetNativeChange)
	assert.Empty(t, s.AssetPairs)
}

func TestEstimate_ReordersOutOfOrderEvents(t *testing.T) {
	events := []*domain.SwapEvent{sell(2, "X", 50, 120), buy(1, "X", 100, 50)}

	s := NewEstimator(zeroCostConfig(), nil).Estimate(WalletInput{WalletID: "w1", Events: events})

	assert.Equal(t, 1, s.NumRoundTrips)
	// caller's slice is left untouched
	assert.Equal(t, int64(2), events[0].Sequence)
}

func TestEstimate_NaNAmountsDefaultToZero(t *testing.T) {
	s := NewEstimator(zeroCostConfig(), nil).Estimate(WalletInput{
		WalletID: "w1",
		Events:   []*domain.SwapEvent{buy(1, "X", math.NaN(), math.Inf(1))},
	})

	assert.False(t, math.IsNaN(s.NetNativeChange))
	assert.Equal(t, 0.0, s.NetNativeChange)
}

func TestEstimate_OverflowLogsWarning(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	est := NewEstimator(zeroCostConfig(), zap.New(core))

	s := est.Estimate(WalletInput{
		WalletID: "w1",
		Events:   []*domain.SwapEvent{sell(1, "X", 1, 1e308), sell(2, "X", 1, 1e308)},
	})

	assert.Equal(t, 0.0, s.NetNativeChange)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "non-finite totals reset to zero", entry.Message)
	assert.Equal(t, "w1", entry.ContextMap()["wallet"])
	assert.True(t, math.IsInf(entry.ContextMap()["balance"].(float64), 1))
}

func TestEstimate_FiniteTotalsDoNotWarn(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	est := NewEstimator(zeroCostConfig(), zap.New(core))

	est.Estimate(WalletInput{
		WalletID: "w1",
		Events:   []*domain.SwapEvent{buy(1, "X", 100, 50), sell(2, "X", 50, 120)},
	})

	assert.Equal(t, 0, logs.Len())
}

func TestEstimateAll(t *testing.T) {
	est := NewEstimator(zeroCostConfig(), nil).WithWorkers(2)
	inputs := []WalletInput{
		{WalletID: "a", Events: []*domain.SwapEvent{buy(1, "X", 100, 50), sell(2, "X", 50, 120)}},
		{WalletID: "b"},
		{WalletID: "c", Events: []*domain.SwapEvent{sell(1, "Y", 1, 5)}},
	}

	out, err := est.EstimateAll(context.Background(), inputs)

	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "a", out[0].WalletID)
	assert.Equal(t, 1, out[0].NumRoundTrips)
	assert.Equal(t, "b", out[1].WalletID)
	assert.Equal(t, 1, RoundTripCount(out))
}

func TestEstimateAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEstimator(DefaultConfig(), nil).EstimateAll(ctx, []WalletInput{{WalletID: "a"}})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	bad := DefaultConfig()
	bad.Policy = "fifo"
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)

	bad = DefaultConfig()
	bad.SlippageRate = 1
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)
}

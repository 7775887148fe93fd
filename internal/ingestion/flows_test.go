package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stellar-copytrade-lab/internal/domain"
)

func flowRow(wallet, code string, n int, in, out float64) *domain.AssetFlowRow {
	return &domain.AssetFlowRow{
		WalletID:  wallet,
		Asset:     domain.IssuedAssetRef{Code: code, Issuer: "G" + code},
		AssetFlow: domain.AssetFlow{NumSwaps: n, NativeInflows: in, NativeOutflows: out},
	}
}

func TestAggregateFlows(t *testing.T) {
	rows := []*domain.AssetFlowRow{
		flowRow("a", "LU", 2, 10, 5),
		flowRow("b", "LU", 7, 100, 1),
		flowRow("a", "MEME", 3, 40, 0),
		flowRow("a", "LU", 1, 1, 1),
		nil,
	}

	flows := AggregateFlows(rows)

	require.Len(t, flows, 2)
	assert.Equal(t, "b", flows[0].WalletID)

	a := flows[1]
	assert.Equal(t, "a", a.WalletID)
	assert.Equal(t, 6, a.NumSwaps)
	assert.InDelta(t, 51.0, a.NativeInflows, 1e-9)
	assert.InDelta(t, 6.0, a.NativeOutflows, 1e-9)
	assert.InDelta(t, 45.0, a.NetNativeFlow(), 1e-9)
	assert.Equal(t, []string{"LU", "MEME"}, a.AssetOrder)
	assert.Equal(t, 3, a.AssetsTraded["LU"].NumSwaps)
}

func TestFlowToSummary(t *testing.T) {
	flow := AggregateFlows([]*domain.AssetFlowRow{
		flowRow("a", "LU", 4, 150, 60),
		flowRow("a", "MEME", 1, 0, 20),
	})[0]

	s := FlowToSummary(flow)

	assert.Equal(t, "a", s.WalletID)
	assert.Equal(t, 5, s.NumSwaps)
	assert.Equal(t, 5, s.NumSwapsAnalyzed)
	assert.InDelta(t, 70.0, s.NetNativeChange, 1e-9)
	assert.InDelta(t, 230.0, s.TotalVolumeNative, 1e-9)
	assert.Equal(t, []string{"XLM/LU", "LU/XLM", "XLM/MEME", "MEME/XLM"}, s.AssetPairs)
	assert.Equal(t, 4, s.PairSwapCounts["LU/XLM"])
	assert.Equal(t, 1, s.PairSwapCounts["XLM/MEME"])
	assert.Zero(t, s.NumRoundTrips)
	assert.Zero(t, s.TotalPnLNative)
}

func TestFlowToSummary_WithoutAssetOrder(t *testing.T) {
	flow := &domain.WalletFlow{
		WalletID: "x",
		AssetsTraded: map[string]domain.AssetFlow{
			"ZZ": {NumSwaps: 1},
			"AA": {NumSwaps: 2},
		},
	}

	s := FlowToSummary(flow)

	assert.Equal(t, []string{"XLM/AA", "AA/XLM", "XLM/ZZ", "ZZ/XLM"}, s.AssetPairs)
	assert.Len(t, FlowsToSummaries([]*domain.WalletFlow{flow, flow}), 2)
}

package reporting

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"

	"stellar-copytrade-lab/internal/domain"
)

var csvHeader = []string{
	"rank", "tier", "wallet_id", "net_native_change", "num_swaps", "total_volume_native",
	"total_pnl_native", "num_round_trips", "per_swap_profit", "daily_rate", "pair_diversity",
	"asset_pairs", "score", "risk_level", "trade_type", "recommendation",
}

// RenderCSV renders a candidate set as CSV, primary tier first.
// Asset pairs are joined with ';'.
func RenderCSV(set *domain.CandidateSet) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return "", err
	}
	for _, row := range Rows(set) {
		r := row.Record
		if err := w.Write([]string{
			strconv.Itoa(row.Rank),
			string(row.Tier),
			r.WalletID,
			formatFloat(r.NetNativeChange),
			strconv.Itoa(r.NumSwaps),
			formatFloat(r.TotalVolumeNative),
			formatFloat(r.TotalPnLNative),
			strconv.Itoa(r.NumRoundTrips),
			formatFloat(r.PerSwapProfit),
			formatFloat(r.DailyRate),
			strconv.Itoa(r.PairDiversity),
			strings.Join(r.AssetPairs, ";"),
			formatFloat(r.Score),
			string(r.RiskLevel),
			string(r.TradeType),
			r.Recommendation,
		}); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

package domain

// PendingTrade is an unresolved acquisition awaiting a matching disposal.
type PendingTrade struct {
	ReceivedAmount   float64 // units of the issued asset received
	PaidNativeAmount float64 // native spent to acquire them
}

// WalletPnLSummary is the per-wallet output of the P&L estimator.
// Produced once per wallet per run; never mutated afterwards.
type WalletPnLSummary struct {
	WalletID           string         `json:"wallet_id"`
	NumSwaps           int            `json:"num_swaps"`
	TotalVolumeNative  float64        `json:"total_volume_native"`
	TotalPnLNative     float64        `json:"total_pnl_native"`
	NumRoundTrips      int            `json:"num_round_trips"`
	AvgPnLPerRoundTrip float64        `json:"avg_pnl_per_round_trip"`
	NetNativeChange    float64        `json:"net_native_change"`
	NumSwapsAnalyzed   int            `json:"num_swaps_analyzed"`
	AssetPairs         []string       `json:"asset_pairs"`                // unique, first-seen order
	PairSwapCounts     map[string]int `json:"pair_swap_counts,omitempty"` // swaps per pair
}

// HasPair reports whether pair appears in the summary's asset pairs.
func (s *WalletPnLSummary) HasPair(pair string) bool {
	for _, p := range s.AssetPairs {
		if p == pair {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of s.
func (s *WalletPnLSummary) Clone() *WalletPnLSummary {
	c := *s
	c.AssetPairs = append([]string(nil), s.AssetPairs...)
	if s.PairSwapCounts != nil {
		c.PairSwapCounts = make(map[string]int, len(s.PairSwapCounts))
		for k, v := range s.PairSwapCounts {
			c.PairSwapCounts[k] = v
		}
	}
	return &c
}

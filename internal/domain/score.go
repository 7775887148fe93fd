package domain

import "time"

// RiskLevel is the copy-trading risk tier of a wallet.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
)

// Escalate returns the next tier up: Low becomes Moderate, anything else High.
func (r RiskLevel) Escalate() RiskLevel {
	if r == RiskLow {
		return RiskModerate
	}
	return RiskHigh
}

// TradeType labels the trading behavior observed for a wallet.
type TradeType string

const (
	TradeTypeDirectional          TradeType = "Directional"
	TradeTypeDirectionalRoundTrip TradeType = "Directional+RoundTrip"
)

// ScoreComponents holds the normalized component scores in [0,1].
type ScoreComponents struct {
	Profitability float64 `json:"profitability"`
	Activity      float64 `json:"activity"`
	Efficiency    float64 `json:"efficiency"`
	Stability     float64 `json:"stability"`
}

// WalletScoreRecord is a scored and classified wallet.
// Scores are relative to the cohort they were computed in.
type WalletScoreRecord struct {
	WalletID          string          `json:"wallet_id"`
	NetNativeChange   float64         `json:"net_native_change"`
	NumSwaps          int             `json:"num_swaps"`
	TotalVolumeNative float64         `json:"total_volume_native"`
	TotalPnLNative    float64         `json:"total_pnl_native"`
	NumRoundTrips     int             `json:"num_round_trips"`
	PerSwapProfit     float64         `json:"per_swap_profit"`
	DailyRate         float64         `json:"daily_rate"`
	PairDiversity     int             `json:"pair_diversity"`
	AssetPairs        []string        `json:"asset_pairs"`
	Components        ScoreComponents `json:"components"`
	Score             float64         `json:"score"`
	RiskLevel         RiskLevel       `json:"risk_level"`
	TradeType         TradeType       `json:"trade_type"`
	Recommendation    string          `json:"recommendation"`
}

// RunSource identifies which analysis variant produced a run.
type RunSource string

const (
	RunSourceNetwork RunSource = "network"
	RunSourceDomain  RunSource = "domain"
)

// CandidateSet is the ranked output of one run.
type CandidateSet struct {
	RunID               string               `json:"run_id"`
	Source              RunSource            `json:"source"`
	GeneratedAt         time.Time            `json:"generated_at"`
	PrimaryCandidates   []*WalletScoreRecord `json:"primary_candidates"`
	SecondaryCandidates []*WalletScoreRecord `json:"secondary_candidates"`
}

// Len returns the total number of candidates in both tiers.
func (c *CandidateSet) Len() int {
	return len(c.PrimaryCandidates) + len(c.SecondaryCandidates)
}

// Clone returns a deep copy of r.
func (r *WalletScoreRecord) Clone() *WalletScoreRecord {
	c := *r
	c.AssetPairs = append([]string(nil), r.AssetPairs...)
	return &c
}

// Clone returns a deep copy of c and its records.
func (c *CandidateSet) Clone() *CandidateSet {
	out := *c
	out.PrimaryCandidates = cloneRecords(c.PrimaryCandidates)
	out.SecondaryCandidates = cloneRecords(c.SecondaryCandidates)
	return &out
}

func cloneRecords(in []*WalletScoreRecord) []*WalletScoreRecord {
	out := make([]*WalletScoreRecord, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}

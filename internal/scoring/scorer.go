package scoring

import (
	"stellar-copytrade-lab/internal/domain"
	"stellar-copytrade-lab/internal/normalization"
)

// Scorer computes cohort-relative scores. Scores from different cohorts are
// not comparable.
type Scorer struct {
	cfg Config
}

// New creates a scorer.
func New(cfg Config) *Scorer {
	return &Scorer{cfg: cfg}
}

type cohortMaxima struct {
	netChange     float64
	dailyRate     float64
	perSwapProfit float64
	pairDiversity int
}

// Score returns one record per summary, in cohort order. The first pass
// computes cohort maxima; the second scores each wallet against them.
func (s *Scorer) Score(cohort []*domain.WalletPnLSummary) []*domain.WalletScoreRecord {
	records := make([]*domain.WalletScoreRecord, 0, len(cohort))
	for _, w := range cohort {
		if w == nil {
			continue
		}
		records = append(records, s.baseRecord(w))
	}

	var peak cohortMaxima
	for i, r := range records {
		if i == 0 || r.NetNativeChange > peak.netChange {
			peak.netChange = r.NetNativeChange
		}
		if i == 0 || r.DailyRate > peak.dailyRate {
			peak.dailyRate = r.DailyRate
		}
		if i == 0 || r.PerSwapProfit > peak.perSwapProfit {
			peak.perSwapProfit = r.PerSwapProfit
		}
		if r.PairDiversity > peak.pairDiversity {
			peak.pairDiversity = r.PairDiversity
		}
	}

	w := s.cfg.Weights
	for _, r := range records {
		c := domain.ScoreComponents{
			Profitability: ratio(r.NetNativeChange, peak.netChange),
			Activity:      ratio(r.DailyRate, peak.dailyRate),
			Efficiency:    ratio(r.PerSwapProfit, peak.perSwapProfit),
			Stability:     1,
		}
		if peak.pairDiversity > 0 {
			c.Stability = 1 - float64(r.PairDiversity)/float64(peak.pairDiversity)
		}
		r.Components = c
		r.Score = normalization.SanitizeFloat(w.Profitability*c.Profitability +
			w.Activity*c.Activity +
			w.Efficiency*c.Efficiency +
			w.Stability*c.Stability)
	}
	return records
}

func (s *Scorer) baseRecord(w *domain.WalletPnLSummary) *domain.WalletScoreRecord {
	net := normalization.SanitizeFloat(w.NetNativeChange)

	var perSwap float64
	if w.NumSwapsAnalyzed > 0 {
		perSwap = net / float64(w.NumSwapsAnalyzed)
	}
	dailyRate := float64(w.NumSwaps) / s.cfg.WindowDays
	diversity := len(w.AssetPairs)

	return &domain.WalletScoreRecord{
		WalletID:          w.WalletID,
		NetNativeChange:   net,
		NumSwaps:          w.NumSwaps,
		TotalVolumeNative: w.TotalVolumeNative,
		TotalPnLNative:    w.TotalPnLNative,
		NumRoundTrips:     w.NumRoundTrips,
		PerSwapProfit:     perSwap,
		DailyRate:         normalization.SanitizeFloat(dailyRate),
		PairDiversity:     diversity,
		AssetPairs:        append([]string(nil), w.AssetPairs...),
		RiskLevel:         ClassifyRisk(dailyRate, diversity, s.cfg.Risk),
		TradeType:         ClassifyTradeType(w.NumRoundTrips, w.TotalPnLNative),
	}
}

// ratio returns v/top, or 0 when top is not positive.
func ratio(v, top float64) float64 {
	if top <= 0 {
		return 0
	}
	return normalization.SanitizeFloat(v / top)
}

// ClassifyRisk assigns a tier from daily rate, then escalates one tier when
// pair diversity exceeds the threshold.
func ClassifyRisk(dailyRate float64, pairDiversity int, th RiskThresholds) domain.RiskLevel {
	var level domain.RiskLevel
	switch {
	case dailyRate > th.LowDailyRate:
		level = domain.RiskLow
	case dailyRate > th.ModerateDailyRate:
		level = domain.RiskModerate
	default:
		level = domain.RiskHigh
	}
	if pairDiversity > th.MaxPairDiversity {
		level = level.Escalate()
	}
	return level
}

// ClassifyTradeType labels wallets with profitable round trips.
func ClassifyTradeType(numRoundTrips int, totalPnL float64) domain.TradeType {
	if numRoundTrips > 0 && totalPnL > 0 {
		return domain.TradeTypeDirectionalRoundTrip
	}
	return domain.TradeTypeDirectional
}

package ranking

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"stellar-copytrade-lab/internal/domain"
)

// Default ranking parameters.
const (
	DefaultTopN            = 3
	recommendationMaxPairs = 5
)

// Config holds ranker parameters.
type Config struct {
	// TopN is the number of leading positions eligible for primary.
	TopN int
}

// DefaultConfig returns TopN = 3.
func DefaultConfig() Config {
	return Config{TopN: DefaultTopN}
}

// Validate checks parameter ranges.
func (c Config) Validate() error {
	if c.TopN < 0 {
		return fmt.Errorf("ranking: top_n must be >= 0, got %d", c.TopN)
	}
	return nil
}

// Ranker orders scored wallets and splits them into candidate tiers.
type Ranker struct {
	cfg Config
	now func() time.Time
}

// New creates a ranker.
func New(cfg Config) *Ranker {
	return &Ranker{cfg: cfg, now: time.Now}
}

// Rank sorts records by score descending, keeping input order on ties, and
// partitions them. The record at rank index i is primary iff i < TopN and its
// risk level is not High; every other record is secondary. Demoted records
// are not replaced from further down the ranking. Each record receives its
// recommendation text.
func (r *Ranker) Rank(records []*domain.WalletScoreRecord) *domain.CandidateSet {
	sorted := SortByScore(records)

	set := &domain.CandidateSet{
		GeneratedAt:         r.now().UTC(),
		PrimaryCandidates:   []*domain.WalletScoreRecord{},
		SecondaryCandidates: []*domain.WalletScoreRecord{},
	}
	for i, in := range sorted {
		rec := in.Clone()
		rec.Recommendation = Recommendation(rec)
		if i < r.cfg.TopN && rec.RiskLevel != domain.RiskHigh {
			set.PrimaryCandidates = append(set.PrimaryCandidates, rec)
		} else {
			set.SecondaryCandidates = append(set.SecondaryCandidates, rec)
		}
	}
	return set
}

// SortByScore returns a copy of records ordered by score descending.
// Records with equal scores keep their input order.
func SortByScore(records []*domain.WalletScoreRecord) []*domain.WalletScoreRecord {
	sorted := make([]*domain.WalletScoreRecord, 0, len(records))
	for _, rec := range records {
		if rec != nil {
			sorted = append(sorted, rec)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	return sorted
}

// Recommendation renders display text naming the trade type and up to the
// first five asset pairs in collection order.
func Recommendation(rec *domain.WalletScoreRecord) string {
	pairs := rec.AssetPairs
	if len(pairs) > recommendationMaxPairs {
		pairs = pairs[:recommendationMaxPairs]
	}
	return fmt.Sprintf("Replicate %s trades on %s. Start with small volumes to test consistency.",
		rec.TradeType, strings.Join(pairs, ", "))
}

package filter

import (
	"fmt"
	"sort"
	"sync"

	"stellar-copytrade-lab/internal/domain"
)

// StaticCommonPairs is the fixed reference set of widely traded pairs used by
// network-wide runs.
var StaticCommonPairs = []string{
	"XLM/USDC", "USDC/XLM",
	"XLM/AQUA", "AQUA/XLM",
	"XLM/XRP", "XRP/XLM",
	"XLM/SLT", "SLT/XLM",
}

// Default filter parameters.
const (
	DefaultNetChangeThreshold = 50.0
	DefaultTopK               = 5
)

// Config controls which wallets pass the candidate filter.
type Config struct {
	// NetChangeThreshold is the exclusive lower bound on net native change.
	NetChangeThreshold float64
	// CommonPairs is the static common-pair set. Ignored when DynamicTopK > 0.
	CommonPairs []string
	// DynamicTopK, when positive, derives the common-pair set from the cohort.
	DynamicTopK int
	// RequireExoticPair enables the exotic pair test.
	RequireExoticPair bool
}

// DefaultConfig returns the network-run configuration: static pairs,
// threshold 50, exotic pair required.
func DefaultConfig() Config {
	return Config{
		NetChangeThreshold: DefaultNetChangeThreshold,
		CommonPairs:        append([]string(nil), StaticCommonPairs...),
		RequireExoticPair:  true,
	}
}

// Validate checks parameter ranges.
func (c Config) Validate() error {
	if c.DynamicTopK < 0 {
		return fmt.Errorf("filter: top_k must be >= 0, got %d", c.DynamicTopK)
	}
	return nil
}

// RejectReason names the first criterion a wallet failed.
type RejectReason string

const (
	ReasonNetChange  RejectReason = "net_change_below_threshold"
	ReasonNoSwaps    RejectReason = "no_swaps_analyzed"
	ReasonNoExotic   RejectReason = "only_common_pairs"
	ReasonNilSummary RejectReason = "nil_summary"
)

// Rejection records why a wallet was dropped.
type Rejection struct {
	WalletID string
	Reason   RejectReason
}

// Result is the output of one filter pass.
type Result struct {
	Passed      []*domain.WalletPnLSummary
	Rejected    []Rejection
	CommonPairs []string
}

// Filter applies profitability, activity and exotic pair criteria.
type Filter struct {
	cfg Config

	once   sync.Once
	common []string
}

// New creates a filter.
func New(cfg Config) *Filter {
	return &Filter{cfg: cfg}
}

// Apply filters cohort against the filter's common-pair set. With
// DynamicTopK set, the set is derived from the first cohort passed to Apply
// and reused by later calls, so applying f to its own output passes every
// wallet again.
func (f *Filter) Apply(cohort []*domain.WalletPnLSummary) *Result {
	f.once.Do(func() {
		if f.cfg.DynamicTopK > 0 {
			f.common = TopPairs(cohort, f.cfg.DynamicTopK)
			return
		}
		f.common = append([]string(nil), f.cfg.CommonPairs...)
	})
	return f.ApplyWithCommon(cohort, f.common)
}

// CommonPairs returns the reference set fixed by the first Apply, or nil
// before it.
func (f *Filter) CommonPairs() []string {
	return append([]string(nil), f.common...)
}

// ApplyWithCommon filters cohort against an explicit common-pair set.
// Passed preserves cohort order.
func (f *Filter) ApplyWithCommon(cohort []*domain.WalletPnLSummary, common []string) *Result {
	set := make(map[string]struct{}, len(common))
	for _, p := range common {
		set[p] = struct{}{}
	}

	res := &Result{CommonPairs: append([]string(nil), common...)}
	for _, s := range cohort {
		if s == nil {
			res.Rejected = append(res.Rejected, Rejection{Reason: ReasonNilSummary})
			continue
		}
		if reason, ok := f.check(s, set); !ok {
			res.Rejected = append(res.Rejected, Rejection{WalletID: s.WalletID, Reason: reason})
			continue
		}
		res.Passed = append(res.Passed, s)
	}
	return res
}

func (f *Filter) check(s *domain.WalletPnLSummary, common map[string]struct{}) (RejectReason, bool) {
	if !(s.NetNativeChange > f.cfg.NetChangeThreshold) {
		return ReasonNetChange, false
	}
	if s.NumSwapsAnalyzed <= 0 {
		return ReasonNoSwaps, false
	}
	if f.cfg.RequireExoticPair && !hasExoticPair(s.AssetPairs, common) {
		return ReasonNoExotic, false
	}
	return "", true
}

func hasExoticPair(pairs []string, common map[string]struct{}) bool {
	for _, p := range pairs {
		if _, ok := common[p]; !ok {
			return true
		}
	}
	return false
}

// TopPairs returns the k pairs with the highest aggregate swap count across
// the cohort. A pair without a recorded count contributes 1 per wallet.
// Ties keep first-seen order.
func TopPairs(cohort []*domain.WalletPnLSummary, k int) []string {
	if k <= 0 {
		return nil
	}

	counts := make(map[string]int)
	var order []string
	for _, s := range cohort {
		if s == nil {
			continue
		}
		for _, p := range s.AssetPairs {
			if _, seen := counts[p]; !seen {
				order = append(order, p)
			}
			n, ok := s.PairSwapCounts[p]
			if !ok {
				n = 1
			}
			counts[p] += n
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > k {
		order = order[:k]
	}
	return order
}

package ingestion

import (
	"sort"

	"stellar-copytrade-lab/internal/domain"
)

// AggregateFlows merges per-asset flow rows into one flow per wallet,
// ordered by swap count DESC with first-seen order on ties.
func AggregateFlows(rows []*domain.AssetFlowRow) []*domain.WalletFlow {
	byWallet := make(map[string]*domain.WalletFlow)
	var order []*domain.WalletFlow

	for _, r := range rows {
		if r == nil {
			continue
		}
		f, ok := byWallet[r.WalletID]
		if !ok {
			f = &domain.WalletFlow{
				WalletID:     r.WalletID,
				AssetsTraded: make(map[string]domain.AssetFlow),
			}
			byWallet[r.WalletID] = f
			order = append(order, f)
		}

		f.NumSwaps += r.NumSwaps
		f.NativeInflows += r.NativeInflows
		f.NativeOutflows += r.NativeOutflows

		code := r.Asset.Code
		af, seen := f.AssetsTraded[code]
		if !seen {
			f.AssetOrder = append(f.AssetOrder, code)
		}
		af.NumSwaps += r.NumSwaps
		af.NativeInflows += r.NativeInflows
		af.NativeOutflows += r.NativeOutflows
		f.AssetsTraded[code] = af
	}

	sort.SliceStable(order, func(i, j int) bool {
		return order[i].NumSwaps > order[j].NumSwaps
	})
	return order
}

// FlowToSummary adapts an aggregated wallet flow to the canonical P&L
// summary. Each traded asset contributes both pair directions, weighted by
// the asset's swap count. Flow data carries no round trips.
func FlowToSummary(f *domain.WalletFlow) *domain.WalletPnLSummary {
	s := &domain.WalletPnLSummary{
		WalletID:          f.WalletID,
		NumSwaps:          f.NumSwaps,
		NumSwapsAnalyzed:  f.NumSwaps,
		TotalVolumeNative: f.NativeInflows + f.NativeOutflows,
		NetNativeChange:   f.NetNativeFlow(),
		AssetPairs:        make([]string, 0, 2*len(f.AssetsTraded)),
		PairSwapCounts:    make(map[string]int, 2*len(f.AssetsTraded)),
	}

	codes := f.AssetOrder
	if len(codes) != len(f.AssetsTraded) {
		codes = make([]string, 0, len(f.AssetsTraded))
		for code := range f.AssetsTraded {
			codes = append(codes, code)
		}
		sort.Strings(codes)
	}

	for _, code := range codes {
		n := f.AssetsTraded[code].NumSwaps
		for _, pair := range []string{domain.NativeCode + "/" + code, code + "/" + domain.NativeCode} {
			if _, seen := s.PairSwapCounts[pair]; !seen {
				s.AssetPairs = append(s.AssetPairs, pair)
			}
			s.PairSwapCounts[pair] += n
		}
	}
	return s
}

// FlowsToSummaries adapts every flow.
func FlowsToSummaries(flows []*domain.WalletFlow) []*domain.WalletPnLSummary {
	out := make([]*domain.WalletPnLSummary, 0, len(flows))
	for _, f := range flows {
		out = append(out, FlowToSummary(f))
	}
	return out
}

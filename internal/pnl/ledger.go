package pnl

import (
	"math"

	"stellar-copytrade-lab/internal/domain"
)

// pendingLedger holds one wallet's unresolved acquisitions per asset,
// in push order.
type pendingLedger map[domain.AssetKey][]domain.PendingTrade

func (l pendingLedger) push(key domain.AssetKey, t domain.PendingTrade) {
	l[key] = append(l[key], t)
}

// take removes and returns the entry matching amount under policy.
// Matching is strict: |received - amount| < tolerance.
func (l pendingLedger) take(key domain.AssetKey, amount, tolerance float64, policy MatchPolicy) (domain.PendingTrade, bool) {
	entries := l[key]
	idx := -1
	switch policy {
	case MatchNearest:
		best := math.Inf(1)
		for i, e := range entries {
			diff := math.Abs(e.ReceivedAmount - amount)
			if diff < tolerance && diff < best {
				best = diff
				idx = i
			}
		}
	default:
		for i, e := range entries {
			if math.Abs(e.ReceivedAmount-amount) < tolerance {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		return domain.PendingTrade{}, false
	}

	matched := entries[idx]
	l[key] = append(entries[:idx:idx], entries[idx+1:]...)
	return matched, true
}

// open returns the number of unresolved acquisitions across all assets.
func (l pendingLedger) open() int {
	n := 0
	for _, entries := range l {
		n += len(entries)
	}
	return n
}

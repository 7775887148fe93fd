package normalization

import (
	"sort"

	"stellar-copytrade-lab/internal/domain"
)

// SortSwapEvents orders events by (timestamp ASC, sequence ASC).
// Amounts never participate in ordering.
func SortSwapEvents(events []*domain.SwapEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return compareSwapEvents(events[i], events[j]) < 0
	})
}

// compareSwapEvents returns:
//   - negative if a < b
//   - zero if a == b
//   - positive if a > b
func compareSwapEvents(a, b *domain.SwapEvent) int {
	if a.Timestamp != b.Timestamp {
		if a.Timestamp < b.Timestamp {
			return -1
		}
		return 1
	}
	if a.Sequence != b.Sequence {
		if a.Sequence < b.Sequence {
			return -1
		}
		return 1
	}
	return 0
}

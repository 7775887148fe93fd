// Package reporting renders ranked candidate sets for humans and spreadsheets.
package reporting

import (
	"stellar-copytrade-lab/internal/domain"
)

// Tier labels a candidate row.
type Tier string

const (
	TierPrimary   Tier = "primary"
	TierSecondary Tier = "secondary"
)

// Row is one candidate with its tier and overall rank (1-based).
type Row struct {
	Rank   int
	Tier   Tier
	Record *domain.WalletScoreRecord
}

// Summary counts candidates by tier, risk level and trade type.
type Summary struct {
	Primary     int
	Secondary   int
	ByRisk      map[domain.RiskLevel]int
	ByTradeType map[domain.TradeType]int
}

// Rows lists primary candidates first, then secondary, each in ranked order.
// Rank is the position in that combined list.
func Rows(set *domain.CandidateSet) []Row {
	rows := make([]Row, 0, set.Len())
	for _, r := range set.PrimaryCandidates {
		rows = append(rows, Row{Rank: len(rows) + 1, Tier: TierPrimary, Record: r})
	}
	for _, r := range set.SecondaryCandidates {
		rows = append(rows, Row{Rank: len(rows) + 1, Tier: TierSecondary, Record: r})
	}
	return rows
}

// Summarize counts the candidates of set.
func Summarize(set *domain.CandidateSet) Summary {
	s := Summary{
		Primary:     len(set.PrimaryCandidates),
		Secondary:   len(set.SecondaryCandidates),
		ByRisk:      make(map[domain.RiskLevel]int),
		ByTradeType: make(map[domain.TradeType]int),
	}
	for _, row := range Rows(set) {
		s.ByRisk[row.Record.RiskLevel]++
		s.ByTradeType[row.Record.TradeType]++
	}
	return s
}

package reporting

import (
	"fmt"
	"strings"
	"time"

	"stellar-copytrade-lab/internal/domain"
)

// RenderMarkdown renders a candidate set as a Markdown report.
func RenderMarkdown(set *domain.CandidateSet) string {
	var sb strings.Builder
	summary := Summarize(set)

	// Header
	sb.WriteString("# Copy Trade Candidates\n\n")
	sb.WriteString(fmt.Sprintf("Run: %s | Source: %s\n\n", set.RunID, set.Source))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", set.GeneratedAt.UTC().Format(time.RFC3339)))

	// Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Primary Candidates | %d |\n", summary.Primary))
	sb.WriteString(fmt.Sprintf("| Secondary Candidates | %d |\n", summary.Secondary))
	for _, level := range []domain.RiskLevel{domain.RiskLow, domain.RiskModerate, domain.RiskHigh} {
		sb.WriteString(fmt.Sprintf("| %s Risk | %d |\n", level, summary.ByRisk[level]))
	}
	for _, tt := range []domain.TradeType{domain.TradeTypeDirectional, domain.TradeTypeDirectionalRoundTrip} {
		sb.WriteString(fmt.Sprintf("| %s | %d |\n", tt, summary.ByTradeType[tt]))
	}
	sb.WriteString("\n")

	writeTier(&sb, "Primary Candidates", set.PrimaryCandidates)
	writeTier(&sb, "Secondary Candidates", set.SecondaryCandidates)

	return sb.String()
}

func writeTier(sb *strings.Builder, title string, records []*domain.WalletScoreRecord) {
	sb.WriteString(fmt.Sprintf("## %s\n\n", title))
	if len(records) == 0 {
		sb.WriteString("No candidates.\n\n")
		return
	}

	sb.WriteString("| # | Wallet | Net XLM | Swaps | Volume XLM | Per Swap | Daily | Pairs | Score | Risk | Trade Type |\n")
	sb.WriteString("|---|--------|---------|-------|------------|----------|-------|-------|-------|------|------------|\n")
	for i, r := range records {
		sb.WriteString(fmt.Sprintf("| %d | `%s` | %.4f | %d | %.4f | %.4f | %.2f | %d | %.4f | %s | %s |\n",
			i+1,
			r.WalletID,
			r.NetNativeChange,
			r.NumSwaps,
			r.TotalVolumeNative,
			r.PerSwapProfit,
			r.DailyRate,
			r.PairDiversity,
			r.Score,
			r.RiskLevel,
			r.TradeType,
		))
	}
	sb.WriteString("\n")

	for i, r := range records {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, r.Recommendation))
	}
	sb.WriteString("\n")
}

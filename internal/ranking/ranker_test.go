package ranking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stellar-copytrade-lab/internal/domain"
)

func record(id string, score float64, risk domain.RiskLevel) *domain.WalletScoreRecord {
	return &domain.WalletScoreRecord{
		WalletID:   id,
		Score:      score,
		RiskLevel:  risk,
		TradeType:  domain.TradeTypeDirectional,
		AssetPairs: []string{"XLM/" + id},
	}
}

func ids(recs []*domain.WalletScoreRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.WalletID
	}
	return out
}

func TestRank_HighRiskDemotedWithoutReplacement(t *testing.T) {
	recs := []*domain.WalletScoreRecord{
		record("w03", 0.3, domain.RiskLow),
		record("w05", 0.5, domain.RiskHigh),
		record("w09", 0.9, domain.RiskLow),
		record("w07", 0.7, domain.RiskModerate),
	}

	set := New(Config{TopN: 3}).Rank(recs)

	assert.Equal(t, []string{"w09", "w07"}, ids(set.PrimaryCandidates))
	assert.Equal(t, []string{"w05", "w03"}, ids(set.SecondaryCandidates))
	assert.Equal(t, 4, set.Len())
}

func TestRank_StableOnTies(t *testing.T) {
	recs := []*domain.WalletScoreRecord{
		record("first", 0.5, domain.RiskLow),
		record("second", 0.5, domain.RiskLow),
		record("third", 0.5, domain.RiskLow),
	}

	set := New(Config{TopN: 2}).Rank(recs)

	assert.Equal(t, []string{"first", "second"}, ids(set.PrimaryCandidates))
	assert.Equal(t, []string{"third"}, ids(set.SecondaryCandidates))
}

func TestRank_EmptyAndZeroTopN(t *testing.T) {
	empty := New(DefaultConfig()).Rank(nil)
	assert.NotNil(t, empty.PrimaryCandidates)
	assert.NotNil(t, empty.SecondaryCandidates)
	assert.Equal(t, 0, empty.Len())

	set := New(Config{TopN: 0}).Rank([]*domain.WalletScoreRecord{record("a", 1, domain.RiskLow)})
	assert.Empty(t, set.PrimaryCandidates)
	assert.Len(t, set.SecondaryCandidates, 1)
}

func TestRank_AnnotatesRecommendationAndTime(t *testing.T) {
	r := New(DefaultConfig())
	fixed := time.Date(2024, 11, 3, 10, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	set := r.Rank([]*domain.WalletScoreRecord{record("a", 1, domain.RiskLow)})

	require.Len(t, set.PrimaryCandidates, 1)
	assert.Equal(t, fixed, set.GeneratedAt)
	assert.Equal(t,
		"Replicate Directional trades on XLM/a. Start with small volumes to test consistency.",
		set.PrimaryCandidates[0].Recommendation)
}

func TestRank_LeavesInputUntouched(t *testing.T) {
	in := record("a", 1, domain.RiskLow)

	set := New(DefaultConfig()).Rank([]*domain.WalletScoreRecord{in})

	require.Len(t, set.PrimaryCandidates, 1)
	assert.Empty(t, in.Recommendation)
	assert.NotSame(t, in, set.PrimaryCandidates[0])
	assert.NotEmpty(t, set.PrimaryCandidates[0].Recommendation)

	set.PrimaryCandidates[0].AssetPairs[0] = "XLM/changed"
	assert.Equal(t, []string{"XLM/a"}, in.AssetPairs)
}

func TestRecommendation_FirstFivePairsInOrder(t *testing.T) {
	rec := &domain.WalletScoreRecord{
		TradeType:  domain.TradeTypeDirectionalRoundTrip,
		AssetPairs: []string{"XLM/F", "XLM/B", "XLM/E", "XLM/A", "XLM/D", "XLM/C"},
	}

	got := Recommendation(rec)

	assert.Equal(t,
		"Replicate Directional+RoundTrip trades on XLM/F, XLM/B, XLM/E, XLM/A, XLM/D. Start with small volumes to test consistency.",
		got)
}

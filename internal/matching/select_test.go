package matching_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/marketinsight/internal/domain"
	"github.com/alanyoungcy/marketinsight/internal/matching"
)

func cand(title string, score, prob, vol float64) domain.Candidate {
	return domain.Candidate{
		Source:      domain.SourcePolymarket,
		Title:       title,
		ID:          title,
		Score:       score,
		Probability: prob,
		Volume:      vol,
	}
}

func TestRankOrderAndTruncate(t *testing.T) {
	in := []domain.Candidate{
		cand("low", 0.2, 0.9, 10),
		cand("tie-prob-low", 0.5, 0.3, 999),
		cand("tie-prob-high", 0.5, 0.6, 1),
		cand("top", 0.9, 0.1, 0),
		cand("tie-vol", 0.5, 0.3, 1000),
	}

	ranked := matching.Rank(in, matching.DefaultOptions())
	require.Len(t, ranked, 3)
	require.Equal(t, "top", ranked[0].Title)
	require.Equal(t, "tie-prob-high", ranked[1].Title)
	require.Equal(t, "tie-vol", ranked[2].Title)

	// input untouched
	require.Equal(t, "low", in[0].Title)
}

func TestRankCustomTopN(t *testing.T) {
	in := []domain.Candidate{cand("a", 0.4, 0.5, 0), cand("b", 0.5, 0.5, 0)}
	ranked := matching.Rank(in, matching.Options{TopN: 1})
	require.Len(t, ranked, 1)
	require.Equal(t, "b", ranked[0].Title)
}

func TestRankEmptyIsNonNil(t *testing.T) {
	ranked := matching.Rank(nil, matching.DefaultOptions())
	require.NotNil(t, ranked)
	require.Empty(t, ranked)
}

func TestIsOpenEnded(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"Who will Trump nominate as Fed Chair?", true},
		{"who is leading", true},
		{"Which party wins the House?", true},
		{"odds for which candidate wins", true},
		{"bitcoin 200k", false},
		{"whole foods closing", false},
		{"whichever", false},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			require.Equal(t, tc.want, matching.IsOpenEnded(tc.query))
		})
	}
}

func TestSelectPrimaryNoCandidates(t *testing.T) {
	require.Nil(t, matching.SelectPrimary("anything", nil, matching.DefaultOptions()))
}

func TestSelectPrimaryConfidenceFloor(t *testing.T) {
	ranked := []domain.Candidate{cand("a", 0.339, 0.9, 0), cand("b", 0.2, 0.5, 0)}
	require.Nil(t, matching.SelectPrimary("bitcoin", ranked, matching.DefaultOptions()))

	ranked = []domain.Candidate{cand("a", 0.34, 0.9, 0)}
	got := matching.SelectPrimary("bitcoin", ranked, matching.DefaultOptions())
	require.NotNil(t, got)
	require.Equal(t, "a", got.Title)

	strict := matching.Options{ConfidenceFloor: 0.5, TopN: 3}
	require.Nil(t, matching.SelectPrimary("bitcoin", ranked, strict))
}

func TestSelectPrimaryClosedQueryTakesFirstConfident(t *testing.T) {
	ranked := []domain.Candidate{
		cand("best-score", 0.8, 0.2, 0),
		cand("likely", 0.6, 0.9, 0),
	}
	got := matching.SelectPrimary("bitcoin 200k", ranked, matching.DefaultOptions())
	require.Equal(t, "best-score", got.Title)
}

func TestSelectPrimaryOpenEndedPrefersProbability(t *testing.T) {
	query := "who will win the 2028 democratic primary"
	ranked := []domain.Candidate{
		cand("Newsom", 0.72, 0.55, 0),
		cand("Shapiro", 0.61, 0.61, 0),
		cand("Long shot", 0.2, 0.95, 0),
	}
	got := matching.SelectPrimary(query, ranked, matching.DefaultOptions())
	require.NotNil(t, got)
	require.Equal(t, "Shapiro", got.Title)
	require.InDelta(t, 0.61, got.Probability, 1e-9)
}

func TestSelectPrimaryOpenEndedTieBreaksOnScore(t *testing.T) {
	ranked := []domain.Candidate{
		cand("first", 0.4, 0.5, 0),
		cand("second", 0.7, 0.5, 0),
	}
	got := matching.SelectPrimary("which candidate wins", ranked, matching.DefaultOptions())
	require.Equal(t, "second", got.Title)
}

func TestSelectPrimaryReturnsCopy(t *testing.T) {
	ranked := []domain.Candidate{cand("a", 0.9, 0.5, 0)}
	got := matching.SelectPrimary("bitcoin", ranked, matching.DefaultOptions())
	got.Title = "changed"
	require.Equal(t, "a", ranked[0].Title)
}

package matching_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/marketinsight/internal/matching"
)

const maxScore = 0.58 + 0.24 + 0.18 + 0.1

func TestScoreBitcoin(t *testing.T) {
	// tokens: {bitcoin, 200k} vs {bitcoin, reach, 200, 000, end, 2025}
	got := matching.Score("bitcoin 200k", "Will Bitcoin reach $200,000 by end of 2025?", 500000)
	want := 0.5*0.58 + (1.0/7.0)*0.24 + 0.1
	require.InDelta(t, want, got, 1e-9)
}

func TestScoreEmptyInputs(t *testing.T) {
	require.Zero(t, matching.Score("", "Bitcoin above 100k", 1000))
	require.Zero(t, matching.Score("bitcoin", "", 1000))
	require.Zero(t, matching.Score("the of", "Bitcoin", 1000))
}

func TestScoreGate(t *testing.T) {
	// Four query tokens need two overlapping tokens.
	require.Zero(t, matching.Score("alpha beta gamma delta", "alpha zeta omega", 1e9))
	require.Positive(t, matching.Score("alpha beta gamma delta", "alpha beta omega", 0))

	// Shorter queries need one.
	require.Zero(t, matching.Score("bitcoin price", "ethereum merge", 1e9))
	require.Positive(t, matching.Score("bitcoin price", "bitcoin halving", 0))
}

func TestScorePhraseHitBypassesGate(t *testing.T) {
	// One shared token out of four, rescued only by containment.
	require.Zero(t, matching.Score("world series champion 2026", "Series winner", 0))
	require.Positive(t, matching.Score("world series champion 2026", "Series", 0))

	got := matching.Score("super bowl lix winner", "Super Bowl LIX winner announced", 0)
	noPhrase := matching.Score("super bowl lix winner", "Winner announced: LIX Super Bowl", 0)
	require.InDelta(t, 0.18, got-noPhrase, 1e-9)
}

func TestScoreShortQueryNoPhraseBonus(t *testing.T) {
	// "nba" normalizes to three characters, below the phrase minimum.
	got := matching.Score("nba", "NBA", 0)
	require.InDelta(t, 0.58+0.24, got, 1e-9)
}

func TestScoreBounded(t *testing.T) {
	pairs := [][2]string{
		{"who will win the 2028 democratic primary", "2028 Democratic presidential primary winner"},
		{"bitcoin", "Bitcoin"},
		{"fed chair", "Who will Trump nominate as Fed Chair?"},
		{"rain in london tomorrow", "Will it rain in London tomorrow?"},
	}
	for _, p := range pairs {
		for _, vol := range []float64{-50, 0, 10, 1e6, 1e12} {
			s := matching.Score(p[0], p[1], vol)
			require.GreaterOrEqual(t, s, 0.0)
			require.LessOrEqual(t, s, maxScore+1e-9)
		}
	}
}

func TestScoreMonotonicity(t *testing.T) {
	query := "bitcoin 200k december"

	t.Run("more overlap scores higher", func(t *testing.T) {
		low := matching.Score(query, "Bitcoin price in December", 0)
		high := matching.Score(query, "Bitcoin 200k by December", 0)
		require.Greater(t, high, low)
	})

	t.Run("volume nudges upward", func(t *testing.T) {
		base := matching.Score(query, "Bitcoin price in December", 0)
		boosted := matching.Score(query, "Bitcoin price in December", 1e5)
		require.Greater(t, boosted, base)
	})

	t.Run("volume boost saturates", func(t *testing.T) {
		a := matching.Score(query, "Bitcoin price in December", 10)
		b := matching.Score(query, "Bitcoin price in December", 1e12)
		require.InDelta(t, 0.1, b-matching.Score(query, "Bitcoin price in December", 0), 1e-9)
		require.Greater(t, b, a)
	})

	t.Run("negative volume treated as zero", func(t *testing.T) {
		require.Equal(t,
			matching.Score(query, "Bitcoin price in December", 0),
			matching.Score(query, "Bitcoin price in December", -1000))
	})
}

package matching

import (
	"math"
	"strings"
)

// Scoring weights. These are empirically chosen and must stay fixed so that
// rankings remain comparable across releases.
const (
	coverageWeight   = 0.58
	jaccardWeight    = 0.24
	phraseBonus      = 0.18
	volumeBoostCap   = 0.1
	volumeBoostScale = 30.0

	// minPhraseLen is the shortest normalized query that may count as a
	// phrase hit.
	minPhraseLen = 6
	// longQueryTokens is the query size from which two overlapping tokens
	// are required instead of one.
	longQueryTokens = 4
)

// Score computes the relevance of title to query. popularity (trading
// volume or equivalent) adds a small saturating boost. The result is 0 for
// rejected pairs and has no upper clamp; about 0.34 marks a confident match.
func Score(query, title string, popularity float64) float64 {
	queryTokens := Tokenize(query)
	titleTokens := Tokenize(title)
	if len(queryTokens) == 0 || len(titleTokens) == 0 {
		return 0
	}

	overlap := overlapCount(queryTokens, titleTokens)
	minOverlap := 1
	if len(queryTokens) >= longQueryTokens {
		minOverlap = 2
	}

	normQuery := Normalize(query)
	normTitle := Normalize(title)
	phraseHit := len(normQuery) >= minPhraseLen &&
		(strings.Contains(normTitle, normQuery) || strings.Contains(normQuery, normTitle))

	if overlap < minOverlap && !phraseHit {
		return 0
	}

	coverage := float64(overlap) / float64(len(queryTokens))
	score := coverage*coverageWeight + jaccard(queryTokens, titleTokens)*jaccardWeight
	if phraseHit {
		score += phraseBonus
	}
	return score + volumeBoost(popularity)
}

func volumeBoost(popularity float64) float64 {
	return math.Min(volumeBoostCap, math.Log10(1+math.Max(0, popularity))/volumeBoostScale)
}

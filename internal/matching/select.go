package matching

import (
	"slices"
	"strings"

	"github.com/alanyoungcy/marketinsight/internal/domain"
)

// Rank sorts candidates by score, then probability, then volume (all
// descending) and keeps the top opts.TopN. The input slice is not modified.
func Rank(candidates []domain.Candidate, opts Options) []domain.Candidate {
	ranked := slices.Clone(candidates)
	slices.SortStableFunc(ranked, func(a, b domain.Candidate) int {
		if c := cmpDesc(a.Score, b.Score); c != 0 {
			return c
		}
		if c := cmpDesc(a.Probability, b.Probability); c != 0 {
			return c
		}
		return cmpDesc(a.Volume, b.Volume)
	})
	if n := opts.topN(); len(ranked) > n {
		ranked = ranked[:n]
	}
	if ranked == nil {
		ranked = []domain.Candidate{}
	}
	return ranked
}

// IsOpenEnded reports whether query asks for one of several outcomes
// ("who will win", "which candidate") rather than a yes/no question.
func IsOpenEnded(query string) bool {
	q := Normalize(query)
	return strings.HasPrefix(q, "who ") ||
		strings.Contains(q, "who will") ||
		strings.HasPrefix(q, "which ") ||
		strings.Contains(q, "which candidate")
}

// SelectPrimary picks the primary match among ranked candidates. It returns
// nil when no candidate clears the confidence floor. For open-ended queries
// the most probable confident candidate wins; otherwise the best-scored one.
func SelectPrimary(query string, ranked []domain.Candidate, opts Options) *domain.Candidate {
	var confident []domain.Candidate
	for _, c := range ranked {
		if c.Score >= opts.ConfidenceFloor {
			confident = append(confident, c)
		}
	}
	if len(confident) == 0 {
		return nil
	}

	best := confident[0]
	if IsOpenEnded(query) {
		for _, c := range confident[1:] {
			if c.Probability > best.Probability ||
				(c.Probability == best.Probability && c.Score > best.Score) {
				best = c
			}
		}
	}
	return &best
}

func cmpDesc(a, b float64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}

package matching

import "github.com/alanyoungcy/marketinsight/internal/domain"

// Consensus fuses the two primary matches into one volume-weighted
// probability. When both volumes are zero it falls back to the plain mean.
// It returns nil when neither source has a primary match.
func Consensus(polymarket, kalshi *domain.Candidate) *float64 {
	var p float64
	switch {
	case polymarket != nil && kalshi != nil:
		total := polymarket.Volume + kalshi.Volume
		if total <= 0 {
			p = (polymarket.Probability + kalshi.Probability) / 2
		} else {
			p = (polymarket.Probability*polymarket.Volume + kalshi.Probability*kalshi.Volume) / total
		}
	case polymarket != nil:
		p = polymarket.Probability
	case kalshi != nil:
		p = kalshi.Probability
	default:
		return nil
	}
	return &p
}

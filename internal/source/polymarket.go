package source

import (
	"strings"

	"github.com/alanyoungcy/marketinsight/internal/domain"
	"github.com/alanyoungcy/marketinsight/internal/matching"
	"github.com/alanyoungcy/marketinsight/internal/platform/polymarket"
)

const topOutcomeLabel = "TOP OUTCOME"

// PolymarketPriceStrategies is the ordered price extraction for Gamma
// markets. Both read the outcome arrays: the "yes" outcome wins when its
// price is a valid probability, otherwise the highest-priced outcome. A
// price of exactly 0 is accepted here, unlike on Kalshi.
var PolymarketPriceStrategies = []PriceStrategy[*polymarket.APIMarket]{
	{Name: "yesOutcome", Extract: yesOutcomePrice},
	{Name: "topOutcome", Extract: topOutcomePrice},
}

func yesOutcomePrice(m *polymarket.APIMarket) (Price, bool) {
	prices := m.Prices()
	for i, outcome := range m.Outcomes {
		if strings.ToLower(outcome) != "yes" {
			continue
		}
		if i < len(prices) && inUnitInterval(prices[i]) {
			return Price{Probability: prices[i], Label: "YES"}, true
		}
		return Price{}, false
	}
	return Price{}, false
}

func topOutcomePrice(m *polymarket.APIMarket) (Price, bool) {
	prices := m.Prices()
	if len(prices) == 0 {
		return Price{}, false
	}
	top := 0
	for i := 1; i < len(prices); i++ {
		if prices[i] > prices[top] {
			top = i
		}
	}
	if !inUnitInterval(prices[top]) {
		return Price{}, false
	}
	label := topOutcomeLabel
	if top < len(m.Outcomes) {
		label = strings.ToUpper(m.Outcomes[top])
	}
	return Price{Probability: prices[top], Label: label}, true
}

// PolymarketAdapter builds candidates from Gamma search results.
type PolymarketAdapter struct {
	opts matching.Options
}

// NewPolymarketAdapter creates an adapter that keeps opts.TopN candidates.
func NewPolymarketAdapter(opts matching.Options) *PolymarketAdapter {
	return &PolymarketAdapter{opts: opts}
}

// Candidates scores every open market in events against query and returns
// the ranked top-N. A market's score is the better of its own question and
// its event title (weighted by the event's combined open volume).
func (a *PolymarketAdapter) Candidates(query string, events []polymarket.APIEvent) []domain.Candidate {
	var out []domain.Candidate

	for _, ev := range events {
		open := make([]*polymarket.APIMarket, 0, len(ev.Markets))
		eventVolume := 0.0
		for i := range ev.Markets {
			m := &ev.Markets[i]
			if !m.IsOpen() {
				continue
			}
			open = append(open, m)
			eventVolume += float64(m.Volume)
		}
		if len(open) == 0 {
			continue
		}
		eventScore := matching.Score(query, ev.Title, eventVolume)

		for _, m := range open {
			if c, ok := a.candidate(query, m, eventScore); ok {
				out = append(out, c)
			}
		}
	}

	return matching.Rank(out, a.opts)
}

func (a *PolymarketAdapter) candidate(query string, m *polymarket.APIMarket, eventScore float64) (domain.Candidate, bool) {
	title := strings.TrimSpace(m.Question)
	slug := strings.TrimSpace(m.Slug)
	if title == "" || slug == "" {
		return domain.Candidate{}, false
	}

	price, ok := firstPrice(PolymarketPriceStrategies, m)
	if !ok {
		return domain.Candidate{}, false
	}

	end, err := m.EndTime()
	if err != nil {
		return domain.Candidate{}, false
	}

	volume := float64(m.Volume)
	score := max(eventScore, matching.Score(query, title, volume))
	if score <= 0 {
		return domain.Candidate{}, false
	}

	var tokenID string
	if len(m.ClobTokenIDs) > 0 {
		tokenID = m.ClobTokenIDs[0]
	}

	return domain.Candidate{
		Source:           domain.SourcePolymarket,
		Title:            title,
		ID:               slug,
		Probability:      price.Probability,
		ProbabilityLabel: price.Label,
		Volume:           volume,
		CloseTime:        end,
		URL:              polymarket.EventURL(slug),
		Score:            score,
		Details: domain.Details{
			Liquidity:   float64(m.Liquidity),
			ClobTokenID: tokenID,
			Volume24h:   float64(m.Volume24hr),
		},
	}, true
}

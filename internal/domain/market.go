package domain

import "time"

// Source identifies the venue a candidate was drawn from.
type Source string

const (
	SourcePolymarket Source = "polymarket"
	SourceKalshi     Source = "kalshi"
)

// Candidate is a normalized, scored market record produced from one raw
// listing. Candidates are value objects and are never mutated after the
// adapter builds them.
type Candidate struct {
	Source           Source     `json:"source"`
	Title            string     `json:"title"`
	ID               string     `json:"id"` // slug on Polymarket, ticker on Kalshi
	Probability      float64    `json:"probability"`
	ProbabilityLabel string     `json:"probabilityLabel"`
	Volume           float64    `json:"volume"`
	CloseTime        *time.Time `json:"closeTime"`
	URL              string     `json:"url"`
	Score            float64    `json:"score"`
	Details          Details    `json:"details"`
}

// Details holds secondary per-venue metrics. They are passed through for
// presentation and never influence ranking.
type Details struct {
	Liquidity     float64  `json:"liquidity,omitempty"`
	ClobTokenID   string   `json:"clobTokenId,omitempty"`
	EventTicker   string   `json:"eventTicker,omitempty"`
	Volume24h     float64  `json:"volume24h,omitempty"`
	OpenInterest  float64  `json:"openInterest,omitempty"`
	YesBid        string   `json:"yesBid,omitempty"`
	YesAsk        string   `json:"yesAsk,omitempty"`
	PreviousPrice *float64 `json:"previousPrice,omitempty"`
}

// MarketSummary is a lightweight listing used by the search and trending
// endpoints.
type MarketSummary struct {
	ID            string     `json:"id"`
	Question      string     `json:"question"`
	Slug          string     `json:"slug"`
	Outcomes      []string   `json:"outcomes"`
	OutcomePrices []float64  `json:"outcomePrices"`
	Volume        float64    `json:"volume"`
	Volume24h     float64    `json:"volume24h"`
	Liquidity     float64    `json:"liquidity"`
	EndDate       *time.Time `json:"endDate"`
	ClobTokenIDs  []string   `json:"clobTokenIds"`
	URL           string     `json:"url"`
}

// MarketDetail pairs a market with its live orderbook. Orderbook is nil when
// the market has no tradable token or the book could not be fetched.
type MarketDetail struct {
	Market    MarketSummary      `json:"market"`
	Orderbook *OrderbookSnapshot `json:"orderbook"`
}

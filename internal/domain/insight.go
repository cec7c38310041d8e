package domain

import "time"

// Insight is the query-scoped aggregate returned to the presentation layer.
type Insight struct {
	Query                string      `json:"query"`
	EventTitle           string      `json:"eventTitle"`
	GeneratedAt          time.Time   `json:"generatedAt"`
	ConsensusProbability *float64    `json:"consensusProbability"`
	Polymarket           *Candidate  `json:"polymarket"`
	Kalshi               *Candidate  `json:"kalshi"`
	PolymarketCandidates []Candidate `json:"polymarketCandidates"`
	KalshiCandidates     []Candidate `json:"kalshiCandidates"`
	Analysis             string      `json:"analysis"`
}

// InsightSummary is the compact event published after each insight is built.
type InsightSummary struct {
	Query                string    `json:"query"`
	EventTitle           string    `json:"eventTitle"`
	ConsensusProbability *float64  `json:"consensusProbability"`
	GeneratedAt          time.Time `json:"generatedAt"`
}

// Summary returns the compact form of the insight.
func (i Insight) Summary() InsightSummary {
	return InsightSummary{
		Query:                i.Query,
		EventTitle:           i.EventTitle,
		ConsensusProbability: i.ConsensusProbability,
		GeneratedAt:          i.GeneratedAt,
	}
}

package source

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/marketinsight/internal/domain"
	"github.com/alanyoungcy/marketinsight/internal/matching"
	"github.com/alanyoungcy/marketinsight/internal/platform/kalshi"
)

// maxKalshiTitle is the longest market title considered. Longer titles are
// parlay-style combo markets that never read as a single question.
const maxKalshiTitle = 220

// KalshiPriceStrategies is the ordered price extraction for Kalshi markets:
// the last traded price, then the midpoint of a two-sided yes quote.
var KalshiPriceStrategies = []PriceStrategy[*kalshi.Market]{
	{Name: "lastTraded", Extract: lastTradedPrice},
	{Name: "bidAskMid", Extract: bidAskMidPrice},
}

func lastTradedPrice(m *kalshi.Market) (Price, bool) {
	last := m.LastPriceDollars.Decimal()
	if !last.IsPositive() {
		return Price{}, false
	}
	return Price{Probability: last.InexactFloat64()}, true
}

func bidAskMidPrice(m *kalshi.Market) (Price, bool) {
	bid := m.YesBidDollars.Decimal()
	ask := m.YesAskDollars.Decimal()
	if !bid.IsPositive() || !ask.IsPositive() {
		return Price{}, false
	}
	mid := bid.Add(ask).Div(decimal.NewFromInt(2))
	return Price{Probability: mid.InexactFloat64()}, true
}

// KalshiAdapter builds candidates from Kalshi events.
type KalshiAdapter struct {
	opts matching.Options
}

// NewKalshiAdapter creates an adapter that keeps opts.TopN candidates.
func NewKalshiAdapter(opts matching.Options) *KalshiAdapter {
	return &KalshiAdapter{opts: opts}
}

// Candidates scores every active market in events against query and
// returns the ranked top-N.
func (a *KalshiAdapter) Candidates(query string, events []kalshi.Event) []domain.Candidate {
	var out []domain.Candidate

	for i := range events {
		ev := &events[i]
		active := ev.ActiveMarkets()
		if len(active) == 0 {
			continue
		}
		eventVolume := 0.0
		for _, m := range active {
			eventVolume += float64(m.Volume)
		}
		eventScore := matching.Score(query, ev.Title, eventVolume)
		multi := len(active) > 1

		for j := range active {
			if c, ok := a.candidate(query, ev, &active[j], eventScore, multi); ok {
				out = append(out, c)
			}
		}
	}

	return matching.Rank(out, a.opts)
}

func (a *KalshiAdapter) candidate(query string, ev *kalshi.Event, m *kalshi.Market, eventScore float64, multi bool) (domain.Candidate, bool) {
	if m.Title == "" || m.Ticker == "" || utf8.RuneCountInString(m.Title) > maxKalshiTitle {
		return domain.Candidate{}, false
	}

	price, ok := firstPrice(KalshiPriceStrategies, m)
	if !ok || price.Probability <= 0 || price.Probability > 1 {
		return domain.Candidate{}, false
	}

	closeAt, err := m.Close()
	if err != nil {
		return domain.Candidate{}, false
	}

	volume := float64(m.Volume)
	score := max(eventScore, matching.Score(query, m.Title, volume))
	if score <= 0 {
		return domain.Candidate{}, false
	}

	eventTicker := ev.EventTicker
	if eventTicker == "" {
		eventTicker = m.EventTicker
	}

	details := domain.Details{
		EventTicker:  eventTicker,
		Volume24h:    float64(m.Volume24h),
		OpenInterest: float64(m.OpenInterest),
		YesBid:       m.YesBidDollars.OrZero(),
		YesAsk:       m.YesAskDollars.OrZero(),
	}
	if prev := m.PreviousPriceDollars.Decimal(); prev.IsPositive() {
		p := prev.InexactFloat64()
		details.PreviousPrice = &p
	}

	return domain.Candidate{
		Source:           domain.SourceKalshi,
		Title:            m.Title,
		ID:               m.Ticker,
		Probability:      price.Probability,
		ProbabilityLabel: outcomeLabel(m, multi),
		Volume:           volume,
		CloseTime:        closeAt,
		URL:              kalshi.MarketURL(eventTicker),
		Score:            score,
		Details:          details,
	}, true
}

// outcomeLabel names the outcome a multi-market event's market prices. The
// first present field of yes_sub_title and subtitle wins, even when it is
// blank; a blank label becomes "YES".
func outcomeLabel(m *kalshi.Market, multi bool) string {
	if !multi {
		return "YES"
	}
	var label string
	switch {
	case m.YesSubTitle != nil:
		label = *m.YesSubTitle
	case m.Subtitle != nil:
		label = *m.Subtitle
	}
	if label = strings.TrimSpace(label); label != "" {
		return label
	}
	return "YES"
}

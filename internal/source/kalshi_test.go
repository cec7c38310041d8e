package source_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/marketinsight/internal/domain"
	"github.com/alanyoungcy/marketinsight/internal/matching"
	"github.com/alanyoungcy/marketinsight/internal/platform/kalshi"
	"github.com/alanyoungcy/marketinsight/internal/source"
)

func decodeKalshi(t *testing.T, raw string) []kalshi.Event {
	t.Helper()
	var resp kalshi.EventsResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	return resp.Events
}

func kalshiPrice(m *kalshi.Market) (source.Price, bool) {
	for _, s := range source.KalshiPriceStrategies {
		if p, ok := s.Extract(m); ok {
			return p, true
		}
	}
	return source.Price{}, false
}

func TestKalshiPriceStrategies(t *testing.T) {
	tests := []struct {
		name string
		m    kalshi.Market
		want float64
		ok   bool
	}{
		{name: "last traded", m: kalshi.Market{LastPriceDollars: "0.4200", YesBidDollars: "0.1", YesAskDollars: "0.2"}, want: 0.42, ok: true},
		{name: "mid of quote", m: kalshi.Market{LastPriceDollars: "0", YesBidDollars: "0.31", YesAskDollars: "0.34"}, want: 0.325, ok: true},
		{name: "one sided quote", m: kalshi.Market{YesBidDollars: "0.31"}, ok: false},
		{name: "malformed", m: kalshi.Market{LastPriceDollars: "n/a"}, ok: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, ok := kalshiPrice(&tc.m)
			require.Equal(t, tc.ok, ok)
			if ok {
				require.InDelta(t, tc.want, p.Probability, 1e-9)
			}
		})
	}
}

const kalshiEvents = `{"events": [
  {
    "event_ticker": "KXFEDCHAIRNOM-26",
    "title": "Who will Trump nominate as Fed Chair?",
    "markets": [
      {"ticker": "KXFEDCHAIRNOM-26-KH", "title": "Kevin Hassett", "yes_sub_title": "Kevin Hassett", "status": "active",
       "last_price_dollars": "0.3800", "yes_bid_dollars": "0.3700", "yes_ask_dollars": "0.3900", "previous_price_dollars": "0.3500",
       "volume": 250000, "volume_24h": 1200, "open_interest": 90000, "close_time": "2026-06-30T14:00:00Z"},
      {"ticker": "KXFEDCHAIRNOM-26-KW", "title": "Kevin Warsh", "subtitle": " Kevin Warsh ", "status": "open",
       "last_price_dollars": "0", "yes_bid_dollars": "0.4400", "yes_ask_dollars": "0.4600",
       "volume": 180000, "expected_expiration_time": "2026-07-01T00:00:00Z"},
      {"ticker": "KXFEDCHAIRNOM-26-JS", "title": "Judy Shelton", "status": "closed",
       "last_price_dollars": "0.9900", "volume": 99999999},
      {"ticker": "KXFEDCHAIRNOM-26-CW", "title": "Christopher Waller", "status": "active",
       "last_price_dollars": "0", "yes_bid_dollars": "0", "yes_ask_dollars": "0.0200", "volume": 10},
      {"ticker": "KXFEDCHAIRNOM-26-XX", "title": "Someone Else", "status": "active",
       "last_price_dollars": "0.0100", "volume": 5, "close_time": "not a date"},
      {"ticker": "KXFEDCHAIRNOM-26-MB", "title": "Michelle Bowman", "status": "active",
       "last_price_dollars": "0.0300", "volume": 40}
    ]
  },
  {
    "event_ticker": "KXRAIN-NYC",
    "title": "Rain in NYC tomorrow?",
    "markets": [
      {"ticker": "KXRAIN-NYC-Y", "title": "Will it rain in NYC tomorrow?", "status": "active", "last_price_dollars": "0.5", "volume": 100}
    ]
  }
]}`

func TestKalshiCandidates(t *testing.T) {
	adapter := source.NewKalshiAdapter(matching.DefaultOptions())
	query := "Who will Trump nominate as Fed Chair?"

	cands := adapter.Candidates(query, decodeKalshi(t, kalshiEvents))
	require.Len(t, cands, 3)

	byTicker := map[string]domain.Candidate{}
	for _, c := range cands {
		byTicker[c.ID] = c
		require.Equal(t, domain.SourceKalshi, c.Source)
		require.Greater(t, c.Probability, 0.0)
		require.LessOrEqual(t, c.Probability, 1.0)
		require.Equal(t, "https://kalshi.com/markets/KXFEDCHAIRNOM-26", c.URL)
	}
	require.NotContains(t, byTicker, "KXFEDCHAIRNOM-26-JS", "closed market must never be a candidate")
	require.NotContains(t, byTicker, "KXFEDCHAIRNOM-26-CW", "no usable price")
	require.NotContains(t, byTicker, "KXFEDCHAIRNOM-26-XX", "unparsable close time")
	require.NotContains(t, byTicker, "KXRAIN-NYC-Y")

	// Market titles alone do not match; the event title carries the score.
	require.Equal(t, cands[0].Score, cands[1].Score)

	warsh := byTicker["KXFEDCHAIRNOM-26-KW"]
	require.Equal(t, "Kevin Warsh", warsh.ProbabilityLabel)
	require.InDelta(t, 0.45, warsh.Probability, 1e-9)
	require.Equal(t, 2026, warsh.CloseTime.Year())
	require.Equal(t, "0.4400", warsh.Details.YesBid)
	require.Nil(t, warsh.Details.PreviousPrice)

	hassett := byTicker["KXFEDCHAIRNOM-26-KH"]
	require.Equal(t, "Kevin Hassett", hassett.ProbabilityLabel)
	require.InDelta(t, 0.38, hassett.Probability, 1e-9)
	require.InDelta(t, 90000, hassett.Details.OpenInterest, 1e-9)
	require.NotNil(t, hassett.Details.PreviousPrice)
	require.InDelta(t, 0.35, *hassett.Details.PreviousPrice, 1e-9)

	primary := matching.SelectPrimary(query, cands, matching.DefaultOptions())
	require.NotNil(t, primary)
	require.Equal(t, "KXFEDCHAIRNOM-26-KW", primary.ID)
}

func TestKalshiSingleMarketLabel(t *testing.T) {
	adapter := source.NewKalshiAdapter(matching.DefaultOptions())
	cands := adapter.Candidates("rain nyc tomorrow", decodeKalshi(t, kalshiEvents))
	require.Len(t, cands, 1)
	require.Equal(t, "YES", cands[0].ProbabilityLabel)
	require.Equal(t, "https://kalshi.com/markets/KXRAIN-NYC", cands[0].URL)
	require.Equal(t, "0", cands[0].Details.YesBid)
}

const kalshiLabelEvents = `{"events": [
  {
    "event_ticker": "KXSENATE-28",
    "title": "Which party wins the Senate in 2028?",
    "markets": [
      {"ticker": "KXSENATE-28-D", "title": "Senate 2028", "yes_sub_title": "", "subtitle": "Democrats", "status": "active",
       "last_price_dollars": "0.5200", "volume": 900},
      {"ticker": "KXSENATE-28-R", "title": "Senate 2028", "yes_sub_title": null, "subtitle": "Republicans", "status": "active",
       "last_price_dollars": "0.4700", "volume": 800},
      {"ticker": "KXSENATE-28-O", "title": "Senate 2028", "yes_sub_title": "   ", "status": "active",
       "last_price_dollars": "0.0100", "volume": 10}
    ]
  }
]}`

func TestKalshiMultiMarketLabelFallback(t *testing.T) {
	adapter := source.NewKalshiAdapter(matching.DefaultOptions())
	cands := adapter.Candidates("senate 2028 party wins", decodeKalshi(t, kalshiLabelEvents))
	require.Len(t, cands, 3)

	labels := map[string]string{}
	for _, c := range cands {
		labels[c.ID] = c.ProbabilityLabel
	}
	// An empty yes_sub_title is present, so subtitle is not consulted.
	require.Equal(t, "YES", labels["KXSENATE-28-D"])
	require.Equal(t, "Republicans", labels["KXSENATE-28-R"])
	require.Equal(t, "YES", labels["KXSENATE-28-O"])
}

func TestKalshiSkipsOverlongTitles(t *testing.T) {
	title := "yes Bitcoin above 100k, " + strings.Repeat("yes Team wins, ", 20)
	events := []kalshi.Event{{
		EventTicker: "KXMVE",
		Title:       "Combo",
		Markets: []kalshi.Market{{
			Ticker:           "KXMVE-1",
			Title:            title,
			Status:           "active",
			LastPriceDollars: "0.2",
		}},
	}}
	require.Greater(t, len(title), 220)

	cands := source.NewKalshiAdapter(matching.DefaultOptions()).Candidates("bitcoin 100k", events)
	require.Empty(t, cands)
}

func TestKalshiTopNRespectsOptions(t *testing.T) {
	opts := matching.Options{ConfidenceFloor: matching.DefaultConfidenceFloor, TopN: 1}
	cands := source.NewKalshiAdapter(opts).Candidates("Trump Fed Chair nominate", decodeKalshi(t, kalshiEvents))
	require.Len(t, cands, 1)
}

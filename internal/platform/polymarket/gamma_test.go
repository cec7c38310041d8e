package polymarket_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/marketinsight/internal/domain"
	"github.com/alanyoungcy/marketinsight/internal/platform/polymarket"
)

const searchBody = `{
  "events": [
    {
      "id": "16085",
      "title": "Fed Chair nominee",
      "slug": "fed-chair-nominee",
      "active": true,
      "closed": false,
      "volume": 1523000.5,
      "markets": [
        {
          "id": "501",
          "question": "Will Trump nominate Kevin Hassett as Fed Chair?",
          "slug": "hassett-fed-chair",
          "active": "true",
          "closed": false,
          "outcomes": "[\"Yes\", \"No\"]",
          "outcomePrices": "[\"0.61\", \"0.39\"]",
          "clobTokenIds": "[\"111\", \"222\"]",
          "volume": "900000",
          "liquidity": 12000,
          "endDate": "2026-12-31T00:00:00Z"
        },
        {
          "id": "502",
          "question": "Will Trump nominate Kevin Warsh as Fed Chair?",
          "slug": "warsh-fed-chair",
          "active": true,
          "closed": true,
          "outcomes": ["Yes", "No"],
          "outcomePrices": "not json",
          "volume": null
        }
      ]
    }
  ]
}`

func TestPublicSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/public-search", r.URL.Path)
		require.Equal(t, "fed chair", r.URL.Query().Get("q"))
		require.Equal(t, "8", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(searchBody))
	}))
	defer srv.Close()

	events, err := polymarket.NewGammaClient(srv.URL).PublicSearch(context.Background(), "fed chair", 8)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Len(t, events[0].Markets, 2)

	open := events[0].Markets[0]
	require.True(t, open.IsOpen())
	require.Equal(t, []string{"Yes", "No"}, []string(open.Outcomes))
	require.Equal(t, []float64{0.61, 0.39}, open.Prices())
	require.Equal(t, []string{"111", "222"}, []string(open.ClobTokenIDs))
	require.InDelta(t, 900000, float64(open.Volume), 1e-9)

	end, err := open.EndTime()
	require.NoError(t, err)
	require.NotNil(t, end)
	require.Equal(t, 2026, end.Year())

	closed := events[0].Markets[1]
	require.False(t, closed.IsOpen())
	require.Equal(t, []string{"Yes", "No"}, []string(closed.Outcomes))
	require.Empty(t, closed.Prices())
	require.Zero(t, float64(closed.Volume))
}

func TestTrendingMarketsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, "/markets", r.URL.Path)
		require.Equal(t, "true", q.Get("active"))
		require.Equal(t, "false", q.Get("closed"))
		require.Equal(t, "volume_24hr", q.Get("order"))
		require.Equal(t, "false", q.Get("ascending"))
		require.Equal(t, "5", q.Get("limit"))
		_, _ = w.Write([]byte(`[{"id":"1","question":"Q?","slug":"q","volume24hr":"42.5"}]`))
	}))
	defer srv.Close()

	markets, err := polymarket.NewGammaClient(srv.URL).TrendingMarkets(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, markets, 1)

	summary := markets[0].ToSummary()
	require.Equal(t, "https://polymarket.com/event/q", summary.URL)
	require.InDelta(t, 42.5, summary.Volume24h, 1e-9)
	require.NotNil(t, summary.Outcomes)
	require.NotNil(t, summary.ClobTokenIDs)
}

func TestGetMarketBySlugNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := polymarket.NewGammaClient(srv.URL).GetMarketBySlug(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGammaStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusForbidden, domain.ErrUnauthorized},
		{http.StatusTooManyRequests, domain.ErrRateLimited},
		{http.StatusBadGateway, domain.ErrUpstream},
	}
	for _, tc := range tests {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tc.status)
			}))
			defer srv.Close()

			_, err := polymarket.NewGammaClient(srv.URL).PublicSearch(context.Background(), "x", 8)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestMarketIsOpenRequiresExplicitClosedFalse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{name: "closed false", raw: `{"active": true, "closed": false}`, want: true},
		{name: "closed string false", raw: `{"active": true, "closed": "false"}`, want: true},
		{name: "closed true", raw: `{"active": true, "closed": true}`, want: false},
		{name: "closed missing", raw: `{"active": true}`, want: false},
		{name: "closed null", raw: `{"active": true, "closed": null}`, want: false},
		{name: "inactive", raw: `{"active": false, "closed": false}`, want: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var m polymarket.APIMarket
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &m))
			require.Equal(t, tc.want, m.IsOpen())
		})
	}
}

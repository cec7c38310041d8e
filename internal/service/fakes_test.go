package service_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/marketinsight/internal/cache"
	"github.com/alanyoungcy/marketinsight/internal/domain"
	"github.com/alanyoungcy/marketinsight/internal/platform/kalshi"
	"github.com/alanyoungcy/marketinsight/internal/platform/polymarket"
	"github.com/alanyoungcy/marketinsight/internal/platform/xai"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newLoader() *cache.Loader {
	return cache.NewLoader(cache.NewMemoryStore(), discardLogger())
}

type fakeGamma struct {
	events  []polymarket.APIEvent
	markets []polymarket.APIMarket
	bySlug  map[string]polymarket.APIMarket
	err     error
	hook    func(ctx context.Context)

	searches  atomic.Int32
	lastQuery atomic.Value
	lastLimit atomic.Int32
}

func (f *fakeGamma) PublicSearch(ctx context.Context, query string, limit int) ([]polymarket.APIEvent, error) {
	f.searches.Add(1)
	f.lastQuery.Store(query)
	f.lastLimit.Store(int32(limit))
	if f.hook != nil {
		f.hook(ctx)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.events, f.err
}

func (f *fakeGamma) TrendingMarkets(_ context.Context, limit int) ([]polymarket.APIMarket, error) {
	f.lastLimit.Store(int32(limit))
	return f.markets, f.err
}

func (f *fakeGamma) GetMarketBySlug(_ context.Context, slug string) (polymarket.APIMarket, error) {
	if f.err != nil {
		return polymarket.APIMarket{}, f.err
	}
	m, ok := f.bySlug[slug]
	if !ok {
		return polymarket.APIMarket{}, domain.ErrNotFound
	}
	return m, nil
}

type fakeKalshi struct {
	events []kalshi.Event
	book   kalshi.Orderbook
	err    error
	hook   func(ctx context.Context)

	calls atomic.Int32
}

func (f *fakeKalshi) GetEvents(ctx context.Context, _ int) ([]kalshi.Event, error) {
	f.calls.Add(1)
	if f.hook != nil {
		f.hook(ctx)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.events, f.err
}

func (f *fakeKalshi) GetOrderbook(_ context.Context, ticker string) (kalshi.Orderbook, error) {
	if f.err != nil {
		return kalshi.Orderbook{}, f.err
	}
	b := f.book
	b.Ticker = ticker
	return b, nil
}

type fakeClob struct {
	book domain.OrderbookSnapshot
	err  error
}

func (f *fakeClob) GetBook(_ context.Context, tokenID string) (domain.OrderbookSnapshot, error) {
	if f.err != nil {
		return domain.OrderbookSnapshot{}, f.err
	}
	b := f.book
	b.AssetID = tokenID
	return b, nil
}

type fakeAnalyst struct {
	configured bool
	resp       *xai.Response
	err        error
	block      bool

	mu         sync.Mutex
	lastSystem string
	lastUser   string
}

func (f *fakeAnalyst) Configured() bool { return f.configured }
func (f *fakeAnalyst) Model() string    { return "test-model" }

func (f *fakeAnalyst) Respond(ctx context.Context, system, user string) (*xai.Response, error) {
	f.mu.Lock()
	f.lastSystem, f.lastUser = system, user
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.resp, f.err
}

type recordingPublisher struct {
	mu       sync.Mutex
	channels []string
	payloads [][]byte
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels = append(p.channels, channel)
	p.payloads = append(p.payloads, payload)
	return nil
}

// rendezvous releases its participants only once all of them have arrived.
// A participant that waits longer than the timeout reports false.
type rendezvous struct {
	arrived sync.WaitGroup
	all     chan struct{}
	timeout time.Duration
}

func newRendezvous(n int, timeout time.Duration) *rendezvous {
	r := &rendezvous{all: make(chan struct{}), timeout: timeout}
	r.arrived.Add(n)
	go func() {
		r.arrived.Wait()
		close(r.all)
	}()
	return r
}

func (r *rendezvous) arrive() bool {
	r.arrived.Done()
	select {
	case <-r.all:
		return true
	case <-time.After(r.timeout):
		return false
	}
}

func pmEvents(t *testing.T, raw string) []polymarket.APIEvent {
	t.Helper()
	var resp polymarket.SearchResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	return resp.Events
}

func kalshiEvents(t *testing.T, raw string) []kalshi.Event {
	t.Helper()
	var resp kalshi.EventsResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	return resp.Events
}

const fedPolymarket = `{"events": [{
  "title": "Fed decision in December",
  "markets": [
    {"question": "Fed decreases interest rates by 25 bps after December meeting?", "slug": "fed-cut-25-dec",
     "active": true, "closed": false, "outcomes": "[\"Yes\",\"No\"]", "outcomePrices": "[\"0.70\",\"0.30\"]",
     "volume": "1000000", "clobTokenIds": "[\"tok-yes\",\"tok-no\"]"},
    {"question": "Will the Fed hold in December?", "slug": "fed-hold-dec",
     "active": true, "closed": false, "outcomes": "[\"Yes\",\"No\"]", "outcomePrices": "[\"0.25\",\"0.75\"]",
     "volume": "500000"}
  ]
}]}`

const fedKalshi = `{"events": [{
  "event_ticker": "KXFEDDECISION-25DEC",
  "title": "Fed decision in December",
  "markets": [
    {"ticker": "KXFEDDECISION-25DEC-C25", "title": "Fed cuts interest rates by 25 bps in December?", "status": "active",
     "last_price_dollars": "0.4000", "volume": 0, "yes_sub_title": "Cut 25bps"},
    {"ticker": "KXFEDDECISION-25DEC-H0", "title": "Fed holds steady in December?", "status": "active",
     "last_price_dollars": "0.1000", "volume": 0, "yes_sub_title": "Hold"}
  ]
}]}`

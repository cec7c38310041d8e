package service

import (
	"context"

	"github.com/alanyoungcy/marketinsight/internal/domain"
	"github.com/alanyoungcy/marketinsight/internal/platform/kalshi"
	"github.com/alanyoungcy/marketinsight/internal/platform/polymarket"
	"github.com/alanyoungcy/marketinsight/internal/platform/xai"
)

// PolymarketAPI is the subset of the Gamma client the services use.
type PolymarketAPI interface {
	PublicSearch(ctx context.Context, query string, limit int) ([]polymarket.APIEvent, error)
	TrendingMarkets(ctx context.Context, limit int) ([]polymarket.APIMarket, error)
	GetMarketBySlug(ctx context.Context, slug string) (polymarket.APIMarket, error)
}

// OrderbookAPI reads a live Polymarket orderbook.
type OrderbookAPI interface {
	GetBook(ctx context.Context, tokenID string) (domain.OrderbookSnapshot, error)
}

// KalshiAPI is the subset of the Kalshi client the services use.
type KalshiAPI interface {
	GetEvents(ctx context.Context, limit int) ([]kalshi.Event, error)
	GetOrderbook(ctx context.Context, ticker string) (kalshi.Orderbook, error)
}

// Analyst produces the external news and social analysis.
type Analyst interface {
	Configured() bool
	Model() string
	Respond(ctx context.Context, system, user string) (*xai.Response, error)
}

// Compile-time interface checks.
var (
	_ PolymarketAPI = (*polymarket.GammaClient)(nil)
	_ OrderbookAPI  = (*polymarket.ClobClient)(nil)
	_ KalshiAPI     = (*kalshi.Client)(nil)
	_ Analyst       = (*xai.Client)(nil)
)

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/alanyoungcy/marketinsight/internal/cache"
	"github.com/alanyoungcy/marketinsight/internal/domain"
)

// List limits for the market browsing endpoints.
const (
	DefaultListLimit = 6
	MaxListLimit     = 20

	// searchEventLimit is how many events a topic search pulls before
	// flattening them into markets.
	searchEventLimit = 10
)

// MarketService serves market browsing: topic search, trending markets,
// single-market detail with its live book, and Kalshi orderbooks.
type MarketService struct {
	gamma  PolymarketAPI
	clob   OrderbookAPI
	kalshi KalshiAPI
	loader *cache.Loader
	ttl    time.Duration
	logger *slog.Logger
}

// NewMarketService creates a MarketService. Results are cached for ttl.
func NewMarketService(
	gamma PolymarketAPI,
	clob OrderbookAPI,
	k KalshiAPI,
	loader *cache.Loader,
	ttl time.Duration,
	logger *slog.Logger,
) *MarketService {
	return &MarketService{
		gamma:  gamma,
		clob:   clob,
		kalshi: k,
		loader: loader,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "market_service")),
	}
}

// ClampLimit maps a requested list size into [1, MaxListLimit], using
// DefaultListLimit when none was given.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

// Search returns up to limit open Polymarket markets for a topic, in the
// relevance order of the Gamma search.
func (s *MarketService) Search(ctx context.Context, query string, limit int) ([]domain.MarketSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("market_service: search: %w", domain.ErrInvalidQuery)
	}
	limit = ClampLimit(limit)

	key := "search:" + query + ":" + strconv.Itoa(limit)
	out, err := cache.GetOrFill(ctx, s.loader, key, s.ttl, func(ctx context.Context) ([]domain.MarketSummary, error) {
		events, err := s.gamma.PublicSearch(ctx, query, searchEventLimit)
		if err != nil {
			return nil, err
		}
		flat := make([]domain.MarketSummary, 0, limit)
		for _, ev := range events {
			for i := range ev.Markets {
				if ev.Markets[i].IsOpen() {
					flat = append(flat, ev.Markets[i].ToSummary())
				}
			}
			if len(flat) >= limit {
				break
			}
		}
		if len(flat) > limit {
			flat = flat[:limit]
		}
		return flat, nil
	})
	if err != nil {
		return nil, fmt.Errorf("market_service: search %q: %w", query, err)
	}
	return out, nil
}

// Trending returns up to limit open markets ordered by 24h volume.
func (s *MarketService) Trending(ctx context.Context, limit int) ([]domain.MarketSummary, error) {
	limit = ClampLimit(limit)

	key := "trending:" + strconv.Itoa(limit)
	out, err := cache.GetOrFill(ctx, s.loader, key, s.ttl, func(ctx context.Context) ([]domain.MarketSummary, error) {
		markets, err := s.gamma.TrendingMarkets(ctx, limit)
		if err != nil {
			return nil, err
		}
		summaries := make([]domain.MarketSummary, 0, len(markets))
		for i := range markets {
			summaries = append(summaries, markets[i].ToSummary())
		}
		return summaries, nil
	})
	if err != nil {
		return nil, fmt.Errorf("market_service: trending: %w", err)
	}
	return out, nil
}

// Detail returns a market by slug with the live orderbook of its first
// outcome token. A missing or failing book leaves Orderbook nil.
func (s *MarketService) Detail(ctx context.Context, slug string) (domain.MarketDetail, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return domain.MarketDetail{}, fmt.Errorf("market_service: detail: %w", domain.ErrInvalidQuery)
	}

	out, err := cache.GetOrFill(ctx, s.loader, "detail:"+slug, s.ttl, func(ctx context.Context) (domain.MarketDetail, error) {
		m, err := s.gamma.GetMarketBySlug(ctx, slug)
		if err != nil {
			return domain.MarketDetail{}, err
		}
		detail := domain.MarketDetail{Market: m.ToSummary()}
		if len(m.ClobTokenIDs) == 0 {
			return detail, nil
		}
		book, err := s.clob.GetBook(ctx, m.ClobTokenIDs[0])
		if err != nil {
			s.logger.WarnContext(ctx, "orderbook unavailable",
				slog.String("slug", slug),
				slog.String("error", err.Error()),
			)
			return detail, nil
		}
		detail.Orderbook = &book
		return detail, nil
	})
	if err != nil {
		return domain.MarketDetail{}, fmt.Errorf("market_service: detail %s: %w", slug, err)
	}
	return out, nil
}

// KalshiOrderbook returns the live book of a Kalshi market. It is not
// cached.
func (s *MarketService) KalshiOrderbook(ctx context.Context, ticker string) (domain.OrderbookSnapshot, error) {
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return domain.OrderbookSnapshot{}, fmt.Errorf("market_service: kalshi orderbook: %w", domain.ErrInvalidQuery)
	}
	book, err := s.kalshi.GetOrderbook(ctx, ticker)
	if err != nil {
		return domain.OrderbookSnapshot{}, fmt.Errorf("market_service: kalshi orderbook %s: %w", ticker, err)
	}
	return book.ToSnapshot(), nil
}

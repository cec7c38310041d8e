package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/marketinsight/internal/domain"
)

// MarketService defines the methods that the market handler requires from the
// service layer. It is declared locally so the handler package does not depend
// on the concrete service implementation.
type MarketService interface {
	Search(ctx context.Context, query string, limit int) ([]domain.MarketSummary, error)
	Trending(ctx context.Context, limit int) ([]domain.MarketSummary, error)
	Detail(ctx context.Context, slug string) (domain.MarketDetail, error)
	KalshiOrderbook(ctx context.Context, ticker string) (domain.OrderbookSnapshot, error)
}

// MarketHandler serves market browsing endpoints.
type MarketHandler struct {
	markets MarketService
	logger  *slog.Logger
}

// NewMarketHandler creates a MarketHandler with the given service and logger.
func NewMarketHandler(markets MarketService, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{
		markets: markets,
		logger:  logger,
	}
}

type marketListResponse struct {
	Markets []domain.MarketSummary `json:"markets"`
	Count   int                    `json:"count"`
}

// Search lists open markets for a topic.
// GET /api/markets/search?q=...&limit=6
func (h *MarketHandler) Search(w http.ResponseWriter, r *http.Request) {
	markets, err := h.markets.Search(r.Context(), r.URL.Query().Get("q"), parseLimit(r))
	if err != nil {
		writeServiceError(w, r, h.logger, "failed to search markets", err)
		return
	}
	writeJSON(w, http.StatusOK, marketListResponse{Markets: markets, Count: len(markets)})
}

// Trending lists markets by 24h volume.
// GET /api/markets/trending?limit=6
func (h *MarketHandler) Trending(w http.ResponseWriter, r *http.Request) {
	markets, err := h.markets.Trending(r.Context(), parseLimit(r))
	if err != nil {
		writeServiceError(w, r, h.logger, "failed to list trending markets", err)
		return
	}
	writeJSON(w, http.StatusOK, marketListResponse{Markets: markets, Count: len(markets)})
}

// GetMarket returns a market and its live book.
// GET /api/markets/{slug}
func (h *MarketHandler) GetMarket(w http.ResponseWriter, r *http.Request) {
	slug := pathParam(r, "slug")
	if slug == "" {
		writeError(w, http.StatusBadRequest, "missing market slug")
		return
	}

	detail, err := h.markets.Detail(r.Context(), slug)
	if err != nil {
		writeServiceError(w, r, h.logger, "failed to get market", err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// KalshiOrderbook returns the book of a Kalshi market.
// GET /api/kalshi/markets/{ticker}/orderbook
func (h *MarketHandler) KalshiOrderbook(w http.ResponseWriter, r *http.Request) {
	ticker := pathParam(r, "ticker")
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "missing market ticker")
		return
	}

	book, err := h.markets.KalshiOrderbook(r.Context(), ticker)
	if err != nil {
		writeServiceError(w, r, h.logger, "failed to get kalshi orderbook", err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

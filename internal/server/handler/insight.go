package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/marketinsight/internal/domain"
)

// InsightService is the part of the service layer the insight handler uses.
type InsightService interface {
	GetInsight(ctx context.Context, query string) (domain.Insight, error)
}

// InsightHandler serves the insight endpoint.
type InsightHandler struct {
	insights InsightService
	logger   *slog.Logger
}

// NewInsightHandler creates an InsightHandler.
func NewInsightHandler(insights InsightService, logger *slog.Logger) *InsightHandler {
	return &InsightHandler{insights: insights, logger: logger}
}

// GetInsight builds the insight for a free-text query.
// GET /api/insight?q=...
func (h *InsightHandler) GetInsight(w http.ResponseWriter, r *http.Request) {
	insight, err := h.insights.GetInsight(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, r, h.logger, "failed to build insight", err)
		return
	}
	writeJSON(w, http.StatusOK, insight)
}

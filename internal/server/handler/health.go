package handler

import (
	"net/http"
	"time"
)

// HealthHandler serves the health-check endpoint.
type HealthHandler struct {
	cacheBackend string
	analysis     bool
	startedAt    time.Time
}

// NewHealthHandler creates a HealthHandler. cacheBackend names the listing
// cache in use and analysis reports whether the analyst has credentials.
func NewHealthHandler(cacheBackend string, analysis bool) *HealthHandler {
	return &HealthHandler{
		cacheBackend: cacheBackend,
		analysis:     analysis,
		startedAt:    time.Now().UTC(),
	}
}

// HealthCheck responds with a simple JSON status indicating the server is alive.
// GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
		"cache":          h.cacheBackend,
		"analysis":       h.analysis,
	})
}

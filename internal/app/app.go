// Package app provides the top-level application lifecycle for the insight
// service. It wires upstream clients, caches, services and the HTTP server
// and runs them until the context is cancelled.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/marketinsight/internal/cache"
	"github.com/alanyoungcy/marketinsight/internal/config"
	"github.com/alanyoungcy/marketinsight/internal/domain"
	"github.com/alanyoungcy/marketinsight/internal/matching"
	"github.com/alanyoungcy/marketinsight/internal/server"
	"github.com/alanyoungcy/marketinsight/internal/server/handler"
	"github.com/alanyoungcy/marketinsight/internal/server/ws"
	"github.com/alanyoungcy/marketinsight/internal/service"
)

const shutdownTimeout = 10 * time.Second

// App is the root application object. It owns the configuration, logger, and a
// list of cleanup functions that are called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// InsightConfig maps the configuration onto the orchestrator settings.
func InsightConfig(cfg *config.Config) service.InsightConfig {
	return service.InsightConfig{
		Matching: matching.Options{
			ConfidenceFloor: cfg.Matching.ConfidenceFloor,
			TopN:            cfg.Matching.TopN,
		},
		SearchLimit:      cfg.Insight.SearchLimit,
		KalshiEventLimit: cfg.Insight.KalshiEventLimit,
		SearchTTL:        cfg.Insight.SearchTTL.Duration,
		EventsTTL:        cfg.Insight.EventsTTL.Duration,
		UpstreamTimeout:  cfg.Insight.UpstreamTimeout.Duration,
		AnalysisTimeout:  cfg.Insight.AnalysisTimeout.Duration,
	}
}

func (a *App) wire(ctx context.Context) (*Dependencies, error) {
	deps, cleanup, err := Wire(ctx, a.cfg, a.logger)
	if err != nil {
		return nil, fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)
	a.logger.InfoContext(ctx, "dependencies wired",
		slog.String("cache", deps.CacheBackend),
		slog.Bool("kalshi_signed", deps.Kalshi.Signed()),
		slog.Bool("analysis", deps.Analyst.Configured()),
	)
	return deps, nil
}

// Run wires all dependencies, starts the WebSocket hub and the HTTP server,
// and blocks until the context is cancelled. On return the server has been
// shut down.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting application",
		slog.String("log_level", a.cfg.LogLevel),
		slog.Int("port", a.cfg.Server.Port),
	)

	deps, err := a.wire(ctx)
	if err != nil {
		return err
	}

	// With Redis the service publishes to the bus and the hub subscribes,
	// so every instance's clients see every insight.
	hub := ws.NewHub(deps.SignalBus, a.logger)
	var publisher domain.Publisher = hub
	if deps.SignalBus != nil {
		publisher = deps.SignalBus
	}

	loader := cache.NewLoader(deps.Store, a.logger)
	insights := service.NewInsightService(deps.Gamma, deps.Kalshi, deps.Analyst, loader, publisher, InsightConfig(a.cfg), a.logger)
	markets := service.NewMarketService(deps.Gamma, deps.Clob, deps.Kalshi, loader, a.cfg.Cache.MarketTTL.Duration, a.logger)

	srv := server.NewServer(
		server.Config{
			Port:        a.cfg.Server.Port,
			CORSOrigins: a.cfg.Server.CORSOrigins,
			RateLimit:   a.cfg.Server.RateLimit,
			RateWindow:  a.cfg.Server.RateWindow.Duration,
		},
		server.Handlers{
			Health:  handler.NewHealthHandler(deps.CacheBackend, deps.Analyst.Configured()),
			Insight: handler.NewInsightHandler(insights, a.logger),
			Markets: handler.NewMarketHandler(markets, a.logger),
		},
		hub, deps.RateLimiter, a.logger,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return hub.Run(ctx)
	})
	g.Go(srv.Start)
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return context.Canceled
	}
	return err
}

// Query builds one insight and writes it to w as indented JSON.
func (a *App) Query(ctx context.Context, query string, w io.Writer) error {
	deps, err := a.wire(ctx)
	if err != nil {
		return err
	}

	loader := cache.NewLoader(deps.Store, a.logger)
	insights := service.NewInsightService(deps.Gamma, deps.Kalshi, deps.Analyst, loader, deps.SignalBus, InsightConfig(a.cfg), a.logger)

	insight, err := insights.GetInsight(ctx, query)
	if err != nil {
		return fmt.Errorf("app: query: %w", err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(insight)
}

// Close tears down all resources in reverse registration order. It is safe to
// call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down application")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

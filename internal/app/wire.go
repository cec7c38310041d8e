package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/alanyoungcy/marketinsight/internal/cache"
	"github.com/alanyoungcy/marketinsight/internal/cache/redis"
	"github.com/alanyoungcy/marketinsight/internal/config"
	"github.com/alanyoungcy/marketinsight/internal/domain"
	"github.com/alanyoungcy/marketinsight/internal/platform/kalshi"
	"github.com/alanyoungcy/marketinsight/internal/platform/polymarket"
	"github.com/alanyoungcy/marketinsight/internal/platform/xai"
)

// Dependencies bundles the upstream clients and cache backends the
// application runs on. It is constructed by Wire and torn down by the
// returned cleanup function.
type Dependencies struct {
	// Upstreams
	Gamma   *polymarket.GammaClient
	Clob    *polymarket.ClobClient
	Kalshi  *kalshi.Client
	Analyst *xai.Client

	// Caches. RateLimiter and SignalBus are nil on the memory backend.
	Store        cache.Store
	CacheBackend string
	RateLimiter  domain.RateLimiter
	SignalBus    domain.SignalBus
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{
		Gamma: polymarket.NewGammaClient(cfg.Polymarket.GammaHost),
		Clob:  polymarket.NewClobClient(cfg.Polymarket.ClobHost),
		Analyst: xai.NewClient(xai.Config{
			BaseURL:         cfg.XAI.BaseURL,
			APIKey:          cfg.XAI.APIKey,
			Model:           cfg.XAI.Model,
			MaxOutputTokens: cfg.XAI.MaxOutputTokens,
			MaxToolCalls:    cfg.XAI.MaxToolCalls,
			SearchLookback:  cfg.XAI.SearchLookback.Duration,
		}),
	}

	// --- Kalshi (signed only when credentials are configured) ---
	deps.Kalshi = kalshi.NewClient(cfg.Kalshi.BaseURL, cfg.Kalshi.ApiKey)
	if cfg.Kalshi.RsaPrivateKeyPath != "" {
		pemBytes, err := os.ReadFile(cfg.Kalshi.RsaPrivateKeyPath)
		if err != nil {
			return nil, nil, fmt.Errorf("wire: kalshi key: %w", err)
		}
		if err := deps.Kalshi.SetRSAPrivateKey(pemBytes); err != nil {
			return nil, nil, fmt.Errorf("wire: kalshi key: %w", err)
		}
	}

	// --- Listing cache ---
	deps.Store = cache.NewMemoryStore()
	deps.CacheBackend = "memory"
	if strings.EqualFold(cfg.Cache.Backend, "redis") {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			logger.WarnContext(ctx, "redis unavailable, using in-memory cache",
				slog.String("addr", cfg.Redis.Addr),
				slog.String("error", err.Error()),
			)
		} else {
			closers = append(closers, func() { _ = redisClient.Close() })
			deps.Store = redis.NewListingStore(redisClient, logger)
			deps.CacheBackend = "redis"
			deps.RateLimiter = redis.NewRateLimiter(redisClient)
			deps.SignalBus = redis.NewSignalBus(redisClient)
		}
	}

	return deps, cleanup, nil
}

// Package config defines the top-level configuration for the insight service
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by INSIGHT_* environment variables.
type Config struct {
	Polymarket PolymarketConfig `toml:"polymarket"`
	Kalshi     KalshiConfig     `toml:"kalshi"`
	XAI        XAIConfig        `toml:"xai"`
	Matching   MatchingConfig   `toml:"matching"`
	Cache      CacheConfig      `toml:"cache"`
	Redis      RedisConfig      `toml:"redis"`
	Insight    InsightConfig    `toml:"insight"`
	Server     ServerConfig     `toml:"server"`
	LogLevel   string           `toml:"log_level"`
}

// PolymarketConfig holds Polymarket API endpoints.
type PolymarketConfig struct {
	GammaHost string `toml:"gamma_host"`
	ClobHost  string `toml:"clob_host"`
}

// KalshiConfig holds the Kalshi endpoint and optional signing credentials.
// Requests are unsigned unless both ApiKey and RsaPrivateKeyPath are set.
type KalshiConfig struct {
	BaseURL           string `toml:"base_url"`
	ApiKey            string `toml:"api_key"`
	RsaPrivateKeyPath string `toml:"rsa_private_key_path"`
}

// XAIConfig holds the analyst endpoint and request shaping.
type XAIConfig struct {
	BaseURL         string   `toml:"base_url"`
	APIKey          string   `toml:"api_key"`
	Model           string   `toml:"model"`
	MaxOutputTokens int      `toml:"max_output_tokens"`
	MaxToolCalls    int      `toml:"max_tool_calls"`
	SearchLookback  duration `toml:"search_lookback"`
}

// MatchingConfig tunes candidate selection.
type MatchingConfig struct {
	ConfidenceFloor float64 `toml:"confidence_floor"`
	TopN            int     `toml:"top_n"`
}

// CacheConfig selects the listing cache backend.
type CacheConfig struct {
	// Backend is "redis" or "memory". The redis backend falls back to memory
	// when the server is unreachable at startup.
	Backend   string   `toml:"backend"`
	MarketTTL duration `toml:"market_ttl"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// InsightConfig holds orchestrator limits, cache lifetimes and deadlines.
type InsightConfig struct {
	SearchLimit      int      `toml:"search_limit"`
	KalshiEventLimit int      `toml:"kalshi_event_limit"`
	SearchTTL        duration `toml:"search_ttl"`
	EventsTTL        duration `toml:"events_ttl"`
	UpstreamTimeout  duration `toml:"upstream_timeout"`
	AnalysisTimeout  duration `toml:"analysis_timeout"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ServerConfig holds HTTP server parameters. RateLimit of zero disables the
// per-client limiter.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	RateLimit   int      `toml:"rate_limit"`
	RateWindow  duration `toml:"rate_window"`
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Polymarket: PolymarketConfig{
			GammaHost: "https://gamma-api.polymarket.com",
			ClobHost:  "https://clob.polymarket.com",
		},
		Kalshi: KalshiConfig{
			BaseURL: "https://api.elections.kalshi.com/trade-api/v2",
		},
		XAI: XAIConfig{
			BaseURL:         "https://api.x.ai/v1",
			Model:           "grok-4-1-fast-non-reasoning",
			MaxOutputTokens: 500,
			MaxToolCalls:    4,
			SearchLookback:  duration{14 * 24 * time.Hour},
		},
		Matching: MatchingConfig{
			ConfidenceFloor: 0.34,
			TopN:            3,
		},
		Cache: CacheConfig{
			Backend:   "memory",
			MarketTTL: duration{30 * time.Second},
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			PoolSize:   10,
			MaxRetries: 3,
		},
		Insight: InsightConfig{
			SearchLimit:      8,
			KalshiEventLimit: 200,
			SearchTTL:        duration{30 * time.Second},
			EventsTTL:        duration{5 * time.Minute},
			UpstreamTimeout:  duration{10 * time.Second},
			AnalysisTimeout:  duration{30 * time.Second},
		},
		Server: ServerConfig{
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
			RateLimit:   0,
			RateWindow:  duration{time.Minute},
		},
		LogLevel: "info",
	}
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validBackends = map[string]bool{
	"memory": true,
	"redis":  true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Polymarket.GammaHost == "" {
		errs = append(errs, "polymarket: gamma_host must not be empty")
	}
	if c.Polymarket.ClobHost == "" {
		errs = append(errs, "polymarket: clob_host must not be empty")
	}

	if c.Kalshi.BaseURL == "" {
		errs = append(errs, "kalshi: base_url must not be empty")
	}
	if (c.Kalshi.ApiKey == "") != (c.Kalshi.RsaPrivateKeyPath == "") {
		errs = append(errs, "kalshi: api_key and rsa_private_key_path must be set together")
	}

	if c.XAI.BaseURL == "" {
		errs = append(errs, "xai: base_url must not be empty")
	}
	if c.XAI.Model == "" {
		errs = append(errs, "xai: model must not be empty")
	}
	if c.XAI.MaxOutputTokens < 1 {
		errs = append(errs, "xai: max_output_tokens must be >= 1")
	}
	if c.XAI.MaxToolCalls < 0 {
		errs = append(errs, "xai: max_tool_calls must be >= 0")
	}

	if c.Matching.ConfidenceFloor < 0 || c.Matching.ConfidenceFloor > 1 {
		errs = append(errs, fmt.Sprintf("matching: confidence_floor must be within [0, 1], got %g", c.Matching.ConfidenceFloor))
	}
	if c.Matching.TopN < 1 {
		errs = append(errs, "matching: top_n must be >= 1")
	}

	if !validBackends[strings.ToLower(c.Cache.Backend)] {
		errs = append(errs, fmt.Sprintf("cache: unknown backend %q (valid: memory, redis)", c.Cache.Backend))
	}
	if c.Cache.MarketTTL.Duration <= 0 {
		errs = append(errs, "cache: market_ttl must be > 0")
	}
	if strings.EqualFold(c.Cache.Backend, "redis") {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	if c.Insight.SearchLimit < 1 {
		errs = append(errs, "insight: search_limit must be >= 1")
	}
	if c.Insight.KalshiEventLimit < 1 {
		errs = append(errs, "insight: kalshi_event_limit must be >= 1")
	}
	if c.Insight.SearchTTL.Duration <= 0 || c.Insight.EventsTTL.Duration <= 0 {
		errs = append(errs, "insight: search_ttl and events_ttl must be > 0")
	}
	if c.Insight.UpstreamTimeout.Duration <= 0 || c.Insight.AnalysisTimeout.Duration <= 0 {
		errs = append(errs, "insight: upstream_timeout and analysis_timeout must be > 0")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, "server: rate_limit must be >= 0")
	}
	if c.Server.RateLimit > 0 && c.Server.RateWindow.Duration <= 0 {
		errs = append(errs, "server: rate_window must be > 0 when rate_limit is set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

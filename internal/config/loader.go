package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies INSIGHT_* environment variable overrides, and
// returns the final Config. A missing file leaves the defaults in place. The
// returned Config has NOT been validated; the caller should invoke
// Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known INSIGHT_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty).
func applyEnvOverrides(cfg *Config) {
	// ── Polymarket ──
	setStr(&cfg.Polymarket.GammaHost, "INSIGHT_POLYMARKET_GAMMA_HOST")
	setStr(&cfg.Polymarket.ClobHost, "INSIGHT_POLYMARKET_CLOB_HOST")

	// ── Kalshi ──
	setStr(&cfg.Kalshi.BaseURL, "INSIGHT_KALSHI_BASE_URL")
	setStr(&cfg.Kalshi.ApiKey, "INSIGHT_KALSHI_API_KEY")
	setStr(&cfg.Kalshi.RsaPrivateKeyPath, "INSIGHT_KALSHI_RSA_PRIVATE_KEY_PATH")

	// ── xAI ──
	setStr(&cfg.XAI.BaseURL, "INSIGHT_XAI_BASE_URL")
	setStr(&cfg.XAI.APIKey, "XAI_API_KEY") // compatibility alias
	setStr(&cfg.XAI.APIKey, "INSIGHT_XAI_API_KEY")
	setStr(&cfg.XAI.Model, "XAI_MODEL") // compatibility alias
	setStr(&cfg.XAI.Model, "INSIGHT_XAI_MODEL")
	setInt(&cfg.XAI.MaxOutputTokens, "INSIGHT_XAI_MAX_OUTPUT_TOKENS")
	setInt(&cfg.XAI.MaxToolCalls, "INSIGHT_XAI_MAX_TOOL_CALLS")
	setDuration(&cfg.XAI.SearchLookback, "INSIGHT_XAI_SEARCH_LOOKBACK")

	// ── Matching ──
	setFloat64(&cfg.Matching.ConfidenceFloor, "INSIGHT_MATCHING_CONFIDENCE_FLOOR")
	setInt(&cfg.Matching.TopN, "INSIGHT_MATCHING_TOP_N")

	// ── Cache ──
	setStr(&cfg.Cache.Backend, "INSIGHT_CACHE_BACKEND")
	setDuration(&cfg.Cache.MarketTTL, "INSIGHT_CACHE_MARKET_TTL")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "INSIGHT_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "INSIGHT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "INSIGHT_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "INSIGHT_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "INSIGHT_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "INSIGHT_REDIS_TLS_ENABLED")

	// ── Insight ──
	setInt(&cfg.Insight.SearchLimit, "INSIGHT_INSIGHT_SEARCH_LIMIT")
	setInt(&cfg.Insight.KalshiEventLimit, "INSIGHT_INSIGHT_KALSHI_EVENT_LIMIT")
	setDuration(&cfg.Insight.SearchTTL, "INSIGHT_INSIGHT_SEARCH_TTL")
	setDuration(&cfg.Insight.EventsTTL, "INSIGHT_INSIGHT_EVENTS_TTL")
	setDuration(&cfg.Insight.UpstreamTimeout, "INSIGHT_INSIGHT_UPSTREAM_TIMEOUT")
	setDuration(&cfg.Insight.AnalysisTimeout, "INSIGHT_INSIGHT_ANALYSIS_TIMEOUT")

	// ── Server ──
	setInt(&cfg.Server.Port, "INSIGHT_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "INSIGHT_SERVER_CORS_ORIGINS")
	setInt(&cfg.Server.RateLimit, "INSIGHT_SERVER_RATE_LIMIT")
	setDuration(&cfg.Server.RateWindow, "INSIGHT_SERVER_RATE_WINDOW")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "INSIGHT_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}

package domain

import (
	"context"
	"time"
)

// RateLimiter provides distributed rate limiting.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// SignalBus provides pub/sub fan-out between service instances.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

// Publisher is the write half of a SignalBus.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// InsightChannel is the bus channel insight summaries are published on.
const InsightChannel = "insights"

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultFillTimeout bounds a shared fill once it is detached from the
// caller that started it.
const DefaultFillTimeout = 30 * time.Second

// Loader fills a Store on demand. Concurrent misses for the same key share
// one fill. Fill errors are returned to every waiter and never stored.
type Loader struct {
	store       Store
	group       singleflight.Group
	fillTimeout time.Duration
	logger      *slog.Logger
}

// NewLoader creates a Loader over store.
func NewLoader(store Store, logger *slog.Logger) *Loader {
	return &Loader{
		store:       store,
		fillTimeout: DefaultFillTimeout,
		logger:      logger.With(slog.String("component", "cache")),
	}
}

// GetOrFill returns the cached value for key, calling fill on a miss and
// storing its result for ttl. Values round-trip through JSON.
//
// The fill runs on a context detached from ctx and bounded by the loader's
// fill timeout, so one waiter giving up does not fail the others. Each
// caller stops waiting when its own ctx is done.
func GetOrFill[T any](ctx context.Context, l *Loader, key string, ttl time.Duration, fill func(context.Context) (T, error)) (T, error) {
	var zero T
	if raw, ok := l.store.Get(ctx, key); ok {
		var v T
		err := json.Unmarshal(raw, &v)
		if err == nil {
			return v, nil
		}
		l.logger.WarnContext(ctx, "discarding undecodable cache entry",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}

	ch := l.group.DoChan(key, func() (any, error) {
		fillCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.fillTimeout)
		defer cancel()

		v, err := fill(fillCtx)
		if err != nil {
			return v, err
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return v, fmt.Errorf("cache: encode %s: %w", key, err)
		}
		if err := l.store.Set(fillCtx, key, raw, ttl); err != nil {
			l.logger.WarnContext(fillCtx, "cache set failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		if res.Shared {
			l.logger.DebugContext(ctx, "shared cache fill", slog.String("key", key))
		}
		v, _ := res.Val.(T)
		return v, nil
	}
}

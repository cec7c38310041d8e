package redis

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/marketinsight/internal/cache"
)

const listingKeyPrefix = "listing:"

// ListingStore implements cache.Store on Redis strings with native expiry,
// so every instance behind a load balancer shares one listing cache.
type ListingStore struct {
	rdb    *redis.Client
	logger *slog.Logger
}

// NewListingStore creates a ListingStore backed by the given Client.
func NewListingStore(c *Client, logger *slog.Logger) *ListingStore {
	return &ListingStore{
		rdb:    c.Underlying(),
		logger: logger.With(slog.String("component", "listing_store")),
	}
}

func listingKey(key string) string {
	return listingKeyPrefix + key
}

// Get returns the stored bytes. Redis failures are logged and reported as a
// miss so callers fall through to the upstream.
func (s *ListingStore) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := s.rdb.Get(ctx, listingKey(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.WarnContext(ctx, "listing get failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		return nil, false
	}
	return b, true
}

// Set stores val under key for ttl. A zero ttl stores without expiry.
func (s *ListingStore) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return s.rdb.Set(ctx, listingKey(key), val, ttl).Err()
}

// Compile-time interface check.
var _ cache.Store = (*ListingStore)(nil)

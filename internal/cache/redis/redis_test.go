package redis

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := Wrap(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestNewPingsServer(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := New(context.Background(), ClientConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	require.NoError(t, c.Ping(context.Background()))
	require.NoError(t, c.Close())

	_, err = New(context.Background(), ClientConfig{Addr: "127.0.0.1:1", MaxRetries: -1})
	require.Error(t, err)
}

func TestListingStore(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestClient(t)
	store := NewListingStore(c, slog.New(slog.NewJSONHandler(io.Discard, nil)))

	_, ok := store.Get(ctx, "kalshi:events")
	require.False(t, ok)

	require.NoError(t, store.Set(ctx, "kalshi:events", []byte(`[{"title":"x"}]`), 5*time.Minute))
	got, ok := store.Get(ctx, "kalshi:events")
	require.True(t, ok)
	require.JSONEq(t, `[{"title":"x"}]`, string(got))
	require.True(t, mr.Exists("listing:kalshi:events"))

	mr.FastForward(5 * time.Minute)
	_, ok = store.Get(ctx, "kalshi:events")
	require.False(t, ok)
}

func TestSignalBusRoundTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, _ := newTestClient(t)
	bus := NewSignalBus(c)

	ch, err := bus.Subscribe(ctx, "insights")
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, "insights", []byte(`{"query":"fed"}`)))

	select {
	case msg := <-ch:
		require.JSONEq(t, `{"query":"fed"}`, string(msg))
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}

	cancel()
	require.Eventually(t, func() bool {
		_, open := <-ch
		return !open
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRateLimiterSlidingWindow(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)
	rl := NewRateLimiter(c)

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		ok, err := rl.Allow(ctx, "10.0.0.1", 3, time.Minute)
		require.NoError(t, err)
		require.True(t, ok, "request %d", i)
	}
	ok, err := rl.Allow(ctx, "10.0.0.1", 3, time.Minute)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = rl.Allow(ctx, "10.0.0.2", 3, time.Minute)
	require.NoError(t, err)
	require.True(t, ok, "keys are independent")

	now = now.Add(time.Minute + time.Second)
	ok, err = rl.Allow(ctx, "10.0.0.1", 3, time.Minute)
	require.NoError(t, err)
	require.True(t, ok, "window slid past earlier requests")
}

package quotes

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/trogers1052/trade-advisor/internal/models"
)

func TestRedisCache(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	defer container.Terminate(ctx)

	addr, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	cache := NewRedisCache(client, "test:", time.Minute, zerolog.Nop())

	t.Run("put then get", func(t *testing.T) {
		cache.Put(ctx, "AAPL", models.Quote{Symbol: "AAPL", Price: 185.25, Source: models.QuoteSourceLive})
		q, ok := cache.Get(ctx, "AAPL")
		require.True(t, ok)
		assert.Equal(t, 185.25, q.Price)

		ttl, err := client.TTL(ctx, "test:quote:AAPL").Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
	})

	t.Run("invalidate removes only quote keys", func(t *testing.T) {
		require.NoError(t, client.Set(ctx, "test:other", "keep", 0).Err())
		cache.Put(ctx, "MSFT", models.Quote{Price: 1})

		cache.InvalidateAll(ctx)

		_, ok := cache.Get(ctx, "MSFT")
		assert.False(t, ok)
		v, err := client.Get(ctx, "test:other").Result()
		require.NoError(t, err)
		assert.Equal(t, "keep", v)
	})
}

func TestRedisCacheDegradesToMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond})
	defer client.Close()

	cache := NewRedisCache(client, "test:", time.Minute, zerolog.Nop())
	ctx := context.Background()

	cache.Put(ctx, "AAPL", models.Quote{Price: 1})
	_, ok := cache.Get(ctx, "AAPL")
	assert.False(t, ok)
	cache.InvalidateAll(ctx)
}

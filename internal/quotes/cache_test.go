package quotes

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trogers1052/trade-advisor/internal/models"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()

	t.Run("hit within TTL", func(t *testing.T) {
		clock := newFakeClock()
		c := NewMemoryCache(60*time.Second, clock.Now)

		c.Put(ctx, "AAPL", models.Quote{Symbol: "AAPL", Price: 185.25})
		clock.Advance(59 * time.Second)

		q, ok := c.Get(ctx, "AAPL")
		require.True(t, ok)
		assert.Equal(t, 185.25, q.Price)
	})

	t.Run("miss at exactly TTL", func(t *testing.T) {
		clock := newFakeClock()
		c := NewMemoryCache(60*time.Second, clock.Now)

		c.Put(ctx, "AAPL", models.Quote{Symbol: "AAPL", Price: 185.25})
		clock.Advance(60 * time.Second)

		_, ok := c.Get(ctx, "AAPL")
		assert.False(t, ok)
	})

	t.Run("newest write wins and resets age", func(t *testing.T) {
		clock := newFakeClock()
		c := NewMemoryCache(60*time.Second, clock.Now)

		c.Put(ctx, "TSLA", models.Quote{Price: 1})
		clock.Advance(50 * time.Second)
		c.Put(ctx, "TSLA", models.Quote{Price: 2})
		clock.Advance(50 * time.Second)

		q, ok := c.Get(ctx, "TSLA")
		require.True(t, ok)
		assert.Equal(t, 2.0, q.Price)
	})

	t.Run("InvalidateAll empties the cache", func(t *testing.T) {
		c := NewMemoryCache(0, nil)
		c.Put(ctx, "AAPL", models.Quote{Price: 1})
		c.Put(ctx, "MSFT", models.Quote{Price: 2})

		c.InvalidateAll(ctx)

		_, ok := c.Get(ctx, "AAPL")
		assert.False(t, ok)
		assert.Equal(t, 0, c.Len())
	})

	t.Run("expired entries are swept past the threshold", func(t *testing.T) {
		clock := newFakeClock()
		c := NewMemoryCache(time.Second, clock.Now)

		for i := 0; i < sweepThreshold; i++ {
			c.Put(ctx, fmt.Sprintf("S%d", i), models.Quote{Price: 1})
		}
		clock.Advance(2 * time.Second)
		c.Put(ctx, "FRESH1", models.Quote{Price: 1})
		c.Put(ctx, "FRESH2", models.Quote{Price: 1})

		assert.Equal(t, 2, c.Len())
	})
}

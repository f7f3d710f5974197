// Package quotes fetches stock quotes through a short-lived cache and falls
// back to locally generated quotes whenever the provider cannot answer.
package quotes

import (
	"context"
	"sync"
	"time"

	"github.com/trogers1052/trade-advisor/internal/models"
)

// DefaultTTL is how long a cached quote is served before a refetch
const DefaultTTL = 60 * time.Second

// sweepThreshold is the entry count above which Put reclaims expired entries
const sweepThreshold = 1024

// Cache stores the most recent live quote per symbol
type Cache interface {
	Get(ctx context.Context, symbol string) (models.Quote, bool)
	Put(ctx context.Context, symbol string, q models.Quote)
	InvalidateAll(ctx context.Context)
}

type cacheEntry struct {
	quote    models.Quote
	storedAt time.Time
}

// MemoryCache is a process-local Cache
type MemoryCache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// NewMemoryCache creates a cache; a zero ttl uses DefaultTTL and a nil clock uses time.Now
func NewMemoryCache(ttl time.Duration, now func() time.Time) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &MemoryCache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the entry only while it is younger than the TTL
func (c *MemoryCache) Get(_ context.Context, symbol string) (models.Quote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[symbol]
	if !ok || c.now().Sub(e.storedAt) >= c.ttl {
		return models.Quote{}, false
	}
	return e.quote, true
}

// Put stores q, replacing any existing entry for the symbol
func (c *MemoryCache) Put(_ context.Context, symbol string, q models.Quote) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.entries[symbol] = cacheEntry{quote: q, storedAt: now}

	if len(c.entries) > sweepThreshold {
		for k, e := range c.entries {
			if now.Sub(e.storedAt) >= c.ttl {
				delete(c.entries, k)
			}
		}
	}
}

// InvalidateAll drops every entry
func (c *MemoryCache) InvalidateAll(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]cacheEntry)
}

// Len reports the number of stored entries, expired or not
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

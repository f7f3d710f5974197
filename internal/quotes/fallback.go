package quotes

import (
	"math/rand"
	"sync"
	"time"

	"github.com/trogers1052/trade-advisor/internal/market"
	"github.com/trogers1052/trade-advisor/internal/models"
)

// Fallback produces quotes without the network: the fixed table for known
// symbols, uniform random values otherwise
type Fallback struct {
	dir *market.Directory

	mu  sync.Mutex
	rng *rand.Rand
}

// NewFallback creates a generator; seed 0 seeds from the clock
func NewFallback(dir *market.Directory, seed int64) *Fallback {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Fallback{dir: dir, rng: rand.New(rand.NewSource(seed))}
}

// Quote returns a fallback quote tagged as such
func (f *Fallback) Quote(symbol string) models.Quote {
	if q, ok := f.dir.FallbackQuote(symbol); ok {
		q.Source = models.QuoteSourceFallback
		return q
	}

	f.mu.Lock()
	price := 100 + f.rng.Float64()*200
	change := (f.rng.Float64() - 0.5) * 10
	changePercent := (f.rng.Float64() - 0.5) * 5
	volume := int64(f.rng.Float64() * 100_000_000)
	f.mu.Unlock()

	return models.Quote{
		Symbol:        symbol,
		Price:         price,
		Change:        change,
		ChangePercent: changePercent,
		Volume:        volume,
		Source:        models.QuoteSourceFallback,
	}
}

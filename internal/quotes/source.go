package quotes

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/trogers1052/trade-advisor/internal/market"
	"github.com/trogers1052/trade-advisor/internal/models"
)

// Source answers quote requests from the cache, then the provider, then the
// fallback generator. It never returns an error.
type Source struct {
	cache    Cache
	provider Provider
	fallback *Fallback
	timeout  time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

// SourceOption configures a Source
type SourceOption func(*Source)

// WithTimeout bounds each provider call
func WithTimeout(d time.Duration) SourceOption {
	return func(s *Source) { s.timeout = d }
}

// WithClock overrides the clock used to stamp quotes
func WithClock(now func() time.Time) SourceOption {
	return func(s *Source) { s.now = now }
}

// NewSource wires a Source together
func NewSource(cache Cache, provider Provider, fallback *Fallback, log zerolog.Logger, opts ...SourceOption) *Source {
	s := &Source{
		cache:    cache,
		provider: provider,
		fallback: fallback,
		timeout:  10 * time.Second,
		now:      time.Now,
		log:      log.With().Str("component", "quote_source").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchQuote returns a quote for symbol. Only live quotes are cached.
func (s *Source) FetchQuote(ctx context.Context, symbol string) models.Quote {
	symbol = market.Normalize(symbol)

	if q, ok := s.cache.Get(ctx, symbol); ok {
		return q
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	q, err := s.provider.GlobalQuote(callCtx, symbol)
	if err != nil || q.Price <= 0 {
		if err != nil {
			s.log.Debug().Err(err).Str("symbol", symbol).Msg("provider failed, using fallback quote")
		}
		fq := s.fallback.Quote(symbol)
		fq.FetchedAt = s.now()
		return fq
	}

	q.Symbol = symbol
	q.Source = models.QuoteSourceLive
	q.FetchedAt = s.now()
	s.cache.Put(ctx, symbol, q)
	return q
}

// FetchMultiple fetches every symbol concurrently. Duplicates collapse to one entry.
func (s *Source) FetchMultiple(ctx context.Context, symbols []string) map[string]models.Quote {
	out := make(map[string]models.Quote, len(symbols))
	var mu sync.Mutex
	var wg sync.WaitGroup

	seen := make(map[string]bool, len(symbols))
	for _, sym := range symbols {
		sym = market.Normalize(sym)
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true

		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			q := s.FetchQuote(ctx, sym)
			mu.Lock()
			out[sym] = q
			mu.Unlock()
		}(sym)
	}
	wg.Wait()
	return out
}

// Invalidate empties the cache so the next fetch goes to the provider
func (s *Source) Invalidate(ctx context.Context) {
	s.cache.InvalidateAll(ctx)
}

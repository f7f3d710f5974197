package recommend

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/trogers1052/trade-advisor/internal/models"
)

var (
	// ErrLoadFailed is the caller-visible failure for a recommendation load
	ErrLoadFailed = errors.New("failed to load recommendations")
	// ErrRecommendationNotFound is returned when toggling an unknown id
	ErrRecommendationNotFound = errors.New("recommendation not found")
)

// Board holds the current recommendation list for the recommendations screen.
// Watchlist flags live only in this list and are lost on every regeneration.
type Board struct {
	engine  *Engine
	quotes  QuoteSource
	symbols []string
	log     zerolog.Logger

	mu     sync.Mutex
	recs   []*models.Recommendation
	loaded bool
}

// NewBoard creates a board over a fixed symbol universe
func NewBoard(engine *Engine, quotes QuoteSource, symbols []string, log zerolog.Logger) *Board {
	return &Board{
		engine:  engine,
		quotes:  quotes,
		symbols: symbols,
		log:     log.With().Str("component", "recommendations").Logger(),
	}
}

// List returns the current list, generating it on first use
func (b *Board) List(ctx context.Context) ([]models.Recommendation, error) {
	b.mu.Lock()
	loaded := b.loaded
	b.mu.Unlock()

	if !loaded {
		return b.regenerate(ctx)
	}
	return b.snapshot(), nil
}

// Refresh bypasses the quote cache and regenerates
func (b *Board) Refresh(ctx context.Context) ([]models.Recommendation, error) {
	b.quotes.Invalidate(ctx)
	return b.regenerate(ctx)
}

// Poll regenerates from whatever the quote cache currently holds
func (b *Board) Poll(ctx context.Context) ([]models.Recommendation, error) {
	return b.regenerate(ctx)
}

// ToggleWatchlist flips the watchlisted flag on one recommendation
func (b *Board) ToggleWatchlist(id string) (models.Recommendation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, r := range b.recs {
		if r.ID == id {
			r.IsWatchlisted = !r.IsWatchlisted
			return *r, nil
		}
	}
	return models.Recommendation{}, ErrRecommendationNotFound
}

func (b *Board) regenerate(ctx context.Context) ([]models.Recommendation, error) {
	recs, err := b.engine.Generate(ctx, b.symbols)
	if err != nil {
		b.log.Error().Err(err).Msg("recommendation generation failed")
		return nil, ErrLoadFailed
	}

	b.mu.Lock()
	b.recs = recs
	b.loaded = true
	b.mu.Unlock()

	b.log.Debug().Int("count", len(recs)).Msg("recommendations regenerated")
	return b.snapshot(), nil
}

func (b *Board) snapshot() []models.Recommendation {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]models.Recommendation, len(b.recs))
	for i, r := range b.recs {
		out[i] = *r
	}
	return out
}

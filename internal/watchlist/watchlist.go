// Package watchlist keeps the user's followed symbols. The list is independent
// of the recommendation board and survives its regeneration.
package watchlist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/trogers1052/trade-advisor/internal/market"
	"github.com/trogers1052/trade-advisor/internal/models"
	"github.com/trogers1052/trade-advisor/internal/store"
)

var (
	ErrItemNotFound  = errors.New("watchlist item not found")
	ErrInvalidSymbol = errors.New("symbol is required")
)

// QuoteSource is the subset of quotes.Source the watchlist needs
type QuoteSource interface {
	FetchQuote(ctx context.Context, symbol string) models.Quote
	FetchMultiple(ctx context.Context, symbols []string) map[string]models.Quote
}

// Service owns the watchlist key
type Service struct {
	store  store.Store
	quotes QuoteSource
	dir    *market.Directory
	now    func() time.Time
	log    zerolog.Logger

	mu sync.Mutex
}

// NewService creates a watchlist service
func NewService(st store.Store, quotes QuoteSource, dir *market.Directory, log zerolog.Logger) *Service {
	return &Service{
		store:  st,
		quotes: quotes,
		dir:    dir,
		now:    time.Now,
		log:    log.With().Str("component", "watchlist").Logger(),
	}
}

// List returns the items in the order they were added
func (s *Service) List(ctx context.Context) ([]models.WatchlistItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Add follows symbol. Adding a symbol that is already on the list returns
// the existing item.
func (s *Service) Add(ctx context.Context, symbol string) (models.WatchlistItem, error) {
	symbol = market.Normalize(symbol)
	if symbol == "" {
		return models.WatchlistItem{}, ErrInvalidSymbol
	}

	s.mu.Lock()
	items, err := s.load(ctx)
	s.mu.Unlock()
	if err != nil {
		return models.WatchlistItem{}, err
	}
	if item, ok := findSymbol(items, symbol); ok {
		return item, nil
	}

	q := s.quotes.FetchQuote(ctx, symbol)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-read: another Add for the same symbol may have landed during the fetch.
	items, err = s.load(ctx)
	if err != nil {
		return models.WatchlistItem{}, err
	}
	if item, ok := findSymbol(items, symbol); ok {
		return item, nil
	}

	item := models.WatchlistItem{
		ID:                 "wl_" + uuid.NewString(),
		Symbol:             symbol,
		CompanyName:        s.dir.CompanyName(symbol),
		CurrentPrice:       q.Price,
		PriceChange:        q.Change,
		PriceChangePercent: q.ChangePercent,
		AddedAt:            s.now(),
	}
	if err := s.save(ctx, append(items, item)); err != nil {
		return models.WatchlistItem{}, err
	}
	s.log.Info().Str("symbol", symbol).Msg("added to watchlist")
	return item, nil
}

// Remove drops the item with id
func (s *Service) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return err
	}
	for i, item := range items {
		if item.ID == id {
			items = append(items[:i], items[i+1:]...)
			return s.save(ctx, items)
		}
	}
	return ErrItemNotFound
}

// Refresh reprices every item from the quote source and persists the result
func (s *Service) Refresh(ctx context.Context) ([]models.WatchlistItem, error) {
	s.mu.Lock()
	items, err := s.load(ctx)
	s.mu.Unlock()
	if err != nil || len(items) == 0 {
		return items, err
	}

	symbols := make([]string, 0, len(items))
	for _, item := range items {
		symbols = append(symbols, item.Symbol)
	}
	quotes := s.quotes.FetchMultiple(ctx, symbols)

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err = s.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		q, ok := quotes[items[i].Symbol]
		if !ok || q.Price <= 0 {
			continue
		}
		items[i].CurrentPrice = q.Price
		items[i].PriceChange = q.Change
		items[i].PriceChangePercent = q.ChangePercent
	}
	if err := s.save(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Service) load(ctx context.Context) ([]models.WatchlistItem, error) {
	items := []models.WatchlistItem{}
	if _, err := store.LoadJSON(ctx, s.store, store.KeyWatchlist, &items); err != nil {
		return nil, fmt.Errorf("failed to load watchlist: %w", err)
	}
	return items, nil
}

func (s *Service) save(ctx context.Context, items []models.WatchlistItem) error {
	return store.SaveJSON(ctx, s.store, store.KeyWatchlist, items)
}

func findSymbol(items []models.WatchlistItem, symbol string) (models.WatchlistItem, bool) {
	for _, item := range items {
		if item.Symbol == symbol {
			return item, true
		}
	}
	return models.WatchlistItem{}, false
}

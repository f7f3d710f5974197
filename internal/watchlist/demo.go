package watchlist

import (
	"context"
	"time"

	"github.com/trogers1052/trade-advisor/internal/models"
	"github.com/trogers1052/trade-advisor/internal/store"
)

var demoItems = []struct {
	id, symbol, name   string
	price, change, pct float64
	age                time.Duration
}{
	{"wl_1", "TSLA", "Tesla Inc.", 248.75, 5.25, 2.16, 2 * 24 * time.Hour},
	{"wl_2", "MSFT", "Microsoft Corporation", 412.30, -2.15, -0.52, 5 * 24 * time.Hour},
	{"wl_3", "GOOGL", "Alphabet Inc.", 138.92, 1.87, 1.36, 24 * time.Hour},
	{"wl_4", "AMZN", "Amazon.com Inc.", 155.43, -0.92, -0.59, 7 * 24 * time.Hour},
}

// SeedDemo writes the demo watchlist when none has been stored yet
func (s *Service) SeedDemo(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var existing []models.WatchlistItem
	found, err := store.LoadJSON(ctx, s.store, store.KeyWatchlist, &existing)
	if err != nil || found {
		return false, err
	}

	now := s.now()
	items := make([]models.WatchlistItem, 0, len(demoItems))
	for _, d := range demoItems {
		items = append(items, models.WatchlistItem{
			ID:                 d.id,
			Symbol:             d.symbol,
			CompanyName:        d.name,
			CurrentPrice:       d.price,
			PriceChange:        d.change,
			PriceChangePercent: d.pct,
			AddedAt:            now.Add(-d.age),
		})
	}
	if err := s.save(ctx, items); err != nil {
		return false, err
	}
	s.log.Info().Int("items", len(items)).Msg("seeded demo watchlist")
	return true, nil
}

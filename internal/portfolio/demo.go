package portfolio

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/trogers1052/trade-advisor/internal/models"
	"github.com/trogers1052/trade-advisor/internal/store"
)

type demoHolding struct {
	id, symbol, name, sector string
	quantity                 int64
	avgPrice, price          string
	age                      time.Duration
}

var demoHoldings = []demoHolding{
	{"pos_1", "AAPL", "Apple Inc.", "Technology", 10, "180.50", "185.25", 7 * 24 * time.Hour},
	{"pos_2", "TSLA", "Tesla Inc.", "Automotive", 5, "245.00", "248.75", 3 * 24 * time.Hour},
	{"pos_3", "NVDA", "NVIDIA Corporation", "Technology", 8, "142.00", "138.42", 5 * 24 * time.Hour},
}

// DemoAccount returns the starting account for a fresh install
func DemoAccount() *models.TradingAccount {
	return &models.TradingAccount{
		ID:                    "account_1",
		Balance:               decimal.NewFromInt(25000),
		BuyingPower:           decimal.NewFromInt(50000),
		DayTradingBuyingPower: decimal.NewFromInt(100000),
		PortfolioValue:        decimal.Zero,
		DayTradesRemaining:    3,
		IsPatternDayTrader:    false,
	}
}

// SeedDemo writes the demo positions when the ledger is empty
func (l *Ledger) SeedDemo(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	positions, err := l.loadPositions(ctx)
	if err != nil || len(positions) > 0 {
		return false, err
	}

	now := l.now()
	for _, h := range demoHoldings {
		p := &models.Position{
			ID:              h.id,
			Symbol:          h.symbol,
			CompanyName:     h.name,
			Quantity:        decimal.NewFromInt(h.quantity),
			AverageBuyPrice: decimal.RequireFromString(h.avgPrice),
			Sector:          h.sector,
			PurchaseDate:    now.Add(-h.age),
			LastUpdated:     now,
		}
		p.Reprice(decimal.RequireFromString(h.price))
		positions = append(positions, p)
	}
	if err := l.savePositions(ctx, positions); err != nil {
		return false, err
	}
	l.log.Info().Int("positions", len(positions)).Msg("seeded demo portfolio")
	return true, nil
}

// SeedDemo writes the demo account when none exists
func (a *Accounts) SeedDemo(ctx context.Context) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, err := a.load(ctx)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return false, err
	}
	return true, store.SaveJSON(ctx, a.store, store.KeyAccount, DemoAccount())
}

// Package portfolio keeps the local position ledger and the demo trading account.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/trogers1052/trade-advisor/internal/market"
	"github.com/trogers1052/trade-advisor/internal/models"
	"github.com/trogers1052/trade-advisor/internal/store"
)

// Day change modes
const (
	DayChangeQuote       = "quote"
	DayChangePlaceholder = "placeholder"
)

var hundred = decimal.NewFromInt(100)

// ErrNoPosition is returned for a sell fill on a symbol that is not held.
// The ledger is left untouched.
var ErrNoPosition = errors.New("no position to sell")

// QuoteSource is the subset of quotes.Source the ledger needs
type QuoteSource interface {
	FetchMultiple(ctx context.Context, symbols []string) map[string]models.Quote
}

// Fill is an executed trade to apply to the ledger
type Fill struct {
	OrderID     string
	Symbol      string
	CompanyName string
	Side        models.OrderSide
	Quantity    decimal.Decimal
	Price       decimal.Decimal
	Sector      string
}

// Ledger owns the positions and closed-trades keys. All mutations are
// serialized by mu so concurrent fills cannot lose each other's writes.
type Ledger struct {
	store         store.Store
	quotes        QuoteSource
	now           func() time.Time
	dayChangeMode string
	log           zerolog.Logger

	mu sync.Mutex
}

// LedgerOption configures a Ledger
type LedgerOption func(*Ledger)

// WithClock overrides the ledger clock
func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) { l.now = now }
}

// WithDayChangeMode selects how per-position day change is computed
func WithDayChangeMode(mode string) LedgerOption {
	return func(l *Ledger) { l.dayChangeMode = mode }
}

// NewLedger creates a ledger over st
func NewLedger(st store.Store, quotes QuoteSource, log zerolog.Logger, opts ...LedgerOption) *Ledger {
	l := &Ledger{
		store:         st,
		quotes:        quotes,
		now:           time.Now,
		dayChangeMode: DayChangeQuote,
		log:           log.With().Str("component", "ledger").Logger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ListPositions returns the stored positions without repricing
func (l *Ledger) ListPositions(ctx context.Context) ([]*models.Position, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadPositions(ctx)
}

// ApplyFill merges a fill into the ledger. Buys average into the existing
// position; sells reduce it and remove it once quantity reaches zero. A sell
// also returns the realized trade it closed.
func (l *Ledger) ApplyFill(ctx context.Context, f Fill) (*models.ClosedTrade, error) {
	if !f.Quantity.IsPositive() {
		return nil, fmt.Errorf("fill quantity must be positive, got %s", f.Quantity)
	}
	symbol := market.Normalize(f.Symbol)

	l.mu.Lock()
	defer l.mu.Unlock()

	positions, err := l.loadPositions(ctx)
	if err != nil {
		return nil, err
	}
	now := l.now()

	idx := -1
	for i, p := range positions {
		if p.Symbol == symbol {
			idx = i
			break
		}
	}

	switch f.Side {
	case models.OrderSideBuy:
		if idx >= 0 {
			p := positions[idx]
			newQty := p.Quantity.Add(f.Quantity)
			totalCost := p.CostBasis().Add(f.Quantity.Mul(f.Price))
			p.AverageBuyPrice = totalCost.Div(newQty)
			p.Quantity = newQty
			p.Reprice(f.Price)
			p.LastUpdated = now
		} else {
			p := &models.Position{
				ID:              "pos_" + uuid.NewString(),
				Symbol:          symbol,
				CompanyName:     f.CompanyName,
				Quantity:        f.Quantity,
				AverageBuyPrice: f.Price,
				Sector:          f.Sector,
				PurchaseDate:    now,
				LastUpdated:     now,
			}
			p.Reprice(f.Price)
			positions = append(positions, p)
		}
		return nil, l.savePositions(ctx, positions)

	case models.OrderSideSell:
		if idx < 0 {
			l.log.Warn().Str("symbol", symbol).Str("order_id", f.OrderID).Msg("sell fill without a position, ignoring")
			return nil, ErrNoPosition
		}
		p := positions[idx]
		soldQty := decimal.Min(f.Quantity, p.Quantity)
		newQty := p.Quantity.Sub(f.Quantity)

		trade := &models.ClosedTrade{
			ID:             uuid.NewString(),
			OrderID:        f.OrderID,
			Symbol:         symbol,
			Quantity:       soldQty,
			EntryPrice:     p.AverageBuyPrice,
			ExitPrice:      f.Price,
			RealizedPnl:    f.Price.Sub(p.AverageBuyPrice).Mul(soldQty),
			EntryDate:      p.PurchaseDate,
			ExitDate:       now,
			PositionClosed: !newQty.IsPositive(),
		}
		if p.AverageBuyPrice.IsPositive() {
			trade.RealizedPnlPct = f.Price.Sub(p.AverageBuyPrice).Div(p.AverageBuyPrice).Mul(hundred)
		}

		if trade.PositionClosed {
			positions = append(positions[:idx], positions[idx+1:]...)
		} else {
			p.Quantity = newQty
			p.Reprice(f.Price)
			p.LastUpdated = now
		}
		if err := l.savePositions(ctx, positions); err != nil {
			return nil, err
		}
		if err := l.appendClosedTrade(ctx, trade); err != nil {
			return trade, err
		}
		return trade, nil

	default:
		return nil, fmt.Errorf("unknown order side %q", f.Side)
	}
}

// RefreshPrices reprices every position from fresh quotes and persists the result
func (l *Ledger) RefreshPrices(ctx context.Context) ([]*models.Position, error) {
	l.mu.Lock()
	positions, err := l.loadPositions(ctx)
	l.mu.Unlock()
	if err != nil || len(positions) == 0 {
		return positions, err
	}

	symbols := make([]string, len(positions))
	for i, p := range positions {
		symbols[i] = p.Symbol
	}
	quotes := l.quotes.FetchMultiple(ctx, symbols)

	l.mu.Lock()
	defer l.mu.Unlock()

	// Re-read so a fill applied while quotes were in flight is not overwritten.
	positions, err = l.loadPositions(ctx)
	if err != nil {
		return nil, err
	}
	now := l.now()
	for _, p := range positions {
		q, ok := quotes[p.Symbol]
		if !ok || q.Price <= 0 {
			continue
		}
		p.Reprice(decimal.NewFromFloat(q.Price))
		if l.dayChangeMode == DayChangePlaceholder {
			p.DayChange = p.UnrealizedPnL.Mul(decimal.NewFromFloat(0.1))
		} else {
			p.DayChange = p.Quantity.Mul(decimal.NewFromFloat(q.Change))
		}
		p.LastUpdated = now
	}
	if err := l.savePositions(ctx, positions); err != nil {
		return nil, err
	}
	return positions, nil
}

// Summary reprices positions and aggregates them
func (l *Ledger) Summary(ctx context.Context) (*models.PortfolioSummary, error) {
	positions, err := l.RefreshPrices(ctx)
	if err != nil {
		return nil, err
	}
	return Summarize(positions), nil
}

// ClosedTrades returns every realized trade, oldest first
func (l *Ledger) ClosedTrades(ctx context.Context) ([]*models.ClosedTrade, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadClosedTrades(ctx)
}

// Performance aggregates the closed trades
func (l *Ledger) Performance(ctx context.Context) (*models.PerformanceMetrics, error) {
	trades, err := l.ClosedTrades(ctx)
	if err != nil {
		return nil, err
	}
	return Performance(trades), nil
}

func (l *Ledger) loadPositions(ctx context.Context) ([]*models.Position, error) {
	positions := []*models.Position{}
	if _, err := store.LoadJSON(ctx, l.store, store.KeyPositions, &positions); err != nil {
		return nil, fmt.Errorf("failed to load positions: %w", err)
	}
	return positions, nil
}

func (l *Ledger) savePositions(ctx context.Context, positions []*models.Position) error {
	return store.SaveJSON(ctx, l.store, store.KeyPositions, positions)
}

func (l *Ledger) loadClosedTrades(ctx context.Context) ([]*models.ClosedTrade, error) {
	trades := []*models.ClosedTrade{}
	if _, err := store.LoadJSON(ctx, l.store, store.KeyClosedTrades, &trades); err != nil {
		return nil, fmt.Errorf("failed to load closed trades: %w", err)
	}
	return trades, nil
}

func (l *Ledger) appendClosedTrade(ctx context.Context, t *models.ClosedTrade) error {
	trades, err := l.loadClosedTrades(ctx)
	if err != nil {
		return err
	}
	return store.SaveJSON(ctx, l.store, store.KeyClosedTrades, append(trades, t))
}

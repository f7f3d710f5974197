package portfolio

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/trogers1052/trade-advisor/internal/models"
	"github.com/trogers1052/trade-advisor/internal/store"
)

var (
	// ErrInsufficientBuyingPower is returned when an order exceeds buying power
	ErrInsufficientBuyingPower = errors.New("insufficient buying power")
	// ErrAccountNotFound is returned before the account has been seeded
	ErrAccountNotFound = errors.New("trading account not found")
)

// Accounts owns the trading account key
type Accounts struct {
	store store.Store
	mu    sync.Mutex
}

// NewAccounts creates an account service over st
func NewAccounts(st store.Store) *Accounts {
	return &Accounts{store: st}
}

// Get returns the account
func (a *Accounts) Get(ctx context.Context) (*models.TradingAccount, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.load(ctx)
}

// Save overwrites the account
func (a *Accounts) Save(ctx context.Context, acct *models.TradingAccount) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return store.SaveJSON(ctx, a.store, store.KeyAccount, acct)
}

// CheckBuyingPower reports ErrInsufficientBuyingPower when estimatedTotal exceeds buying power
func (a *Accounts) CheckBuyingPower(ctx context.Context, estimatedTotal decimal.Decimal) error {
	acct, err := a.Get(ctx)
	if err != nil {
		return err
	}
	if estimatedTotal.GreaterThan(acct.BuyingPower) {
		return fmt.Errorf("%w: need %s, have %s", ErrInsufficientBuyingPower,
			estimatedTotal.StringFixed(2), acct.BuyingPower.StringFixed(2))
	}
	return nil
}

// ApplyFill debits a buy from balance and buying power, or credits a sell
func (a *Accounts) ApplyFill(ctx context.Context, side models.OrderSide, total decimal.Decimal) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	acct, err := a.load(ctx)
	if err != nil {
		return err
	}
	if side == models.OrderSideBuy {
		total = total.Neg()
	}
	acct.Balance = acct.Balance.Add(total)
	acct.BuyingPower = acct.BuyingPower.Add(total)
	return store.SaveJSON(ctx, a.store, store.KeyAccount, acct)
}

func (a *Accounts) load(ctx context.Context) (*models.TradingAccount, error) {
	var acct models.TradingAccount
	found, err := store.LoadJSON(ctx, a.store, store.KeyAccount, &acct)
	if err != nil {
		return nil, fmt.Errorf("failed to load trading account: %w", err)
	}
	if !found {
		return nil, ErrAccountNotFound
	}
	return &acct, nil
}

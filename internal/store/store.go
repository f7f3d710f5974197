// Package store persists whole JSON documents under fixed keys.
//
// Every write replaces the full value; there are no partial updates and no
// transactions spanning keys. Callers that read-modify-write a key are
// responsible for serializing their own writers.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Keys used by the application
const (
	KeyPositions    = "portfolio_positions"
	KeyOrders       = "trading_orders"
	KeyAccount      = "trading_account"
	KeyWatchlist    = "watchlist"
	KeyClosedTrades = "closed_trades"
	KeyPriceAlerts  = "price_alerts"
	KeyExecutions   = "executions"
)

// ErrNotFound is returned by Get when the key has never been written
var ErrNotFound = errors.New("key not found")

// Store is a key-value blob store
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// LoadJSON decodes the value at key into v. It reports false when the key is absent.
func LoadJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	data, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// SaveJSON encodes v and writes it under key
func SaveJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.Set(ctx, key, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

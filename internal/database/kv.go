package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/trogers1052/trade-advisor/internal/store"
)

// Get reads the value stored under key
func (db *DB) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT value FROM kv_store WHERE key = $1`

	var value []byte
	err := db.conn.QueryRowContext(ctx, query, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, nil
}

// Set upserts the value stored under key
func (db *DB) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := db.conn.ExecContext(ctx, query, key, value, time.Now()); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Delete removes key
func (db *DB) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM kv_store WHERE key = $1`
	if _, err := db.conn.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

var _ store.Store = (*DB)(nil)

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/trogers1052/trade-advisor/internal/models"
)

const executionColumns = `order_id, source, symbol, side, quantity, price, total_cost, executed_at, recorded_at`

// RecordExecution inserts a journal row for a filled order
func (db *DB) RecordExecution(ctx context.Context, e *models.Execution) error {
	query := `
		INSERT INTO executions (` + executionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (order_id, source) DO NOTHING
	`
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now()
	}

	_, err := db.conn.ExecContext(ctx, query,
		e.OrderID, e.Source, e.Symbol, e.Side, e.Quantity, e.Price, e.TotalCost,
		e.ExecutedAt, e.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record execution: %w", err)
	}
	return nil
}

// ExecutionExists checks if an execution for the order and source was already journaled
func (db *DB) ExecutionExists(ctx context.Context, orderID, source string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM executions WHERE order_id = $1 AND source = $2)`
	var exists bool
	if err := db.conn.QueryRowContext(ctx, query, orderID, source).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check execution existence: %w", err)
	}
	return exists, nil
}

// ListExecutions returns journaled executions, newest first
func (db *DB) ListExecutions(ctx context.Context) ([]*models.Execution, error) {
	query := `SELECT ` + executionColumns + ` FROM executions ORDER BY executed_at DESC`
	return db.scanExecutions(db.conn.QueryContext(ctx, query))
}

// ListExecutionsBySymbol returns executions for one symbol, newest first
func (db *DB) ListExecutionsBySymbol(ctx context.Context, symbol string, limit int) ([]*models.Execution, error) {
	query := `SELECT ` + executionColumns + ` FROM executions WHERE symbol = $1 ORDER BY executed_at DESC LIMIT $2`
	return db.scanExecutions(db.conn.QueryContext(ctx, query, symbol, limit))
}

func (db *DB) scanExecutions(rows *sql.Rows, err error) ([]*models.Execution, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to query executions: %w", err)
	}
	defer rows.Close()

	executions := []*models.Execution{}
	for rows.Next() {
		var e models.Execution
		err := rows.Scan(
			&e.OrderID, &e.Source, &e.Symbol, &e.Side, &e.Quantity, &e.Price, &e.TotalCost,
			&e.ExecutedAt, &e.RecordedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution: %w", err)
		}
		executions = append(executions, &e)
	}
	return executions, rows.Err()
}

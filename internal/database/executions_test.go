package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/trade-advisor/internal/models"
)

func TestExecutionExists(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	db := &DB{conn: sqlDB}

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("order-1", "simulator").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := db.ExecutionExists(context.Background(), "order-1", "simulator")
	require.NoError(t, err)
	assert.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordExecutionSetsRecordedAt(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	db := &DB{conn: sqlDB}

	mock.ExpectExec("INSERT INTO executions").WillReturnResult(sqlmock.NewResult(1, 1))

	e := &models.Execution{
		OrderID:    "order-1",
		Source:     "simulator",
		Symbol:     "AAPL",
		Side:       models.OrderSideBuy,
		Quantity:   decimal.NewFromInt(5),
		Price:      decimal.NewFromFloat(185.25),
		TotalCost:  decimal.NewFromFloat(926.25),
		ExecutedAt: time.Now(),
	}
	require.NoError(t, db.RecordExecution(context.Background(), e))
	assert.False(t, e.RecordedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListExecutionsScansRows(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	db := &DB{conn: sqlDB}

	executedAt := time.Date(2026, 3, 2, 15, 30, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"order_id", "source", "symbol", "side", "quantity", "price", "total_cost", "executed_at", "recorded_at",
	}).AddRow("order-2", "simulator", "TSLA", "sell", "3", "248.5", "745.5", executedAt, executedAt)

	mock.ExpectQuery("SELECT order_id").WillReturnRows(rows)

	executions, err := db.ListExecutions(context.Background())
	require.NoError(t, err)
	require.Len(t, executions, 1)
	assert.Equal(t, "TSLA", executions[0].Symbol)
	assert.Equal(t, models.OrderSideSell, executions[0].Side)
	assert.True(t, decimal.NewFromFloat(745.5).Equal(executions[0].TotalCost))
	assert.Equal(t, executedAt, executions[0].ExecutedAt)
}

func TestExecutionsRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)
	ctx := context.Background()

	t.Run("duplicate order is ignored", func(t *testing.T) {
		testDB.TruncateAll(t)

		e := &models.Execution{
			OrderID:    "order-9",
			Source:     "simulator",
			Symbol:     "NVDA",
			Side:       models.OrderSideBuy,
			Quantity:   decimal.NewFromInt(2),
			Price:      decimal.NewFromFloat(145.5),
			TotalCost:  decimal.NewFromFloat(291),
			ExecutedAt: time.Now(),
		}
		require.NoError(t, testDB.RecordExecution(ctx, e))
		require.NoError(t, testDB.RecordExecution(ctx, e))

		exists, err := testDB.ExecutionExists(ctx, "order-9", "simulator")
		require.NoError(t, err)
		assert.True(t, exists)

		executions, err := testDB.ListExecutionsBySymbol(ctx, "NVDA", 10)
		require.NoError(t, err)
		assert.Len(t, executions, 1)
	})
}

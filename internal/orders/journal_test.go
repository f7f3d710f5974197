package orders

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trogers1052/trade-advisor/internal/models"
	"github.com/trogers1052/trade-advisor/internal/store"
)

func TestJournal(t *testing.T) {
	ctx := context.Background()
	j := NewJournal(store.NewMemory())

	older := &models.Execution{
		OrderID:    "o-1",
		Source:     EventSource,
		Symbol:     "AAPL",
		Side:       models.OrderSideBuy,
		Quantity:   decimal.NewFromInt(1),
		Price:      decimal.NewFromFloat(185.25),
		TotalCost:  decimal.NewFromFloat(185.25),
		ExecutedAt: time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC),
	}
	newer := &models.Execution{
		OrderID:    "o-2",
		Source:     EventSource,
		Symbol:     "TSLA",
		Side:       models.OrderSideSell,
		Quantity:   decimal.NewFromInt(2),
		Price:      decimal.NewFromFloat(248.75),
		TotalCost:  decimal.NewFromFloat(497.5),
		ExecutedAt: time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC),
	}

	exists, err := j.ExecutionExists(ctx, "o-1", EventSource)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, j.RecordExecution(ctx, older))
	require.NoError(t, j.RecordExecution(ctx, newer))
	require.NoError(t, j.RecordExecution(ctx, older))

	exists, err = j.ExecutionExists(ctx, "o-1", EventSource)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = j.ExecutionExists(ctx, "o-1", "other")
	require.NoError(t, err)
	assert.False(t, exists)

	entries, err := j.ListExecutions(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "o-2", entries[0].OrderID)
	assert.False(t, entries[1].RecordedAt.IsZero())
}

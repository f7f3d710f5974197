package portfolio

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trogers1052/trade-advisor/internal/models"
	"github.com/trogers1052/trade-advisor/internal/store"
)

func TestAccounts(t *testing.T) {
	ctx := context.Background()

	t.Run("missing account", func(t *testing.T) {
		a := NewAccounts(store.NewMemory())
		_, err := a.Get(ctx)
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})

	t.Run("seed writes the demo account once", func(t *testing.T) {
		a := NewAccounts(store.NewMemory())

		seeded, err := a.SeedDemo(ctx)
		require.NoError(t, err)
		assert.True(t, seeded)

		acct, err := a.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "account_1", acct.ID)
		assert.Equal(t, "25000", acct.Balance.String())
		assert.Equal(t, "50000", acct.BuyingPower.String())
		assert.Equal(t, "100000", acct.DayTradingBuyingPower.String())
		assert.Equal(t, 3, acct.DayTradesRemaining)
		assert.False(t, acct.IsPatternDayTrader)

		acct.Balance = d("1")
		require.NoError(t, a.Save(ctx, acct))
		seeded, err = a.SeedDemo(ctx)
		require.NoError(t, err)
		assert.False(t, seeded)

		again, _ := a.Get(ctx)
		assert.Equal(t, "1", again.Balance.String())
	})

	t.Run("buying power check", func(t *testing.T) {
		a := NewAccounts(store.NewMemory())
		_, err := a.SeedDemo(ctx)
		require.NoError(t, err)

		assert.NoError(t, a.CheckBuyingPower(ctx, d("50000")))
		err = a.CheckBuyingPower(ctx, d("50000.01"))
		assert.ErrorIs(t, err, ErrInsufficientBuyingPower)
	})

	t.Run("fills move balance and buying power", func(t *testing.T) {
		a := NewAccounts(store.NewMemory())
		_, err := a.SeedDemo(ctx)
		require.NoError(t, err)

		require.NoError(t, a.ApplyFill(ctx, models.OrderSideBuy, d("1000")))
		acct, _ := a.Get(ctx)
		assert.Equal(t, "24000", acct.Balance.String())
		assert.Equal(t, "49000", acct.BuyingPower.String())

		require.NoError(t, a.ApplyFill(ctx, models.OrderSideSell, d("250.5")))
		acct, _ = a.Get(ctx)
		assert.Equal(t, "24250.5", acct.Balance.String())
		assert.Equal(t, "49250.5", acct.BuyingPower.String())
	})
}

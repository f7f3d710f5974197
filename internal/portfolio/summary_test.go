package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trogers1052/trade-advisor/internal/models"
)

func position(symbol, sector, qty, avg, price string) *models.Position {
	p := &models.Position{Symbol: symbol, Sector: sector, Quantity: d(qty), AverageBuyPrice: d(avg)}
	p.Reprice(d(price))
	return p
}

func TestSummarize(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		s := Summarize(nil)
		assert.NotNil(t, s.Positions)
		assert.Empty(t, s.SectorAllocation)
		assert.True(t, s.TotalPnLPercent.IsZero())
		assert.True(t, s.DayChangePercent.IsZero())
		assert.Nil(t, s.TopLoser)
	})

	t.Run("sector allocation keeps first seen order", func(t *testing.T) {
		s := Summarize([]*models.Position{
			position("AMZN", "E-commerce", "1", "100", "100"),
			position("AAPL", "Technology", "3", "100", "100"),
			position("MSFT", "Technology", "1", "100", "100"),
		})

		require.Len(t, s.SectorAllocation, 2)
		assert.Equal(t, "E-commerce", s.SectorAllocation[0].Sector)
		assert.Equal(t, "20", s.SectorAllocation[0].Percentage.String())
		assert.Equal(t, "Technology", s.SectorAllocation[1].Sector)
		assert.Equal(t, "80", s.SectorAllocation[1].Percentage.String())
	})

	t.Run("totals and extremes", func(t *testing.T) {
		s := Summarize([]*models.Position{
			position("A", "X", "10", "10", "12"),
			position("B", "X", "10", "10", "9"),
			position("C", "X", "10", "10", "10"),
		})

		assert.Equal(t, "310", s.TotalValue.String())
		assert.Equal(t, "300", s.TotalCost.String())
		assert.Equal(t, "10", s.TotalPnL.String())
		assert.Equal(t, "3.33", s.TotalPnLPercent.StringFixed(2))
		assert.Equal(t, "A", s.TopGainer.Symbol)
		assert.Equal(t, "B", s.TopLoser.Symbol)
	})

	t.Run("value totals hold per position", func(t *testing.T) {
		p := position("A", "X", "7", "13.5", "15.25")
		assert.True(t, p.Quantity.Mul(p.CurrentPrice).Equal(p.TotalValue))
		assert.True(t, p.TotalValue.Sub(p.Quantity.Mul(p.AverageBuyPrice)).Equal(p.UnrealizedPnL))
	})
}

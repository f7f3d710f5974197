package portfolio

import (
	"github.com/shopspring/decimal"

	"github.com/trogers1052/trade-advisor/internal/models"
)

// Performance computes win rate, average win and loss, profit factor and
// total return over closed trades. Percent fields are in percent units.
func Performance(trades []*models.ClosedTrade) *models.PerformanceMetrics {
	m := &models.PerformanceMetrics{TotalTrades: len(trades)}
	if len(trades) == 0 {
		return m
	}

	var invested, grossProfit, grossLoss, winPctSum, lossPctSum decimal.Decimal
	for _, t := range trades {
		m.TotalReturn = m.TotalReturn.Add(t.RealizedPnl)
		invested = invested.Add(t.EntryPrice.Mul(t.Quantity).Abs())

		switch {
		case t.RealizedPnl.IsPositive():
			m.WinningTrades++
			grossProfit = grossProfit.Add(t.RealizedPnl)
			winPctSum = winPctSum.Add(t.RealizedPnlPct)
		case t.RealizedPnl.IsNegative():
			m.LosingTrades++
			grossLoss = grossLoss.Add(t.RealizedPnl.Abs())
			lossPctSum = lossPctSum.Add(t.RealizedPnlPct.Abs())
		}
	}

	if invested.IsPositive() {
		m.TotalReturnPercent = m.TotalReturn.Div(invested).Mul(hundred)
	}
	m.WinRate = decimal.NewFromInt(int64(m.WinningTrades)).
		Div(decimal.NewFromInt(int64(m.TotalTrades))).
		Mul(hundred)
	if m.WinningTrades > 0 {
		m.AvgWinPercent = winPctSum.Div(decimal.NewFromInt(int64(m.WinningTrades)))
	}
	if m.LosingTrades > 0 {
		m.AvgLossPercent = lossPctSum.Div(decimal.NewFromInt(int64(m.LosingTrades)))
	}
	if grossLoss.IsPositive() {
		m.ProfitFactor = grossProfit.Div(grossLoss)
	}
	return m
}

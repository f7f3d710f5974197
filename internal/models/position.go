package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position represents a current stock holding at a weighted-average cost
type Position struct {
	ID                   string          `json:"id"`
	Symbol               string          `json:"symbol"`
	CompanyName          string          `json:"company_name"`
	Quantity             decimal.Decimal `json:"quantity"`
	AverageBuyPrice      decimal.Decimal `json:"average_buy_price"`
	CurrentPrice         decimal.Decimal `json:"current_price"`
	TotalValue           decimal.Decimal `json:"total_value"`
	UnrealizedPnL        decimal.Decimal `json:"unrealized_pnl"`
	UnrealizedPnLPercent decimal.Decimal `json:"unrealized_pnl_pct"`
	DayChange            decimal.Decimal `json:"day_change"`
	Sector               string          `json:"sector,omitempty"`
	PurchaseDate         time.Time       `json:"purchase_date"`
	LastUpdated          time.Time       `json:"last_updated"`
}

// CostBasis returns quantity * average buy price
func (p *Position) CostBasis() decimal.Decimal {
	return p.Quantity.Mul(p.AverageBuyPrice)
}

// Reprice sets the current price and recomputes the derived value and P&L fields
func (p *Position) Reprice(price decimal.Decimal) {
	p.CurrentPrice = price
	p.TotalValue = p.Quantity.Mul(price)
	cost := p.CostBasis()
	p.UnrealizedPnL = p.TotalValue.Sub(cost)
	if cost.IsZero() {
		p.UnrealizedPnLPercent = decimal.Zero
		return
	}
	p.UnrealizedPnLPercent = p.UnrealizedPnL.Div(cost).Mul(decimal.NewFromInt(100))
}

// SectorAllocation is the share of portfolio value held in one sector
type SectorAllocation struct {
	Sector     string          `json:"sector"`
	Value      decimal.Decimal `json:"value"`
	Percentage decimal.Decimal `json:"percentage"`
}

// PortfolioSummary aggregates all open positions
type PortfolioSummary struct {
	TotalValue       decimal.Decimal    `json:"total_value"`
	TotalCost        decimal.Decimal    `json:"total_cost"`
	TotalPnL         decimal.Decimal    `json:"total_pnl"`
	TotalPnLPercent  decimal.Decimal    `json:"total_pnl_pct"`
	DayChange        decimal.Decimal    `json:"day_change"`
	DayChangePercent decimal.Decimal    `json:"day_change_pct"`
	Positions        []*Position        `json:"positions"`
	TopGainer        *Position          `json:"top_gainer,omitempty"`
	TopLoser         *Position          `json:"top_loser,omitempty"`
	SectorAllocation []SectorAllocation `json:"sector_allocation"`
}

// TradingAccount is the single demo brokerage account of a local install
type TradingAccount struct {
	ID                    string          `json:"id"`
	Balance               decimal.Decimal `json:"balance"`
	BuyingPower           decimal.Decimal `json:"buying_power"`
	DayTradingBuyingPower decimal.Decimal `json:"day_trading_buying_power"`
	PortfolioValue        decimal.Decimal `json:"portfolio_value"`
	DayTradesRemaining    int             `json:"day_trades_remaining"`
	IsPatternDayTrader    bool            `json:"is_pattern_day_trader"`
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderSide is the direction of an order
type OrderSide string

// Order side constants
const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// OrderType is the pricing instruction attached to an order
type OrderType string

// Order type constants
const (
	OrderTypeMarket OrderType = "market"
	OrderTypeLimit  OrderType = "limit"
	OrderTypeStop   OrderType = "stop"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

// Order status constants
const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusFilled    OrderStatus = "filled"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRejected  OrderStatus = "rejected"
)

// Order represents a simulated order. Status only ever moves forward from pending.
type Order struct {
	ID             string           `json:"id"`
	Symbol         string           `json:"symbol"`
	CompanyName    string           `json:"company_name"`
	Side           OrderSide        `json:"type"`
	OrderType      OrderType        `json:"order_type"`
	Quantity       decimal.Decimal  `json:"quantity"`
	Price          *decimal.Decimal `json:"price,omitempty"`
	StopPrice      *decimal.Decimal `json:"stop_price,omitempty"`
	Status         OrderStatus      `json:"status"`
	CreatedAt      time.Time        `json:"created_at"`
	FilledAt       *time.Time       `json:"filled_at,omitempty"`
	FilledPrice    *decimal.Decimal `json:"filled_price,omitempty"`
	FilledQuantity *decimal.Decimal `json:"filled_quantity,omitempty"`
	RejectReason   string           `json:"reject_reason,omitempty"`
}

// IsPending reports whether the order can still be filled or cancelled
func (o *Order) IsPending() bool {
	return o.Status == OrderStatusPending
}

// EstimatedTotal is quantity times the limit price, or times the supplied market price
func (o *Order) EstimatedTotal(marketPrice decimal.Decimal) decimal.Decimal {
	if o.Price != nil && o.Price.IsPositive() {
		return o.Quantity.Mul(*o.Price)
	}
	return o.Quantity.Mul(marketPrice)
}

// ClosedTrade records realized P&L from a sell fill
type ClosedTrade struct {
	ID             string          `json:"id"`
	OrderID        string          `json:"order_id,omitempty"`
	Symbol         string          `json:"symbol"`
	Quantity       decimal.Decimal `json:"quantity"`
	EntryPrice     decimal.Decimal `json:"entry_price"`
	ExitPrice      decimal.Decimal `json:"exit_price"`
	RealizedPnl    decimal.Decimal `json:"realized_pnl"`
	RealizedPnlPct decimal.Decimal `json:"realized_pnl_pct"`
	EntryDate      time.Time       `json:"entry_date"`
	ExitDate       time.Time       `json:"exit_date"`
	PositionClosed bool            `json:"position_closed"`
}

// PerformanceMetrics aggregates closed trades
type PerformanceMetrics struct {
	TotalTrades        int             `json:"total_trades"`
	WinningTrades      int             `json:"winning_trades"`
	LosingTrades       int             `json:"losing_trades"`
	WinRate            decimal.Decimal `json:"win_rate"`
	TotalReturn        decimal.Decimal `json:"total_return"`
	TotalReturnPercent decimal.Decimal `json:"total_return_pct"`
	AvgWinPercent      decimal.Decimal `json:"avg_win_pct"`
	AvgLossPercent     decimal.Decimal `json:"avg_loss_pct"`
	ProfitFactor       decimal.Decimal `json:"profit_factor"`
}

// Execution is a journal entry for a filled order, written from the event stream
type Execution struct {
	OrderID    string          `json:"order_id"`
	Source     string          `json:"source"`
	Symbol     string          `json:"symbol"`
	Side       OrderSide       `json:"side"`
	Quantity   decimal.Decimal `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	TotalCost  decimal.Decimal `json:"total_cost"`
	ExecutedAt time.Time       `json:"executed_at"`
	RecordedAt time.Time       `json:"recorded_at"`
}

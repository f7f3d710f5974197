package models

import "time"

// Recommendation is a generated day-trade idea derived from a single quote
type Recommendation struct {
	ID                     string    `json:"id"`
	Symbol                 string    `json:"symbol"`
	CompanyName            string    `json:"company_name"`
	CurrentPrice           float64   `json:"current_price"`
	RecommendedBuyPrice    float64   `json:"recommended_buy_price"`
	TargetSellPrice        float64   `json:"target_sell_price"`
	StopLoss               float64   `json:"stop_loss"`
	ConfidenceScore        float64   `json:"confidence_score"`
	PotentialProfit        float64   `json:"potential_profit"`
	PotentialProfitPercent float64   `json:"potential_profit_pct"`
	Timeframe              string    `json:"timeframe"`
	Volume                 int64     `json:"volume"`
	MarketCap              string    `json:"market_cap"`
	Sector                 string    `json:"sector"`
	Analysis               Analysis  `json:"analysis"`
	Timestamp              time.Time `json:"timestamp"`
	IsWatchlisted          bool      `json:"is_watchlisted"`
}

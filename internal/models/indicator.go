package models

// Indicator name constants
const (
	IndicatorRSI14      = "RSI (14)"
	IndicatorMASignal   = "MA Signal"
	IndicatorVolume     = "Volume"
	IndicatorVolatility = "Volatility"
)

// Signal constants
const (
	SignalBuy     = "buy"
	SignalSell    = "sell"
	SignalNeutral = "neutral"
)

// IndicatorReading is a single quote-derived technical reading
type IndicatorReading struct {
	Name        string  `json:"name"`
	Value       float64 `json:"value"`
	Signal      string  `json:"signal"`
	Description string  `json:"description"`
}

// Analysis is the reasoning attached to a recommendation
type Analysis struct {
	TechnicalIndicators []string `json:"technical_indicators"`
	NewsSentiment       string   `json:"news_sentiment"`
	MarketTrend         string   `json:"market_trend"`
	RiskLevel           string   `json:"risk_level"`
	KeyFactors          []string `json:"key_factors"`
}

// Risk level constants
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

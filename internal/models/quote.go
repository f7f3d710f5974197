package models

import "time"

// QuoteSource tells whether a quote came from the provider or the local generator
type QuoteSource string

// Quote source constants
const (
	QuoteSourceLive     QuoteSource = "live"
	QuoteSourceFallback QuoteSource = "fallback"
)

// Quote represents a point-in-time price snapshot for a symbol
type Quote struct {
	Symbol        string      `json:"symbol"`
	Price         float64     `json:"price"`
	Change        float64     `json:"change"`
	ChangePercent float64     `json:"change_percent"`
	Volume        int64       `json:"volume"`
	MarketCap     string      `json:"market_cap,omitempty"`
	Source        QuoteSource `json:"source"`
	FetchedAt     time.Time   `json:"fetched_at"`
}

// Company holds the static reference data for a symbol
type Company struct {
	Symbol string `json:"symbol" yaml:"symbol"`
	Name   string `json:"name" yaml:"name"`
	Sector string `json:"sector" yaml:"sector"`
}

// WatchlistItem represents a symbol the user follows independently of recommendations
type WatchlistItem struct {
	ID                 string    `json:"id"`
	Symbol             string    `json:"symbol"`
	CompanyName        string    `json:"company_name"`
	CurrentPrice       float64   `json:"current_price"`
	PriceChange        float64   `json:"price_change"`
	PriceChangePercent float64   `json:"price_change_percent"`
	AddedAt            time.Time `json:"added_at"`
}

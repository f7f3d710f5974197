package models

import "time"

// AlertType is the condition a price alert watches for
type AlertType string

// Alert type constants
const (
	AlertTypeAbove         AlertType = "above"
	AlertTypeBelow         AlertType = "below"
	AlertTypeChangePercent AlertType = "change_percent"
)

// PriceAlert represents a one-shot price condition on a symbol
type PriceAlert struct {
	ID            string     `json:"id"`
	Symbol        string     `json:"symbol"`
	Type          AlertType  `json:"type"`
	TargetPrice   *float64   `json:"target_price,omitempty"`
	ChangePercent *float64   `json:"change_percent,omitempty"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
	TriggeredAt   *time.Time `json:"triggered_at,omitempty"`
	TriggerPrice  *float64   `json:"trigger_price,omitempty"`
}

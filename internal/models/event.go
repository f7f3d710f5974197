package models

import "time"

// Order event type constants
const (
	EventOrderPlaced    = "ORDER_PLACED"
	EventOrderFilled    = "ORDER_FILLED"
	EventOrderCancelled = "ORDER_CANCELLED"
	EventOrderRejected  = "ORDER_REJECTED"
)

// OrderEvent represents a Kafka event for an order state change
type OrderEvent struct {
	EventType string    `json:"event_type"`
	Source    string    `json:"source"`
	Order     *Order    `json:"order"`
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`
}

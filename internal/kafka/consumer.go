package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/trogers1052/trade-advisor/internal/models"
)

// ExecutionRepository is the execution journal the consumer writes to
type ExecutionRepository interface {
	RecordExecution(ctx context.Context, e *models.Execution) error
	ExecutionExists(ctx context.Context, orderID, source string) (bool, error)
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consumer journals filled orders from the order event topic.
// Other event types are read and skipped.
type Consumer struct {
	reader messageReader
	repo   ExecutionRepository
	topic  string
	log    zerolog.Logger
}

// NewConsumer creates a new Kafka consumer for order events
func NewConsumer(brokers []string, topic, groupID string, repo ExecutionRepository, log zerolog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
	})

	return &Consumer{
		reader: reader,
		repo:   repo,
		topic:  topic,
		log:    log.With().Str("component", "kafka-consumer").Logger(),
	}
}

// Start begins consuming messages until ctx is cancelled
func (c *Consumer) Start(ctx context.Context) error {
	c.log.Info().Str("topic", c.topic).Msg("starting kafka consumer")

	for {
		select {
		case <-ctx.Done():
			c.log.Info().Msg("kafka consumer shutting down")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return c.reader.Close()
				}
				c.log.Error().Err(err).Msg("error reading message")
				continue
			}

			if err := c.processMessage(ctx, msg); err != nil {
				c.log.Error().Err(err).
					Int("partition", msg.Partition).
					Int64("offset", msg.Offset).
					Msg("error processing message")
			}
		}
	}
}

func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) error {
	c.log.Debug().
		Int("partition", msg.Partition).
		Int64("offset", msg.Offset).
		Str("key", string(msg.Key)).
		Msg("received message")

	var event models.OrderEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal order event: %w", err)
	}

	if event.EventType != models.EventOrderFilled {
		return nil
	}

	execution, err := toExecution(event)
	if err != nil {
		return fmt.Errorf("failed to convert event to execution: %w", err)
	}

	exists, err := c.repo.ExecutionExists(ctx, execution.OrderID, execution.Source)
	if err != nil {
		return fmt.Errorf("failed to check for duplicate execution: %w", err)
	}
	if exists {
		c.log.Debug().Str("order_id", execution.OrderID).Str("source", execution.Source).Msg("execution already journaled, skipping")
		return nil
	}

	if err := c.repo.RecordExecution(ctx, execution); err != nil {
		return fmt.Errorf("failed to save execution: %w", err)
	}

	c.log.Info().
		Str("order_id", execution.OrderID).
		Str("symbol", execution.Symbol).
		Str("side", string(execution.Side)).
		Str("quantity", execution.Quantity.String()).
		Str("price", execution.Price.String()).
		Msg("journaled execution")
	return nil
}

// toExecution maps a filled-order event to a journal entry
func toExecution(event models.OrderEvent) (*models.Execution, error) {
	o := event.Order
	if o == nil {
		return nil, errors.New("event has no order")
	}
	if o.ID == "" {
		return nil, errors.New("order has no id")
	}
	if o.Side != models.OrderSideBuy && o.Side != models.OrderSideSell {
		return nil, fmt.Errorf("invalid order side: %s", o.Side)
	}
	if o.FilledPrice == nil || !o.FilledPrice.IsPositive() {
		return nil, fmt.Errorf("order %s has no fill price", o.ID)
	}

	quantity := o.Quantity
	if o.FilledQuantity != nil {
		quantity = *o.FilledQuantity
	}

	executedAt := event.Timestamp
	if o.FilledAt != nil {
		executedAt = *o.FilledAt
	}
	if executedAt.IsZero() {
		executedAt = time.Now()
	}

	return &models.Execution{
		OrderID:    o.ID,
		Source:     event.Source,
		Symbol:     o.Symbol,
		Side:       o.Side,
		Quantity:   quantity,
		Price:      *o.FilledPrice,
		TotalCost:  quantity.Mul(*o.FilledPrice),
		ExecutedAt: executedAt,
	}, nil
}

// Close closes the Kafka consumer
func (c *Consumer) Close() error {
	return c.reader.Close()
}

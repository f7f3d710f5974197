package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trogers1052/trade-advisor/internal/models"
)

type mockWriter struct {
	messages []kafka.Message
	err      error
}

func (w *mockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *mockWriter) Close() error { return nil }

func TestPublishOrderEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("keys by order id", func(t *testing.T) {
		w := &mockWriter{}
		p := &Producer{writer: w, topic: "order-events"}
		event := filledEvent("o-9", models.OrderSideBuy, "2", "10")

		require.NoError(t, p.PublishOrderEvent(ctx, &event))
		require.Len(t, w.messages, 1)
		assert.Equal(t, "o-9", string(w.messages[0].Key))

		var decoded models.OrderEvent
		require.NoError(t, json.Unmarshal(w.messages[0].Value, &decoded))
		assert.Equal(t, models.EventOrderFilled, decoded.EventType)
		assert.Equal(t, "o-9", decoded.Order.ID)
	})

	t.Run("write failure is wrapped", func(t *testing.T) {
		w := &mockWriter{err: errors.New("broker down")}
		p := &Producer{writer: w, topic: "order-events"}
		event := filledEvent("o-9", models.OrderSideBuy, "2", "10")

		err := p.PublishOrderEvent(ctx, &event)
		assert.ErrorContains(t, err, "failed to write message to kafka")
	})
}

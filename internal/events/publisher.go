package events

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"orderhub/internal/models"
)

// StatusChangedKey is the routing key of order status events.
const StatusChangedKey = "order.status_changed"

// Sink is a broker that accepts keyed messages.
type Sink interface {
	Publish(ctx context.Context, key string, body []byte) error
}

// KeyFunc picks the broker key for an event.
type KeyFunc func(evt models.OrderStatusChanged) string

// ByEventName keys every message with the event name, for topic routing.
func ByEventName(models.OrderStatusChanged) string { return StatusChangedKey }

// ByOrderID keys messages by order so per-order ordering is kept on partitioned brokers.
func ByOrderID(evt models.OrderStatusChanged) string { return evt.OrderID }

// Publisher serializes domain events onto a Sink.
type Publisher struct {
	sink   Sink
	key    KeyFunc
	logger *zap.Logger
}

// NewPublisher creates a Publisher. A nil key defaults to ByEventName.
func NewPublisher(sink Sink, key KeyFunc, logger *zap.Logger) *Publisher {
	if key == nil {
		key = ByEventName
	}
	return &Publisher{sink: sink, key: key, logger: logger}
}

// PublishStatusChanged sends evt as JSON.
func (p *Publisher) PublishStatusChanged(ctx context.Context, evt models.OrderStatusChanged) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", StatusChangedKey, err)
	}
	if err := p.sink.Publish(ctx, p.key(evt), body); err != nil {
		return fmt.Errorf("publish %s for order %s: %w", StatusChangedKey, evt.OrderID, err)
	}
	p.logger.Debug("status change published",
		zap.String("order_id", evt.OrderID),
		zap.String("to", string(evt.To)))
	return nil
}

// Nop discards events.
type Nop struct{}

// PublishStatusChanged does nothing.
func (Nop) PublishStatusChanged(context.Context, models.OrderStatusChanged) error { return nil }

package services

import (
	"context"

	"orderhub/internal/models"
)

// Event names pushed to real-time clients.
const (
	EventNotification = "notification"
	EventOrderUpdated = "orderUpdated"
)

// Notifier delivers payloads to live connections. Implementations must not block.
type Notifier interface {
	Push(userID, event string, payload any)
	PushGlobal(event string, payload any)
}

// EventPublisher forwards domain events to a message broker. It is called on the
// order path and must not block on the broker.
type EventPublisher interface {
	PublishStatusChanged(ctx context.Context, evt models.OrderStatusChanged) error
}

type nopNotifier struct{}

func (nopNotifier) Push(string, string, any) {}
func (nopNotifier) PushGlobal(string, any)   {}

type nopPublisher struct{}

func (nopPublisher) PublishStatusChanged(context.Context, models.OrderStatusChanged) error {
	return nil
}

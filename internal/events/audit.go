package events

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"orderhub/internal/models"
)

// AuditLogger returns a consumer handler that records every status change in the log.
// Undecodable bodies are rejected so the broker can dead-letter them.
func AuditLogger(logger *zap.Logger) func(ctx context.Context, routingKey string, body []byte) error {
	return func(_ context.Context, routingKey string, body []byte) error {
		if routingKey != StatusChangedKey {
			logger.Debug("ignoring order event", zap.String("routing_key", routingKey))
			return nil
		}
		var evt models.OrderStatusChanged
		if err := json.Unmarshal(body, &evt); err != nil {
			return fmt.Errorf("decode %s: %w", routingKey, err)
		}
		logger.Info("order status changed",
			zap.String("order_id", evt.OrderID),
			zap.String("user_id", evt.UserID),
			zap.String("from", string(evt.From)),
			zap.String("to", string(evt.To)),
			zap.Time("at", evt.At))
		return nil
	}
}

package repositories

import (
	"context"

	"orderhub/internal/models"
)

// NotificationRepository defines the interface for notification data access.
type NotificationRepository interface {
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	Create(ctx context.Context, n *models.Notification) error
	// ListByUser returns the user's notifications, most recent first.
	ListByUser(ctx context.Context, userID string) ([]models.Notification, error)
	MarkRead(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

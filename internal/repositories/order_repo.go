package repositories

import (
	"context"

	"orderhub/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	GetByID(ctx context.Context, id string) (*models.Order, error)
	Create(ctx context.Context, order *models.Order) error
	// List returns one page of orders, newest first, and the total count.
	List(ctx context.Context, offset, limit int) ([]models.Order, int64, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	// SaveStatus persists the status and the status-entry timestamps of order.
	SaveStatus(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id string) error
}

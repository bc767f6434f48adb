package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"orderhub/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
	}
}

// cloneOrder copies the item slice so callers never share backing arrays with the store.
func cloneOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderItem(nil), o.Items...)
	return o
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	order = cloneOrder(order)
	return &order, nil
}

// Create adds a new order.
func (r *MockOrderRepository) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.Status == "" {
		order.Status = models.StatusProcessing
	}
	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	r.orders[order.ID] = cloneOrder(*order)
	return nil
}

func (r *MockOrderRepository) sortedLocked(keep func(models.Order) bool) []models.Order {
	list := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if keep(order) {
			list = append(list, cloneOrder(order))
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list
}

// List returns one page of orders, newest first.
func (r *MockOrderRepository) List(_ context.Context, offset, limit int) ([]models.Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.sortedLocked(func(models.Order) bool { return true })
	total := int64(len(all))
	if offset >= len(all) {
		return []models.Order{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// ListByUser returns the orders owned by userID, newest first.
func (r *MockOrderRepository) ListByUser(_ context.Context, userID string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedLocked(func(o models.Order) bool { return o.UserID == userID }), nil
}

// SaveStatus updates the status fields of an order.
func (r *MockOrderRepository) SaveStatus(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[order.ID]
	if !ok {
		return fmt.Errorf("order with ID %s for status update: %w", order.ID, ErrNotFound)
	}
	stored.Status = order.Status
	stored.ShippedAt = order.ShippedAt
	stored.SoonAt = order.SoonAt
	stored.DeliveredAt = order.DeliveredAt
	stored.CancelledAt = order.CancelledAt
	stored.UpdatedAt = time.Now().UTC()
	order.UpdatedAt = stored.UpdatedAt
	r.orders[order.ID] = stored
	return nil
}

// Delete removes an order by its ID.
func (r *MockOrderRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[id]; !ok {
		return fmt.Errorf("order with ID %s for deletion: %w", id, ErrNotFound)
	}
	delete(r.orders, id)
	return nil
}

package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"orderhub/internal/models"

	"github.com/google/uuid"
)

// MockNotificationRepository is an in-memory implementation of NotificationRepository.
// Records are kept in insertion order so listing is stable for equal timestamps.
type MockNotificationRepository struct {
	items []models.Notification
	mu    sync.RWMutex
}

// NewMockNotificationRepository creates a new instance of MockNotificationRepository.
func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{}
}

func cloneNotification(n models.Notification) models.Notification {
	n.ProductIDs = append([]string(nil), n.ProductIDs...)
	return n
}

// Create stores a new notification.
func (r *MockNotificationRepository) Create(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now
	r.items = append(r.items, cloneNotification(*n))
	return nil
}

// ListByUser returns a user's notifications, most recent first.
func (r *MockNotificationRepository) ListByUser(_ context.Context, userID string) ([]models.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Notification, 0)
	for i := len(r.items) - 1; i >= 0; i-- {
		if r.items[i].UserID == userID {
			list = append(list, cloneNotification(r.items[i]))
		}
	}
	return list, nil
}

func (r *MockNotificationRepository) indexLocked(id string) int {
	for i := range r.items {
		if r.items[i].ID == id {
			return i
		}
	}
	return -1
}

// GetByID returns a notification by its ID.
func (r *MockNotificationRepository) GetByID(_ context.Context, id string) (*models.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexLocked(id)
	if i < 0 {
		return nil, fmt.Errorf("notification with ID %s: %w", id, ErrNotFound)
	}
	n := cloneNotification(r.items[i])
	return &n, nil
}

// MarkRead flags a notification as read.
func (r *MockNotificationRepository) MarkRead(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("notification with ID %s: %w", id, ErrNotFound)
	}
	if !r.items[i].Read {
		r.items[i].Read = true
		r.items[i].UpdatedAt = time.Now().UTC()
	}
	return nil
}

// Delete removes a notification by its ID.
func (r *MockNotificationRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("notification with ID %s for deletion: %w", id, ErrNotFound)
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	return nil
}

// DeleteByUser removes every notification of a user and reports how many were removed.
func (r *MockNotificationRepository) DeleteByUser(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.items[:0]
	var removed int64
	for _, n := range r.items {
		if n.UserID == userID {
			removed++
			continue
		}
		kept = append(kept, n)
	}
	clear(r.items[len(kept):])
	r.items = kept
	return removed, nil
}

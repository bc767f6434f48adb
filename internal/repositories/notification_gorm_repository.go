package repositories

import (
	"context"
	"errors"
	"fmt"

	"orderhub/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMNotificationRepository is a GORM implementation of NotificationRepository.
type GORMNotificationRepository struct {
	db *gorm.DB
}

// NewGORMNotificationRepository creates a new instance of GORMNotificationRepository.
func NewGORMNotificationRepository(db *gorm.DB) *GORMNotificationRepository {
	return &GORMNotificationRepository{db: db}
}

// Create inserts a notification.
func (r *GORMNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListByUser returns a user's notifications, most recent first.
func (r *GORMNotificationRepository) ListByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	notifications := make([]models.Notification, 0)
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications of user %s: %w", userID, err)
	}
	return notifications, nil
}

// GetByID returns a notification by its ID.
func (r *GORMNotificationRepository) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.WithContext(ctx).First(&n, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("notification with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get notification %s: %w", id, err)
	}
	return &n, nil
}

// MarkRead sets the read flag. Marking an already read notification succeeds.
func (r *GORMNotificationRepository) MarkRead(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).Where("id = ?", id).Update("read", true)
	if res.Error != nil {
		return fmt.Errorf("failed to mark notification %s read: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("notification with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes a notification by its ID.
func (r *GORMNotificationRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Notification{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete notification: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("notification with ID %s for deletion: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteByUser removes all notifications of a user.
func (r *GORMNotificationRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Notification{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to clear notifications of user %s: %w", userID, res.Error)
	}
	return res.RowsAffected, nil
}

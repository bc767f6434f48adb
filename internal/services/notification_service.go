package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"orderhub/internal/models"
	"orderhub/internal/repositories"

	"go.uber.org/zap"
)

// NotificationService is the notification store. Every created notification is
// persisted first and then pushed to the owner's live connections.
type NotificationService struct {
	repo      repositories.NotificationRepository
	orders    repositories.OrderRepository
	products  repositories.ProductRepository
	notifier  Notifier
	userLocks *keyedMutex
	logger    *zap.Logger
}

// NewNotificationService creates a new NotificationService. A nil notifier disables pushes.
func NewNotificationService(
	repo repositories.NotificationRepository,
	orders repositories.OrderRepository,
	products repositories.ProductRepository,
	notifier Notifier,
	logger *zap.Logger,
) *NotificationService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &NotificationService{
		repo:      repo,
		orders:    orders,
		products:  products,
		notifier:  notifier,
		userLocks: newKeyedMutex(),
		logger:    logger,
	}
}

// Create persists n and pushes it to its user. Creation and push are serialized
// per user, so a user's connections see notifications in creation order.
func (s *NotificationService) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	if strings.TrimSpace(n.UserID) == "" {
		return nil, fmt.Errorf("%w: notification needs a target user", ErrValidation)
	}
	if n.Type == "" {
		n.Type = models.NotificationAlert
	}
	n.Read = false

	unlock := s.userLocks.Lock(n.UserID)
	defer unlock()

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	s.notifier.Push(n.UserID, EventNotification, *n)
	return n, nil
}

// ListByUser returns the user's inbox, most recent first. An empty inbox is not an error.
func (s *NotificationService) ListByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if list == nil {
		list = []models.Notification{}
	}
	return list, nil
}

// Get returns one notification; a missing id reports ErrNotificationNotFound.
func (s *NotificationService) Get(ctx context.Context, id string) (*models.Notification, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.wrapNotFound(id, err)
	}
	return n, nil
}

// MarkRead flags a notification as read. Already read notifications succeed unchanged.
func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	return s.wrapNotFound(id, s.repo.MarkRead(ctx, id))
}

// Delete removes one notification; a missing id reports ErrNotificationNotFound.
func (s *NotificationService) Delete(ctx context.Context, id string) error {
	return s.wrapNotFound(id, s.repo.Delete(ctx, id))
}

// DeleteAllByUser clears a user's inbox and returns the number of removed notifications.
func (s *NotificationService) DeleteAllByUser(ctx context.Context, userID string) (int64, error) {
	removed, err := s.repo.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	s.logger.Info("notifications cleared", zap.String("user_id", userID), zap.Int64("removed", removed))
	return removed, nil
}

// NotifyOrderItems creates one notification per line item of an order whose product
// still exists. message defaults to a per-product status line, typ to alert.
func (s *NotificationService) NotifyOrderItems(ctx context.Context, orderID string, typ models.NotificationType, message string) ([]models.Notification, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, fmt.Errorf("%w: order id is required", ErrValidation)
	}
	if typ == "" {
		typ = models.NotificationAlert
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
		}
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	created := make([]models.Notification, 0, len(order.Items))
	for _, item := range order.Items {
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				continue
			}
			return created, fmt.Errorf("%w: %w", ErrStorage, err)
		}

		text := message
		if text == "" {
			text = fmt.Sprintf("Order status updated for %s", product.Name)
		}
		n, err := s.Create(ctx, &models.Notification{
			UserID:    order.UserID,
			Type:      typ,
			Title:     orderTitle(order.ID),
			Message:   text,
			OrderID:   order.ID,
			ProductID: product.ID,
		})
		if err != nil {
			return created, err
		}
		created = append(created, *n)
	}

	s.logger.Info("order item notifications created",
		zap.String("order_id", order.ID),
		zap.Int("count", len(created)))
	return created, nil
}

func (s *NotificationService) wrapNotFound(id string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotificationNotFound, id)
	}
	return fmt.Errorf("%w: %w", ErrStorage, err)
}

// orderTitle shortens an order id to its last six characters.
func orderTitle(orderID string) string {
	short := orderID
	if len(short) > 6 {
		short = short[len(short)-6:]
	}
	return "Order #" + short
}

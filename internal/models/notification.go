package models

import "time"

// NotificationType tags what a notification is about. The set is open.
type NotificationType string

const (
	NotificationOrder    NotificationType = "order"
	NotificationAlert    NotificationType = "alert"
	NotificationDelivery NotificationType = "delivery"
	NotificationPromo    NotificationType = "promo"
)

// Notification is a durable inbox entry for exactly one user.
// ProductID is set by the per-item path, ProductIDs by the per-order path.
type Notification struct {
	ID         string           `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	UserID     string           `json:"userId" gorm:"index;type:varchar(36);not null"`
	Type       NotificationType `json:"type" gorm:"type:varchar(20)"`
	Title      string           `json:"title"`
	Message    string           `json:"message"`
	OrderID    string           `json:"orderId,omitempty" gorm:"type:varchar(36)"`
	ProductID  string           `json:"productId,omitempty" gorm:"type:varchar(36)"`
	ProductIDs []string         `json:"productIds,omitempty" gorm:"serializer:json"`
	Read       bool             `json:"read"`
	CreatedAt  time.Time        `json:"createdAt" gorm:"index"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

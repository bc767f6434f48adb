package models

import "time"

// OrderStatusChanged is the domain event emitted after an order status write.
type OrderStatusChanged struct {
	OrderID string      `json:"orderId"`
	UserID  string      `json:"userId"`
	From    OrderStatus `json:"from"`
	To      OrderStatus `json:"to"`
	At      time.Time   `json:"at"`
}

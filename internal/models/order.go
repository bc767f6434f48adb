package models

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusSoon       OrderStatus = "Soon"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

// orderTransitions lists the statuses reachable from each status.
// Delivered and Cancelled have no outgoing edges.
var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusProcessing: {StatusShipped, StatusCancelled, StatusSoon},
	StatusShipped:    {StatusDelivered, StatusCancelled},
	StatusSoon:       {StatusShipped, StatusDelivered, StatusCancelled},
	StatusDelivered:  nil,
	StatusCancelled:  nil,
}

// ParseOrderStatus returns the status named by s, or false if s is not a known status.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	status := OrderStatus(s)
	_, ok := orderTransitions[status]
	return status, ok
}

// IsTerminal reports whether no transition may leave s.
func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

// CanTransitionTo reports whether next is reachable from s in one step.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, candidate := range orderTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// StockDelta returns the sign applied to line-item quantities when an order
// enters s: -1 for Shipped and Delivered, +1 for Cancelled, 0 otherwise.
func (s OrderStatus) StockDelta() int {
	switch s {
	case StatusShipped, StatusDelivered:
		return -1
	case StatusCancelled:
		return 1
	default:
		return 0
	}
}

// OrderItem represents a single item within an order.
type OrderItem struct {
	ID        uint    `json:"-" gorm:"primaryKey;autoIncrement"`
	OrderID   string  `json:"-" gorm:"index;type:varchar(36)"`
	ProductID string  `json:"product" gorm:"type:varchar(36)"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"` // Price at the time of order
}

// ShippingInfo is the delivery address captured at checkout.
type ShippingInfo struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	PinCode string `json:"pinCode"`
	PhoneNo string `json:"phoneNo"`
}

// PaymentInfo references the payment that gated order creation.
type PaymentInfo struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Order represents a customer order.
type Order struct {
	ID            string       `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	UserID        string       `json:"user" gorm:"index;type:varchar(36)"`
	Items         []OrderItem  `json:"orderItems" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	ShippingInfo  ShippingInfo `json:"shippingInfo" gorm:"embedded;embeddedPrefix:shipping_"`
	PaymentInfo   PaymentInfo  `json:"paymentInfo" gorm:"embedded;embeddedPrefix:payment_"`
	ItemsPrice    float64      `json:"itemsPrice"`
	TaxPrice      float64      `json:"taxPrice"`
	ShippingPrice float64      `json:"shippingPrice"`
	TotalPrice    float64      `json:"totalPrice"`
	Status        OrderStatus  `json:"orderStatus" gorm:"type:varchar(20);index"`
	PaidAt        *time.Time   `json:"paidAt,omitempty"`
	ShippedAt     *time.Time   `json:"shippedAt,omitempty"`
	SoonAt        *time.Time   `json:"soonAt,omitempty"`
	DeliveredAt   *time.Time   `json:"deliveredAt,omitempty"`
	CancelledAt   *time.Time   `json:"cancelledAt,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// MarkStatus sets the status and stamps the matching status-entry time.
func (o *Order) MarkStatus(status OrderStatus, at time.Time) {
	o.Status = status
	switch status {
	case StatusShipped:
		o.ShippedAt = &at
	case StatusSoon:
		o.SoonAt = &at
	case StatusDelivered:
		o.DeliveredAt = &at
	case StatusCancelled:
		o.CancelledAt = &at
	}
}

// PriceSummary holds the computed totals of an order.
type PriceSummary struct {
	ItemsPrice    float64 `json:"itemsPrice"`
	TaxPrice      float64 `json:"taxPrice"`
	ShippingPrice float64 `json:"shippingPrice"`
	TotalPrice    float64 `json:"totalPrice"`
}

// ApplyPrices copies computed totals onto the order.
func (o *Order) ApplyPrices(p PriceSummary) {
	o.ItemsPrice = p.ItemsPrice
	o.TaxPrice = p.TaxPrice
	o.ShippingPrice = p.ShippingPrice
	o.TotalPrice = p.TotalPrice
}

// StatusUpdate is the fleet-wide payload announcing a new order status.
type StatusUpdate struct {
	OrderID string      `json:"orderId"`
	Status  OrderStatus `json:"status"`
}

package model

import (
	"errors"
	"time"
)

// OrderStatus is the fulfilment state shown on the order badge.
type OrderStatus string

// Order statuses.
const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusCompleted OrderStatus = "Completed"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusInTransit OrderStatus = "InTransit"
)

// OrderDateLayout renders order dates as "MM dd, yyyy".
const OrderDateLayout = "01 02, 2006"

// ErrInvalidOrderStatus is returned for statuses outside the known set.
var ErrInvalidOrderStatus = errors.New("order status must be one of: Pending, Completed, Shipped, InTransit")

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusShipped, OrderStatusInTransit:
		return true
	}
	return false
}

// OrderProduct is the product snapshot embedded in an order item.
type OrderProduct struct {
	Title     string  `json:"title"`
	HeroImage string  `json:"hero_image,omitempty"`
	Price     float64 `json:"price"`
}

// OrderItem is a purchased line within an order.
type OrderItem struct {
	ID       int64        `json:"id"`
	Quantity int          `json:"quantity"`
	Product  OrderProduct `json:"products"`
}

// Order is a placed order addressed by slug.
type Order struct {
	ID        int64       `json:"id"`
	Slug      string      `json:"slug"`
	Details   string      `json:"details,omitempty"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	Items     []OrderItem `json:"order_items"`
}

// Validate checks if the Order has valid field values.
func (o *Order) Validate() error {
	if o.Slug == "" {
		return ErrEmptySlug
	}

	if !o.Status.Valid() {
		return ErrInvalidOrderStatus
	}

	for i := range o.Items {
		if o.Items[i].Quantity < 1 {
			return ErrQuantityTooLow
		}
		if o.Items[i].Product.Price < 0 {
			return ErrNegativePrice
		}
	}

	return nil
}

// OrderLine is an order item flattened for display.
type OrderLine struct {
	ID        int64   `json:"id"`
	Title     string  `json:"title"`
	HeroImage string  `json:"hero_image,omitempty"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// OrderDetail is the order screen.
type OrderDetail struct {
	Slug    string      `json:"slug"`
	Details string      `json:"details,omitempty"`
	Status  OrderStatus `json:"status"`
	Date    string      `json:"date"`
	Items   []OrderLine `json:"items"`
}

// NewOrderDetail flattens the order items and formats the creation date.
func NewOrderDetail(o Order) OrderDetail {
	lines := make([]OrderLine, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, OrderLine{
			ID:        it.ID,
			Title:     it.Product.Title,
			HeroImage: it.Product.HeroImage,
			Price:     it.Product.Price,
			Quantity:  it.Quantity,
		})
	}

	return OrderDetail{
		Slug:    o.Slug,
		Details: o.Details,
		Status:  o.Status,
		Date:    o.CreatedAt.Format(OrderDateLayout),
		Items:   lines,
	}
}

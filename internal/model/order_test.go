package model

import (
	"errors"
	"testing"
	"time"
)

func TestOrderStatus_Valid(t *testing.T) {
	for _, s := range []OrderStatus{OrderStatusPending, OrderStatusCompleted, OrderStatusShipped, OrderStatusInTransit} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}

	if OrderStatus("Lost").Valid() {
		t.Error("unknown status should be invalid")
	}
}

func TestOrder_Validate(t *testing.T) {
	tests := []struct {
		name    string
		order   Order
		wantErr error
	}{
		{
			name:  "valid",
			order: Order{Slug: "ord-1", Status: OrderStatusPending},
		},
		{
			name:    "missing slug",
			order:   Order{Status: OrderStatusPending},
			wantErr: ErrEmptySlug,
		},
		{
			name:    "bad status",
			order:   Order{Slug: "ord-1", Status: "Unknown"},
			wantErr: ErrInvalidOrderStatus,
		},
		{
			name: "zero quantity item",
			order: Order{Slug: "ord-1", Status: OrderStatusShipped, Items: []OrderItem{
				{ID: 1, Quantity: 0, Product: OrderProduct{Title: "x", Price: 1}},
			}},
			wantErr: ErrQuantityTooLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.order.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewOrderDetail(t *testing.T) {
	// Arrange
	order := Order{
		ID:        3,
		Slug:      "ord-3",
		Details:   "gift wrap",
		Status:    OrderStatusInTransit,
		CreatedAt: time.Date(2024, time.March, 9, 15, 4, 0, 0, time.UTC),
		Items: []OrderItem{
			{ID: 10, Quantity: 2, Product: OrderProduct{Title: "Mug", HeroImage: "mug.png", Price: 12.5}},
			{ID: 11, Quantity: 1, Product: OrderProduct{Title: "Tea", Price: 4}},
		},
	}

	// Act
	d := NewOrderDetail(order)

	// Assert
	if d.Date != "03 09, 2024" {
		t.Errorf("Date = %q, want %q", d.Date, "03 09, 2024")
	}
	if d.Status != OrderStatusInTransit || d.Slug != "ord-3" || d.Details != "gift wrap" {
		t.Errorf("header fields not copied: %+v", d)
	}
	if len(d.Items) != 2 {
		t.Fatalf("Items len = %d, want 2", len(d.Items))
	}
	want := OrderLine{ID: 10, Title: "Mug", HeroImage: "mug.png", Price: 12.5, Quantity: 2}
	if d.Items[0] != want {
		t.Errorf("Items[0] = %+v, want %+v", d.Items[0], want)
	}
}

func TestNewOrderDetail_NoItems(t *testing.T) {
	d := NewOrderDetail(Order{Slug: "empty", Status: OrderStatusCompleted})

	if d.Items == nil || len(d.Items) != 0 {
		t.Errorf("Items should be an empty non-nil slice, got %#v", d.Items)
	}
}

package model

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
)

func validLineItem() CartLineItem {
	return CartLineItem{
		ID:          1,
		Title:       "Phone",
		HeroImage:   "https://cdn.example.com/phone.png",
		Price:       199.9,
		Quantity:    2,
		MaxQuantity: 5,
	}
}

func TestCartLineItem_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CartLineItem)
		wantErr error
	}{
		{"valid item", func(_ *CartLineItem) {}, nil},
		{"quantity equals max", func(i *CartLineItem) { i.Quantity = 5 }, nil},
		{"zero price", func(i *CartLineItem) { i.Price = 0 }, nil},
		{"zero id", func(i *CartLineItem) { i.ID = 0 }, ErrInvalidProductID},
		{"negative id", func(i *CartLineItem) { i.ID = -4 }, ErrInvalidProductID},
		{"empty title", func(i *CartLineItem) { i.Title = "" }, ErrEmptyTitle},
		{"title too long", func(i *CartLineItem) { i.Title = strings.Repeat("a", MaxTitleLength+1) }, ErrTitleTooLong},
		{"negative price", func(i *CartLineItem) { i.Price = -0.01 }, ErrNegativePrice},
		{"zero max", func(i *CartLineItem) { i.MaxQuantity = 0 }, ErrInvalidMaxQuantity},
		{"zero quantity", func(i *CartLineItem) { i.Quantity = 0 }, ErrQuantityTooLow},
		{"quantity above max", func(i *CartLineItem) { i.Quantity = 6 }, ErrQuantityTooHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			item := validLineItem()
			tt.mutate(&item)

			// Act
			err := item.Validate()

			// Assert
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCartLineItem_Bounds(t *testing.T) {
	item := validLineItem()

	if item.AtMax() || item.AtMin() {
		t.Fatalf("quantity 2 of 5 should be inside bounds")
	}

	item.Quantity = 5
	if !item.AtMax() {
		t.Error("AtMax() = false at max quantity")
	}

	item.Quantity = 1
	if !item.AtMin() {
		t.Error("AtMin() = false at quantity 1")
	}
}

func TestCartLineItem_WithinBounds(t *testing.T) {
	tests := []struct {
		name string
		item CartLineItem
		want bool
	}{
		{"untitled with zero id", CartLineItem{Quantity: 1, MaxQuantity: 1}, true},
		{"negative id", CartLineItem{ID: -3, Quantity: 2, MaxQuantity: 5}, true},
		{"free item", CartLineItem{ID: 1, Quantity: 5, MaxQuantity: 5}, true},
		{"zero quantity", CartLineItem{ID: 1, MaxQuantity: 5}, false},
		{"above max", CartLineItem{ID: 1, Quantity: 6, MaxQuantity: 5}, false},
		{"zero max", CartLineItem{ID: 1, Quantity: 1}, false},
		{"negative price", CartLineItem{ID: 1, Price: -0.01, Quantity: 1, MaxQuantity: 5}, false},
		{"nan price", CartLineItem{ID: 1, Price: math.NaN(), Quantity: 1, MaxQuantity: 5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.WithinBounds(); got != tt.want {
				t.Errorf("WithinBounds() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	// Arrange
	items := []CartLineItem{
		{ID: 1, Title: "A", Price: 10.5, Quantity: 2, MaxQuantity: 5},
		{ID: 2, Title: "B", Price: 0.25, Quantity: 4, MaxQuantity: 4},
	}

	// Act
	s := Summarize(items)

	// Assert
	if s.Lines != 2 {
		t.Errorf("Lines = %d, want 2", s.Lines)
	}
	if s.TotalQuantity != 6 {
		t.Errorf("TotalQuantity = %d, want 6", s.TotalQuantity)
	}
	if s.Subtotal != "22.00" {
		t.Errorf("Subtotal = %s, want 22.00", s.Subtotal)
	}
}

func TestNewCartView_EmptyRendersAsArray(t *testing.T) {
	view := NewCartView(nil)

	data, err := json.Marshal(view)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	if !strings.Contains(string(data), `"items":[]`) {
		t.Errorf("empty cart should render items as [], got %s", data)
	}
	if !strings.Contains(string(data), `"subtotal":"0.00"`) {
		t.Errorf("empty cart subtotal should be 0.00, got %s", data)
	}
	if strings.Contains(string(data), "notice") {
		t.Errorf("notice should be omitted when nil, got %s", data)
	}
}

// Package model defines data structures used throughout the application.
package model

import (
	"errors"
	"math"
)

// Validation errors for CartLineItem.
var (
	ErrInvalidProductID   = errors.New("product id must be positive")
	ErrEmptyTitle         = errors.New("title cannot be empty")
	ErrTitleTooLong       = errors.New("title cannot exceed 255 characters")
	ErrNegativePrice      = errors.New("price cannot be negative")
	ErrInvalidMaxQuantity = errors.New("max quantity must be at least 1")
	ErrQuantityTooLow     = errors.New("quantity must be at least 1")
	ErrQuantityTooHigh    = errors.New("quantity cannot exceed max quantity")
)

// MaxTitleLength is the longest title accepted for a line item or product.
const MaxTitleLength = 255

// CartLineItem is one product entry in the cart with its own quantity and bound.
type CartLineItem struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	HeroImage   string  `json:"hero_image,omitempty"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	MaxQuantity int     `json:"max_quantity"`
}

// Validate checks that the line item satisfies 1 <= Quantity <= MaxQuantity
// and carries a usable identity and price.
func (i *CartLineItem) Validate() error {
	if i.ID <= 0 {
		return ErrInvalidProductID
	}

	if i.Title == "" {
		return ErrEmptyTitle
	}

	if len(i.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}

	if i.Price < 0 || math.IsNaN(i.Price) {
		return ErrNegativePrice
	}

	if i.MaxQuantity < 1 {
		return ErrInvalidMaxQuantity
	}

	if i.Quantity < 1 {
		return ErrQuantityTooLow
	}

	if i.Quantity > i.MaxQuantity {
		return ErrQuantityTooHigh
	}

	return nil
}

// WithinBounds reports whether 1 <= Quantity <= MaxQuantity and the price
// is non-negative. ID and descriptive fields are not inspected.
func (i *CartLineItem) WithinBounds() bool {
	return i.MaxQuantity >= 1 &&
		i.Quantity >= 1 &&
		i.Quantity <= i.MaxQuantity &&
		i.Price >= 0
}

// AtMax reports whether the item cannot be incremented further.
func (i *CartLineItem) AtMax() bool {
	return i.Quantity >= i.MaxQuantity
}

// AtMin reports whether the item cannot be decremented further.
func (i *CartLineItem) AtMin() bool {
	return i.Quantity <= 1
}

// LineTotal returns Price * Quantity.
func (i *CartLineItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}

// CartSummary aggregates the cart contents.
type CartSummary struct {
	Lines         int    `json:"lines"`
	TotalQuantity int    `json:"total_quantity"`
	Subtotal      string `json:"subtotal"`
}

// Summarize computes line count, total quantity and subtotal for items.
func Summarize(items []CartLineItem) CartSummary {
	var (
		s        CartSummary
		subtotal float64
	)
	for i := range items {
		s.Lines++
		s.TotalQuantity += items[i].Quantity
		subtotal += items[i].LineTotal()
	}
	s.Subtotal = FormatPrice(subtotal)
	return s
}

// CartView is the cart as returned by the API.
type CartView struct {
	Items   []CartLineItem `json:"items"`
	Summary CartSummary    `json:"summary"`
	Notice  *Notice        `json:"notice,omitempty"`
}

// NewCartView builds a CartView for items. A nil slice is rendered as empty.
func NewCartView(items []CartLineItem) CartView {
	if items == nil {
		items = []CartLineItem{}
	}
	return CartView{
		Items:   items,
		Summary: Summarize(items),
	}
}

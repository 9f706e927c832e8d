package model

import (
	"errors"
	"strconv"
)

// Product validation errors.
var (
	ErrEmptySlug = errors.New("slug cannot be empty")
)

// Product is a catalog record addressed by slug.
type Product struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	HeroImage   string   `json:"hero_image,omitempty"`
	ImagesURL   []string `json:"images_url,omitempty"`
	Price       float64  `json:"price"`
	MaxQuantity int      `json:"max_quantity"`
}

// Validate checks if the Product has valid field values.
func (p *Product) Validate() error {
	if p.ID <= 0 {
		return ErrInvalidProductID
	}

	if p.Slug == "" {
		return ErrEmptySlug
	}

	if p.Title == "" {
		return ErrEmptyTitle
	}

	if len(p.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}

	if p.Price < 0 {
		return ErrNegativePrice
	}

	if p.MaxQuantity < 1 {
		return ErrInvalidMaxQuantity
	}

	return nil
}

// LineItem converts the product into a cart line item with the given quantity.
func (p *Product) LineItem(quantity int) CartLineItem {
	return CartLineItem{
		ID:          p.ID,
		Title:       p.Title,
		HeroImage:   p.HeroImage,
		Price:       p.Price,
		Quantity:    quantity,
		MaxQuantity: p.MaxQuantity,
	}
}

// ProductDetail is the product screen: the product plus quantity stepper state.
type ProductDetail struct {
	Product
	Quantity     int    `json:"quantity"`
	InCart       bool   `json:"in_cart"`
	CanIncrement bool   `json:"can_increment"`
	CanDecrement bool   `json:"can_decrement"`
	UnitPrice    string `json:"unit_price"`
	TotalPrice   string `json:"total_price"`
}

// NewProductDetail builds the detail view. The stepper starts at the cart
// quantity when the product is already in the cart, otherwise at 1.
func NewProductDetail(p Product, inCart *CartLineItem) ProductDetail {
	quantity := 1
	if inCart != nil {
		quantity = inCart.Quantity
	}

	return ProductDetail{
		Product:      p,
		Quantity:     quantity,
		InCart:       inCart != nil,
		CanIncrement: quantity < p.MaxQuantity,
		CanDecrement: quantity > 1,
		UnitPrice:    FormatPrice(p.Price),
		TotalPrice:   FormatPrice(p.Price * float64(quantity)),
	}
}

// FormatPrice renders an amount with two decimals.
func FormatPrice(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}

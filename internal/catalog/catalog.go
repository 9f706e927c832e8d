// Package catalog looks up product and order records by slug.
package catalog

import (
	"context"
	"errors"

	"github.com/vyrodovalexey/shopcart/internal/model"
)

// Catalog errors.
var (
	ErrNotFound    = errors.New("record not found")
	ErrInvalidSlug = errors.New("invalid slug")
	ErrDuplicate   = errors.New("duplicate record")
)

// Catalog defines read access to products and orders.
type Catalog interface {
	// ProductBySlug returns the product with the given slug.
	ProductBySlug(ctx context.Context, slug string) (*model.Product, error)

	// OrderBySlug returns the order with the given slug.
	OrderBySlug(ctx context.Context, slug string) (*model.Order, error)
}

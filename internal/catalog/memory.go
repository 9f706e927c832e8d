package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/vyrodovalexey/shopcart/internal/model"
)

// MemoryCatalog implements Catalog with in-memory storage.
type MemoryCatalog struct {
	mu       sync.RWMutex
	products map[string]model.Product
	orders   map[string]model.Order
}

// NewMemoryCatalog creates an empty MemoryCatalog.
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		products: make(map[string]model.Product),
		orders:   make(map[string]model.Order),
	}
}

// ProductBySlug returns the product with the given slug.
func (c *MemoryCatalog) ProductBySlug(ctx context.Context, slug string) (*model.Product, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("get product: %w", ctx.Err())
	default:
	}

	if slug == "" {
		return nil, ErrInvalidSlug
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	p, exists := c.products[slug]
	if !exists {
		return nil, ErrNotFound
	}

	return &p, nil
}

// OrderBySlug returns the order with the given slug.
func (c *MemoryCatalog) OrderBySlug(ctx context.Context, slug string) (*model.Order, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("get order: %w", ctx.Err())
	default:
	}

	if slug == "" {
		return nil, ErrInvalidSlug
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	o, exists := c.orders[slug]
	if !exists {
		return nil, ErrNotFound
	}

	return &o, nil
}

// PutProduct validates and stores p, replacing any product with the same slug.
func (c *MemoryCatalog) PutProduct(p model.Product) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("product %q: %w", p.Slug, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.products[p.Slug] = p

	return nil
}

// PutOrder validates and stores o, replacing any order with the same slug.
func (c *MemoryCatalog) PutOrder(o model.Order) error {
	if err := o.Validate(); err != nil {
		return fmt.Errorf("order %q: %w", o.Slug, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.orders[o.Slug] = o

	return nil
}

// Len returns the number of products and orders held.
func (c *MemoryCatalog) Len() (products, orders int) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.products), len(c.orders)
}

package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/vyrodovalexey/shopcart/internal/model"
)

// Seed is the on-disk catalog document.
type Seed struct {
	Products []model.Product `json:"products"`
	Orders   []model.Order   `json:"orders"`
}

// LoadFile reads a JSON seed document from path into a new MemoryCatalog.
func LoadFile(path string) (*MemoryCatalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	defer f.Close()

	c, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}

	return c, nil
}

// Load decodes a JSON seed document from r. Product IDs and slugs, and order
// slugs, must be unique.
func Load(r io.Reader) (*MemoryCatalog, error) {
	var seed Seed
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&seed); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	c := NewMemoryCatalog()

	ids := make(map[int64]struct{}, len(seed.Products))
	for _, p := range seed.Products {
		if _, dup := ids[p.ID]; dup {
			return nil, fmt.Errorf("%w: product id %d", ErrDuplicate, p.ID)
		}
		if _, dup := c.products[p.Slug]; dup {
			return nil, fmt.Errorf("%w: product slug %q", ErrDuplicate, p.Slug)
		}
		ids[p.ID] = struct{}{}

		if err := c.PutProduct(p); err != nil {
			return nil, err
		}
	}

	for _, o := range seed.Orders {
		if _, dup := c.orders[o.Slug]; dup {
			return nil, fmt.Errorf("%w: order slug %q", ErrDuplicate, o.Slug)
		}
		if err := c.PutOrder(o); err != nil {
			return nil, err
		}
	}

	return c, nil
}

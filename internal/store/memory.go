package store

import (
	"sync"
	"time"

	"github.com/vyrodovalexey/shopcart/internal/model"
)

// MemoryCart implements Cart with in-memory storage.
type MemoryCart struct {
	mu    sync.RWMutex
	items []model.CartLineItem

	// notifyMu keeps observer calls in mutation order.
	notifyMu  sync.Mutex
	obsMu     sync.RWMutex
	observers map[uint64]Observer
	nextObsID uint64
}

// NewMemoryCart creates an empty MemoryCart.
func NewMemoryCart() *MemoryCart {
	return &MemoryCart{
		items:     make([]model.CartLineItem, 0),
		observers: make(map[uint64]Observer),
	}
}

// AddItem appends item or, when an entry with the same ID exists, replaces
// that entry in place. Items outside their quantity bounds or with a
// negative price are ignored; ID and title are opaque to the cart.
func (c *MemoryCart) AddItem(item model.CartLineItem) {
	c.mutate(OpAdd, item.ID, func() bool {
		if !item.WithinBounds() {
			return false
		}

		if idx := c.indexOf(item.ID); idx >= 0 {
			if c.items[idx] == item {
				return false
			}
			c.items[idx] = item
			return true
		}

		c.items = append(c.items, item)
		return true
	})
}

// IncrementItem raises the quantity of id by one while it is below MaxQuantity.
func (c *MemoryCart) IncrementItem(id int64) bool {
	return c.mutate(OpIncrement, id, func() bool {
		idx := c.indexOf(id)
		if idx < 0 || c.items[idx].AtMax() {
			return false
		}
		c.items[idx].Quantity++
		return true
	})
}

// DecrementItem lowers the quantity of id by one while it is above 1.
// The item is never removed by decrementing.
func (c *MemoryCart) DecrementItem(id int64) bool {
	return c.mutate(OpDecrement, id, func() bool {
		idx := c.indexOf(id)
		if idx < 0 || c.items[idx].AtMin() {
			return false
		}
		c.items[idx].Quantity--
		return true
	})
}

// RemoveItem deletes id from the cart, keeping the order of the rest.
func (c *MemoryCart) RemoveItem(id int64) {
	c.mutate(OpRemove, id, func() bool {
		idx := c.indexOf(id)
		if idx < 0 {
			return false
		}
		c.items = append(c.items[:idx], c.items[idx+1:]...)
		return true
	})
}

// Clear empties the cart.
func (c *MemoryCart) Clear() {
	c.mutate(OpClear, 0, func() bool {
		if len(c.items) == 0 {
			return false
		}
		c.items = make([]model.CartLineItem, 0)
		return true
	})
}

// Restore replaces the cart contents with items, as loaded from a snapshot.
// Entries outside their bounds and repeated IDs (after the first) are dropped.
func (c *MemoryCart) Restore(items []model.CartLineItem) {
	c.mutate(OpRestore, 0, func() bool {
		restored := make([]model.CartLineItem, 0, len(items))
		seen := make(map[int64]struct{}, len(items))
		for _, it := range items {
			if !it.WithinBounds() {
				continue
			}
			if _, dup := seen[it.ID]; dup {
				continue
			}
			seen[it.ID] = struct{}{}
			restored = append(restored, it)
		}
		c.items = restored
		return true
	})
}

// Items returns a copy of the line items in insertion order.
func (c *MemoryCart) Items() []model.CartLineItem {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.snapshot()
}

// Item returns the line item for id.
func (c *MemoryCart) Item(id int64) (model.CartLineItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	idx := c.indexOf(id)
	if idx < 0 {
		return model.CartLineItem{}, false
	}
	return c.items[idx], true
}

// Subscribe registers obs and returns a func that removes it. The returned
// func is safe to call more than once.
func (c *MemoryCart) Subscribe(obs Observer) func() {
	c.obsMu.Lock()
	id := c.nextObsID
	c.nextObsID++
	c.observers[id] = obs
	c.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.obsMu.Lock()
			delete(c.observers, id)
			c.obsMu.Unlock()
		})
	}
}

// mutate runs fn under the write lock and then notifies observers with the
// resulting snapshot. fn reports whether the cart changed; mutate returns it.
func (c *MemoryCart) mutate(op Operation, id int64, fn func() bool) bool {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	changed := fn()
	ev := Event{
		Operation: op,
		ItemID:    id,
		Changed:   changed,
		Items:     c.snapshot(),
		Timestamp: time.Now().UTC(),
	}
	c.mu.Unlock()

	c.notify(ev)
	return changed
}

func (c *MemoryCart) notify(ev Event) {
	c.obsMu.RLock()
	observers := make([]Observer, 0, len(c.observers))
	for _, obs := range c.observers {
		observers = append(observers, obs)
	}
	c.obsMu.RUnlock()

	for _, obs := range observers {
		obs(ev)
	}
}

// indexOf returns the position of id or -1. Callers hold mu.
func (c *MemoryCart) indexOf(id int64) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}

// snapshot copies items. Callers hold mu.
func (c *MemoryCart) snapshot() []model.CartLineItem {
	out := make([]model.CartLineItem, len(c.items))
	copy(out, c.items)
	return out
}

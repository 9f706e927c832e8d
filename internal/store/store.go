// Package store provides the cart store and the observers that persist it.
package store

import (
	"time"

	"github.com/vyrodovalexey/shopcart/internal/model"
)

// Operation names a cart mutation.
type Operation string

// Cart operations.
const (
	OpAdd       Operation = "add"
	OpIncrement Operation = "increment"
	OpDecrement Operation = "decrement"
	OpRemove    Operation = "remove"
	OpClear     Operation = "clear"
	OpRestore   Operation = "restore"
)

// Event describes a completed cart operation. Changed is false for
// operations that hit a boundary or referenced a missing item.
type Event struct {
	Operation Operation
	ItemID    int64
	Changed   bool
	Items     []model.CartLineItem
	Timestamp time.Time
}

// Observer is notified synchronously after every cart operation.
// Observers must not call mutating Cart methods.
type Observer func(Event)

// Cart defines the cart store operations. Boundary conditions (quantity at
// max or at 1, unknown id, invalid item) are no-ops, never errors.
type Cart interface {
	// AddItem appends item, or replaces the existing entry with the same ID in place.
	AddItem(item model.CartLineItem)

	// IncrementItem raises the quantity of id by one while below its max and
	// reports whether it did.
	IncrementItem(id int64) bool

	// DecrementItem lowers the quantity of id by one while above 1 and
	// reports whether it did.
	DecrementItem(id int64) bool

	// RemoveItem deletes id from the cart.
	RemoveItem(id int64)

	// Clear empties the cart.
	Clear()

	// Items returns a copy of the line items in insertion order.
	Items() []model.CartLineItem

	// Item returns the line item for id.
	Item(id int64) (model.CartLineItem, bool)

	// Subscribe registers an observer and returns a func that removes it.
	Subscribe(obs Observer) (unsubscribe func())
}

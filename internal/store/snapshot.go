package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vyrodovalexey/shopcart/internal/model"
)

// DefaultSnapshotTimeout bounds each snapshot save or delete.
const DefaultSnapshotTimeout = 2 * time.Second

// Snapshotter saves and loads the full cart contents.
type Snapshotter interface {
	// Load returns the saved items, or an empty slice when nothing is saved.
	Load(ctx context.Context) ([]model.CartLineItem, error)

	// Save replaces the saved items.
	Save(ctx context.Context, items []model.CartLineItem) error

	// Delete removes the saved items.
	Delete(ctx context.Context) error
}

// RestoreFrom loads the snapshot and restores it into cart.
func RestoreFrom(ctx context.Context, cart *MemoryCart, snap Snapshotter) (int, error) {
	items, err := snap.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("restore cart: %w", err)
	}

	cart.Restore(items)

	return len(cart.Items()), nil
}

// PersistOnChange subscribes to cart and writes a snapshot after every event
// that changed the cart. Failures are logged and never reach the cart.
//
// The write runs synchronously on the cart's notification path, so every
// changing mutation waits for it, bounded by timeout. Keep timeout short when
// the snapshot store is remote.
func PersistOnChange(
	cart Cart,
	snap Snapshotter,
	logger *zap.Logger,
	timeout time.Duration,
) (unsubscribe func()) {
	if timeout <= 0 {
		timeout = DefaultSnapshotTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return cart.Subscribe(func(ev Event) {
		if !ev.Changed {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var err error
		if len(ev.Items) == 0 {
			err = snap.Delete(ctx)
		} else {
			err = snap.Save(ctx, ev.Items)
		}

		if err != nil {
			logger.Error("failed to persist cart snapshot",
				zap.String("operation", string(ev.Operation)),
				zap.Int64("item_id", ev.ItemID),
				zap.Error(err),
			)
		}
	})
}

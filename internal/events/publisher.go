// Package events publishes cart changes to a message broker.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/shopcart/internal/model"
	"github.com/vyrodovalexey/shopcart/internal/store"
)

// DefaultSubject is the NATS subject used when none is configured.
const DefaultSubject = "cart.events"

const connectTimeout = 5 * time.Second

// ErrNilConn is returned when a publisher is built without a connection.
var ErrNilConn = errors.New("nats connection cannot be nil")

// Publisher publishes a message to a subject.
type Publisher interface {
	Publish(ctx context.Context, subject string, message any) error
}

// CartEvent is the broker payload for a cart change.
type CartEvent struct {
	Operation string               `json:"operation"`
	ItemID    int64                `json:"item_id,omitempty"`
	Items     []model.CartLineItem `json:"items"`
	Summary   model.CartSummary    `json:"summary"`
	Timestamp time.Time            `json:"timestamp"`
}

// NewCartEvent converts a store event into its broker payload.
func NewCartEvent(ev store.Event) CartEvent {
	items := ev.Items
	if items == nil {
		items = []model.CartLineItem{}
	}
	return CartEvent{
		Operation: string(ev.Operation),
		ItemID:    ev.ItemID,
		Items:     items,
		Summary:   model.Summarize(items),
		Timestamp: ev.Timestamp,
	}
}

// NATSPublisher publishes JSON messages over a NATS connection.
type NATSPublisher struct {
	conn *nats.Conn
}

// Connect dials the NATS server at url.
func Connect(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name("shopcart"),
		nats.Timeout(connectTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats %s: %w", url, err)
	}
	return conn, nil
}

// NewNATSPublisher creates a NATSPublisher over conn.
func NewNATSPublisher(conn *nats.Conn) (*NATSPublisher, error) {
	if conn == nil {
		return nil, ErrNilConn
	}
	return &NATSPublisher{conn: conn}, nil
}

// Publish marshals message as JSON and publishes it to subject.
func (p *NATSPublisher) Publish(ctx context.Context, subject string, message any) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("publish to %s: %w", subject, ctx.Err())
	default:
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal message for subject %s: %w", subject, err)
	}

	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}

	return nil
}

// Forward subscribes to cart and publishes every changing event to subject.
// Publish failures are logged.
func Forward(cart store.Cart, pub Publisher, subject string, logger *zap.Logger) (unsubscribe func()) {
	if subject == "" {
		subject = DefaultSubject
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return cart.Subscribe(func(ev store.Event) {
		if !ev.Changed {
			return
		}

		if err := pub.Publish(context.Background(), subject, NewCartEvent(ev)); err != nil {
			logger.Warn("failed to publish cart event",
				zap.String("subject", subject),
				zap.String("operation", string(ev.Operation)),
				zap.Error(err),
			)
		}
	})
}

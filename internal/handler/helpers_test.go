package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/shopcart/internal/catalog"
	"github.com/vyrodovalexey/shopcart/internal/model"
	"github.com/vyrodovalexey/shopcart/internal/store"
)

var (
	headphones = model.Product{
		ID:          1,
		Title:       "Wireless Headphones",
		Slug:        "wireless-headphones",
		HeroImage:   "https://cdn.example.com/headphones.png",
		Price:       349.9,
		MaxQuantity: 5,
	}
	cable = model.Product{
		ID:          3,
		Title:       "USB-C Cable",
		Slug:        "usb-c-cable",
		Price:       29.5,
		MaxQuantity: 10,
	}
	shippedOrder = model.Order{
		ID:        100,
		Slug:      "order-100",
		Details:   "Leave at the door",
		Status:    model.OrderStatusShipped,
		CreatedAt: time.Date(2024, time.March, 7, 10, 0, 0, 0, time.UTC),
		Items: []model.OrderItem{
			{ID: 1, Quantity: 2, Product: model.OrderProduct{Title: "Wireless Headphones", Price: 349.9}},
		},
	}
)

// fixture wires both handlers to an in-memory catalog and cart.
type fixture struct {
	catalog *catalog.MemoryCatalog
	cart    *store.MemoryCart
	router  *mux.Router
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cat := catalog.NewMemoryCatalog()
	for _, p := range []model.Product{headphones, cable} {
		if err := cat.PutProduct(p); err != nil {
			t.Fatalf("PutProduct(%s) error = %v", p.Slug, err)
		}
	}
	if err := cat.PutOrder(shippedOrder); err != nil {
		t.Fatalf("PutOrder() error = %v", err)
	}

	cart := store.NewMemoryCart()
	logger := zap.NewNop()

	router := mux.NewRouter()
	rest := NewRESTHandler(cat, cart, logger)
	rest.RegisterRoutes(router)
	NewCartHandler(cat, cart, logger).RegisterRoutes(router)
	router.NotFoundHandler = http.HandlerFunc(rest.NotFound)

	return &fixture{catalog: cat, cart: cart, router: router}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, r)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

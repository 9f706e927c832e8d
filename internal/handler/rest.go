package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/shopcart/internal/catalog"
	"github.com/vyrodovalexey/shopcart/internal/model"
	"github.com/vyrodovalexey/shopcart/internal/store"
)

// HomePath is where the not-found screen sends the user.
const HomePath = "/"

// RESTHandler serves the probe endpoints and the product and order screens.
type RESTHandler struct {
	responder
	catalog catalog.Catalog
	cart    store.Cart
}

// NewRESTHandler creates a new RESTHandler instance.
func NewRESTHandler(cat catalog.Catalog, cart store.Cart, logger *zap.Logger) *RESTHandler {
	return &RESTHandler{
		responder: responder{logger: logger},
		catalog:   cat,
		cart:      cart,
	}
}

// RegisterRoutes registers the screen routes with the router.
func (h *RESTHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	router.HandleFunc("/ready", h.ReadyCheck).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/products/{slug}", h.GetProduct).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/orders/{slug}", h.GetOrder).Methods(http.MethodGet)
}

// HealthCheck handles GET /health requests.
func (h *RESTHandler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(HealthResponse{
		Status:  "healthy",
		Version: Version,
	}))
}

// ReadyCheck handles GET /ready requests.
func (h *RESTHandler) ReadyCheck(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(ReadyResponse{Status: "ready"}))
}

// GetProduct handles GET /api/v1/products/{slug}. The quantity stepper
// reflects the cart when the product is already in it.
func (h *RESTHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	p, err := h.catalog.ProductBySlug(r.Context(), slug)
	if err != nil {
		h.handleCatalogError(w, err, "product")
		return
	}

	var inCart *model.CartLineItem
	if item, ok := h.cart.Item(p.ID); ok {
		inCart = &item
	}

	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(model.NewProductDetail(*p, inCart)))
}

// GetOrder handles GET /api/v1/orders/{slug}.
func (h *RESTHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	o, err := h.catalog.OrderBySlug(r.Context(), slug)
	if err != nil {
		h.handleCatalogError(w, err, "order")
		return
	}

	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(model.NewOrderDetail(*o)))
}

// NotFound is the fallback for unknown routes.
func (h *RESTHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("unknown screen requested",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)

	h.writeJSON(w, http.StatusNotFound, model.ErrorResponse{
		Code:    http.StatusNotFound,
		Message: model.MsgScreenNotExists,
		Details: HomePath,
	})
}

// handleCatalogError maps catalog errors to HTTP responses. kind names the
// record type in the message.
func (h responder) handleCatalogError(w http.ResponseWriter, err error, kind string) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		h.writeError(w, http.StatusNotFound, kind+" not found")
	case errors.Is(err, catalog.ErrInvalidSlug):
		h.writeError(w, http.StatusBadRequest, "invalid "+kind+" slug")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.logger.Warn("catalog lookup aborted", zap.String("kind", kind), zap.Error(err))
		h.writeError(w, http.StatusServiceUnavailable, "request canceled")
	default:
		h.logger.Error("catalog lookup failed", zap.String("kind", kind), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

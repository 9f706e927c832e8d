package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/shopcart/internal/auth"
	"github.com/vyrodovalexey/shopcart/internal/catalog"
	"github.com/vyrodovalexey/shopcart/internal/middleware"
	"github.com/vyrodovalexey/shopcart/internal/model"
	"github.com/vyrodovalexey/shopcart/internal/store"
)

// AddToCartRequest is the body of POST /api/v1/cart/items.
type AddToCartRequest struct {
	Slug     string `json:"slug"`
	Quantity int    `json:"quantity"`
}

// CartHandler serves the cart endpoints.
type CartHandler struct {
	responder
	catalog catalog.Catalog
	cart    store.Cart
}

// NewCartHandler creates a new CartHandler instance.
func NewCartHandler(cat catalog.Catalog, cart store.Cart, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		responder: responder{logger: logger},
		catalog:   cat,
		cart:      cart,
	}
}

// RegisterRoutes registers the cart routes with the router.
func (h *CartHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/cart", h.GetCart).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/cart", h.ClearCart).Methods(http.MethodDelete)
	router.HandleFunc("/api/v1/cart/items", h.AddItem).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/cart/items/{id}", h.RemoveItem).Methods(http.MethodDelete)
	router.HandleFunc("/api/v1/cart/items/{id}/increment", h.IncrementItem).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/cart/items/{id}/decrement", h.DecrementItem).Methods(http.MethodPost)
}

// GetCart handles GET /api/v1/cart requests.
func (h *CartHandler) GetCart(w http.ResponseWriter, _ *http.Request) {
	h.writeCart(w, nil)
}

// AddItem handles POST /api/v1/cart/items. The product is resolved from the
// catalog so price and bound always come from the catalog record.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Slug = strings.TrimSpace(req.Slug)
	if req.Slug == "" {
		h.writeError(w, http.StatusBadRequest, model.ErrEmptySlug.Error())
		return
	}

	p, err := h.catalog.ProductBySlug(r.Context(), req.Slug)
	if err != nil {
		h.handleCatalogError(w, err, "product")
		return
	}

	item := p.LineItem(req.Quantity)
	if err := item.Validate(); err != nil {
		h.logger.Warn("validation failed", zap.String("slug", req.Slug), zap.Error(err))
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.cart.AddItem(item)

	h.logger.Info("cart item added",
		zap.Int64("item_id", item.ID),
		zap.Int("quantity", item.Quantity),
		zap.String("subject", auth.SubjectFromContext(r.Context())),
		zap.String("request_id", middleware.RequestIDFromContext(r.Context())),
	)

	h.writeCart(w, model.NewNotice(model.NoticeSuccess, model.MsgAddedToCart))
}

// IncrementItem handles POST /api/v1/cart/items/{id}/increment. When the
// cart reports no change the item was at its maximum and a warning notice is
// returned.
func (h *CartHandler) IncrementItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.lookupItem(w, r)
	if !ok {
		return
	}

	var notice *model.Notice
	if !h.cart.IncrementItem(id) {
		if _, found := h.cart.Item(id); !found {
			h.writeError(w, http.StatusNotFound, "item not in cart")
			return
		}
		notice = model.NewNotice(model.NoticeWarning, model.MsgMaxQuantity)
	}
	h.writeCart(w, notice)
}

// DecrementItem handles POST /api/v1/cart/items/{id}/decrement. When the
// cart reports no change the item was at 1 and a warning notice is returned.
func (h *CartHandler) DecrementItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.lookupItem(w, r)
	if !ok {
		return
	}

	var notice *model.Notice
	if !h.cart.DecrementItem(id) {
		if _, found := h.cart.Item(id); !found {
			h.writeError(w, http.StatusNotFound, "item not in cart")
			return
		}
		notice = model.NewNotice(model.NoticeWarning, model.MsgMinQuantity)
	}
	h.writeCart(w, notice)
}

// RemoveItem handles DELETE /api/v1/cart/items/{id} requests.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.lookupItem(w, r)
	if !ok {
		return
	}

	h.cart.RemoveItem(id)

	h.logger.Info("cart item removed",
		zap.Int64("item_id", id),
		zap.String("subject", auth.SubjectFromContext(r.Context())),
	)

	h.writeCart(w, nil)
}

// ClearCart handles DELETE /api/v1/cart requests.
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.cart.Clear()

	h.logger.Info("cart cleared", zap.String("subject", auth.SubjectFromContext(r.Context())))

	h.writeCart(w, nil)
}

// lookupItem parses the {id} path variable and checks the item is in the
// cart, writing a 400 or 404 when that fails.
func (h *CartHandler) lookupItem(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, http.StatusBadRequest, "invalid item ID")
		return 0, false
	}

	if _, found := h.cart.Item(id); !found {
		h.writeError(w, http.StatusNotFound, "item not in cart")
		return 0, false
	}

	return id, true
}

// writeCart writes the current cart with an optional notice.
func (h *CartHandler) writeCart(w http.ResponseWriter, notice *model.Notice) {
	view := model.NewCartView(h.cart.Items())
	view.Notice = notice
	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(view))
}

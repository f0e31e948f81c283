package rest

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/abgdnv/storefront/internal/cart"
	"github.com/abgdnv/storefront/internal/checkout"
	perrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/abgdnv/storefront/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SessionHeader carries the cart session. A request without a valid one gets a new session in the response.
const SessionHeader = "X-Cart-Session"

type CartHandler struct {
	sessions *cart.Sessions
	cache    *catalog.Cache
	checkout *checkout.Service
	validate *validator.Validate
	logger   *slog.Logger
}

func NewCartHandler(sessions *cart.Sessions, cache *catalog.Cache, checkout *checkout.Service, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		sessions: sessions,
		cache:    cache,
		checkout: checkout,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

type AddItemRequest struct {
	ProductID string   `json:"productId" validate:"required,uuid"`
	Quantity  Quantity `json:"quantity" validate:"max=9999"`
}

type UpdateItemRequest struct {
	Quantity Quantity `json:"quantity" validate:"max=9999"`
}

// Quantity accepts a JSON integer or a string holding one. Any other value reads as 1.
// Values outside the int range saturate, so the max rule still rejects them.
type Quantity int

func (q *Quantity) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if raw == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = unquoted
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		n = 1
	}
	*q = Quantity(n)
	return nil
}

type CartLineResponse struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	ImageURL  string `json:"imageUrl"`
	Quantity  int    `json:"quantity"`
	Subtotal  string `json:"subtotal"`
}

type CartResponse struct {
	Lines     []CartLineResponse `json:"lines"`
	Total     string             `json:"total"`
	ItemCount int                `json:"itemCount"`
}

func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Delete("/", h.Clear)
		r.Post("/items", h.AddItem)
		r.Put("/items/{productId}", h.UpdateItem)
		r.Delete("/items/{productId}", h.RemoveItem)
		r.Post("/checkout", h.Checkout)
	})
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	session := h.session(w, r)
	web.RespondJSON(w, mLogger, http.StatusOK, toCartResponse(h.sessions.View(r.Context(), session)))
}

// AddItem snapshots the catalog product into the cart.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	session := h.session(w, r)
	var req AddItemRequest
	if !web.DecodeJSON(w, r, mLogger, h.validate, &req) {
		return
	}
	p, found := h.cache.Snapshot().Filter().Find(req.ProductID)
	if !found {
		mLogger.WarnContext(r.Context(), "Product not found for cart", "ID", req.ProductID)
		web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", req.ProductID))
		return
	}
	mLogger.DebugContext(r.Context(), "Adding to cart", "session", session, "ID", p.ID, "quantity", req.Quantity)
	h.mutate(w, r, mLogger, session, func(st *cart.Store) error {
		return st.AddToCart(r.Context(), p, int(req.Quantity))
	})
}

// UpdateItem sets the quantity of a line. Quantities below 1 are stored as 1.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	session := h.session(w, r)
	id, ok := web.ParseID(w, r, mLogger, "productId")
	if !ok {
		return
	}
	var req UpdateItemRequest
	if !web.DecodeJSON(w, r, mLogger, h.validate, &req) {
		return
	}
	h.mutate(w, r, mLogger, session, func(st *cart.Store) error {
		return st.UpdateQuantity(r.Context(), id, int(req.Quantity))
	})
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	session := h.session(w, r)
	id, ok := web.ParseID(w, r, mLogger, "productId")
	if !ok {
		return
	}
	h.mutate(w, r, mLogger, session, func(st *cart.Store) error {
		return st.RemoveFromCart(r.Context(), id)
	})
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	session := h.session(w, r)
	h.mutate(w, r, mLogger, session, func(st *cart.Store) error {
		return st.ClearCart(r.Context())
	})
}

func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	session := h.session(w, r)
	receipt, err := h.checkout.Checkout(r.Context(), session)
	if err != nil {
		if errors.Is(err, perrors.ErrEmptyCart) {
			web.RespondError(w, mLogger, http.StatusBadRequest, "Cart is empty")
			return
		}
		mLogger.ErrorContext(r.Context(), "Checkout failed", "session", session, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to complete checkout")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusCreated, receipt)
}

// mutate runs fn on the session cart and answers with the resulting cart.
func (h *CartHandler) mutate(w http.ResponseWriter, r *http.Request, logger *slog.Logger, session string, fn func(*cart.Store) error) {
	var result cart.Cart
	err := h.sessions.With(r.Context(), session, func(st *cart.Store) error {
		err := fn(st)
		result = st.Cart()
		return err
	})
	if err != nil {
		if errors.Is(err, perrors.ErrInvalidProduct) {
			web.RespondError(w, logger, http.StatusBadRequest, "Invalid product")
			return
		}
		logger.ErrorContext(r.Context(), "Failed to save cart", "session", session, "error", err)
		web.RespondError(w, logger, http.StatusServiceUnavailable, "Failed to save cart")
		return
	}
	web.RespondJSON(w, logger, http.StatusOK, toCartResponse(result))
}

// session returns the caller's cart session, issuing a new one when absent or malformed.
func (h *CartHandler) session(w http.ResponseWriter, r *http.Request) string {
	session := r.Header.Get(SessionHeader)
	if _, err := uuid.Parse(session); err != nil {
		session = uuid.NewString()
	}
	w.Header().Set(SessionHeader, session)
	return session
}

func toCartResponse(c cart.Cart) CartResponse {
	lines := make([]CartLineResponse, len(c.Lines))
	for i, l := range c.Lines {
		lines[i] = CartLineResponse{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     money(l.Price),
			ImageURL:  l.ImageURL,
			Quantity:  l.Quantity,
			Subtotal:  money(l.Subtotal()),
		}
	}
	return CartResponse{Lines: lines, Total: money(c.Total()), ItemCount: c.ItemCount()}
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

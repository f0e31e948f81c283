// Package rest provides the HTTP handlers of the storefront API.
package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/abgdnv/storefront/internal/catalog"
	perrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/product"
	"github.com/abgdnv/storefront/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// ProductReader fetches a single product from the data source.
type ProductReader interface {
	GetByID(ctx context.Context, id string) (*product.Product, error)
}

// ProductHandler serves the shopper-facing catalog.
type ProductHandler struct {
	cache  *catalog.Cache
	slider *catalog.Slider
	reader ProductReader
	logger *slog.Logger
}

func NewProductHandler(cache *catalog.Cache, slider *catalog.Slider, reader ProductReader, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		cache:  cache,
		slider: slider,
		reader: reader,
		logger: logger.With("component", "rest"),
	}
}

// FeaturedPage is one state of the featured showcase.
type FeaturedPage struct {
	Products     []product.Product `json:"products"`
	DisplayCount int               `json:"displayCount"`
	HasMore      bool              `json:"hasMore"`
	Total        int               `json:"total"`
}

// RegisterRoutes registers the catalog routes on r.
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/categories", h.Categories)
		r.Get("/featured", h.Featured)
		r.Get("/showcase", h.Showcase)
		r.Get("/{id}", h.FindByID)
	})
}

// List returns the catalog narrowed by the category, minPrice and maxPrice query parameters.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	q := r.URL.Query()
	criteria := catalog.ParseCriteria(q.Get("category"), q.Get("minPrice"), q.Get("maxPrice"))

	filtered := h.cache.Snapshot().Filter().WithCriteria(criteria).Filtered()
	mLogger.DebugContext(r.Context(), "Listing products", "category", criteria.Category, "count", len(filtered))
	web.RespondJSON(w, mLogger, http.StatusOK, filtered)
}

func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	web.RespondJSON(w, mLogger, http.StatusOK, h.cache.Snapshot().Filter().Categories())
}

// Featured returns the featured showcase at displayCount, one step further when more=true.
func (h *ProductHandler) Featured(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	displayCount, ok := web.ParseOptionalGte(r, w, mLogger, "displayCount", 0, catalog.InitialDisplayCount)
	if !ok {
		return
	}
	more := false
	if raw := r.URL.Query().Get("more"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			web.RespondError(w, mLogger, http.StatusBadRequest, fmt.Sprintf("Invalid more flag: %s", raw))
			return
		}
		more = parsed
	}

	showcase := catalog.RestoreShowcase(h.cache.Snapshot().Featured(), displayCount)
	if more {
		showcase.ShowMore()
	}
	web.RespondJSON(w, mLogger, http.StatusOK, FeaturedPage{
		Products:     showcase.Visible(),
		DisplayCount: showcase.DisplayCount(),
		HasMore:      showcase.HasMore(),
		Total:        showcase.Total(),
	})
}

// Showcase returns the slider group currently on display.
func (h *ProductHandler) Showcase(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	web.RespondJSON(w, mLogger, http.StatusOK, h.slider.Current())
}

func (h *ProductHandler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	id, ok := web.ParseID(w, r, mLogger, "id")
	if !ok {
		return
	}
	found, err := h.reader.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, perrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve product with ID %s", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// loggerWithReqID creates a logger with the request ID from the context.
func loggerWithReqID(logger *slog.Logger, r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return logger.With("request_id", reqID)
}

package rest

import (
	"log/slog"
	"net/http"

	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/abgdnv/storefront/pkg/web"
	"github.com/go-chi/chi/v5"
)

type HealthHandler struct {
	cache  *catalog.Cache
	logger *slog.Logger
}

func NewHealthHandler(cache *catalog.Cache, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{cache: cache, logger: logger}
}

func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Live)
	r.Get("/readyz", h.Ready)
}

// Live is a simple health check endpoint.
func (h *HealthHandler) Live(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Ready answers 503 until the catalog has been loaded once.
func (h *HealthHandler) Ready(w http.ResponseWriter, _ *http.Request) {
	if !h.cache.Loaded() {
		web.RespondError(w, h.logger, http.StatusServiceUnavailable, "Catalog not loaded")
		return
	}
	w.WriteHeader(http.StatusOK)
}

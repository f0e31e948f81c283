package rest

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/storefront/internal/admin"
	perrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/pkg/auth"
	"github.com/abgdnv/storefront/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// AdminHandler serves the catalog maintenance API. Every route requires an admin token.
type AdminHandler struct {
	service        admin.ProductService
	verifier       auth.Verifier
	adminMarker    string
	maxUploadBytes int64
	validate       *validator.Validate
	logger         *slog.Logger
}

func NewAdminHandler(service admin.ProductService, verifier auth.Verifier, adminMarker string, maxUploadBytes int64, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		service:        service,
		verifier:       verifier,
		adminMarker:    adminMarker,
		maxUploadBytes: maxUploadBytes,
		validate:       validator.New(),
		logger:         logger.With("component", "rest"),
	}
}

func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.AdminOnly(h.verifier, h.adminMarker, h.logger))
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.List)
			r.Post("/", h.Create)
			r.Post("/seed", h.Seed)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
		r.Post("/images", h.UploadImage)
	})
}

func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	list, err := h.service.List(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	var in admin.ProductInput
	if !web.DecodeJSON(w, r, mLogger, h.validate, &in) {
		return
	}
	created, err := h.service.Create(r.Context(), in)
	if err != nil {
		if h.respondInputError(w, r, mLogger, err) {
			return
		}
		mLogger.ErrorContext(r.Context(), "Error creating product", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to create product")
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", "ID", created.ID, "Name", created.Name)
	web.RespondJSON(w, mLogger, http.StatusCreated, created)
}

func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	id, ok := web.ParseID(w, r, mLogger, "id")
	if !ok {
		return
	}
	var in admin.ProductInput
	if !web.DecodeJSON(w, r, mLogger, h.validate, &in) {
		return
	}
	updated, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		if h.respondInputError(w, r, mLogger, err) {
			return
		}
		if errors.Is(err, perrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found for update", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error updating product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to update product with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID, "Name", updated.Name)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	id, ok := web.ParseID(w, r, mLogger, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, perrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found for deletion", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error deleting product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to delete product with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) Seed(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	created, err := h.service.Seed(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error seeding products", "created", len(created), "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to seed products")
		return
	}
	mLogger.InfoContext(r.Context(), "Sample products added", "count", len(created))
	web.RespondJSON(w, mLogger, http.StatusCreated, created)
}

// UploadImage accepts a multipart form with a "file" part and returns the hosted URL.
func (h *AdminHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	mLogger := loggerWithReqID(h.logger, r)
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			web.RespondError(w, mLogger, http.StatusRequestEntityTooLarge, "Image is too large")
			return
		}
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		web.RespondError(w, mLogger, http.StatusBadRequest, "Missing file")
		return
	}
	defer func() { _ = file.Close() }()

	url, err := h.service.UploadImage(r.Context(), header.Filename, file)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error uploading image", "filename", header.Filename, "error", err)
		web.RespondError(w, mLogger, http.StatusBadGateway, "Failed to upload image")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusCreated, map[string]string{"url": url})
}

// respondInputError answers 400 for rejected admin input and reports whether it did.
func (h *AdminHandler) respondInputError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) bool {
	if errors.Is(err, perrors.ErrInvalidProduct) || errors.Is(err, perrors.ErrImageRequired) {
		logger.WarnContext(r.Context(), "Rejected product input", "error", err)
		web.RespondError(w, logger, http.StatusBadRequest, err.Error())
		return true
	}
	return false
}

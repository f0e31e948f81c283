// Package admin implements the catalog maintenance operations of the admin panel.
package admin

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	perrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/product"
	"github.com/abgdnv/storefront/internal/store"
	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/abgdnv/storefront/pkg/messaging/events"
	"github.com/shopspring/decimal"
)

// ProductService defines the admin operations on products.
// Every successful mutation publishes a ProductsChanged event and reloads the catalog.
type ProductService interface {
	// List returns every product in creation order.
	List(ctx context.Context) ([]product.Product, error)

	// Create validates and stores a new product. An image is required.
	// Returns ErrInvalidProduct or ErrImageRequired on invalid input.
	Create(ctx context.Context, in ProductInput) (*product.Product, error)

	// Update replaces the editable fields of a product. An empty image keeps the current one.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id string, in ProductInput) (*product.Product, error)

	// Delete removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Delete(ctx context.Context, id string) error

	// Seed inserts the sample catalog.
	Seed(ctx context.Context) ([]product.Product, error)

	// UploadImage stores an image with the hosting provider and returns its URL.
	// Returns ErrUploadFailed when the provider fails.
	UploadImage(ctx context.Context, filename string, r io.Reader) (string, error)
}

// Uploader stores product images.
type Uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

// Reloader refreshes the catalog served to shoppers.
type Reloader interface {
	Reload(ctx context.Context) error
}

// ProductInput is the admin form for creating and editing a product.
type ProductInput struct {
	Name        string          `json:"name"        validate:"required,max=200"`
	Description string          `json:"description" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"    validate:"required,max=100"`
	ImageURL    string          `json:"imageUrl"    validate:"omitempty,url"`
	Featured    bool            `json:"featured"`
}

// Service implements ProductService.
type Service struct {
	store     store.ProductStore
	uploader  Uploader
	reloader  Reloader
	publisher messaging.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a new instance of ProductService.
func NewService(s store.ProductStore, uploader Uploader, reloader Reloader, publisher messaging.Publisher, logger *slog.Logger) *Service {
	return &Service{
		store:     s,
		uploader:  uploader,
		reloader:  reloader,
		publisher: publisher,
		logger:    logger.With("component", "admin"),
		now:       time.Now,
	}
}

func (s *Service) List(ctx context.Context) ([]product.Product, error) {
	list, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return list, nil
}

func (s *Service) Create(ctx context.Context, in ProductInput) (*product.Product, error) {
	in = normalize(in)
	if err := validate(in); err != nil {
		return nil, err
	}
	if in.ImageURL == "" {
		return nil, perrors.ErrImageRequired
	}
	created, err := s.store.Create(ctx, product.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price.Round(2),
		Category:    in.Category,
		ImageURL:    in.ImageURL,
		Featured:    in.Featured,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	s.changed(ctx, events.ActionCreated, created.ID)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id string, in ProductInput) (*product.Product, error) {
	in = normalize(in)
	if err := validate(in); err != nil {
		return nil, err
	}
	price := in.Price.Round(2)
	patch := product.Patch{
		Name:        &in.Name,
		Description: &in.Description,
		Price:       &price,
		Category:    &in.Category,
		Featured:    &in.Featured,
	}
	if in.ImageURL != "" {
		patch.ImageURL = &in.ImageURL
	}
	updated, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %s: %w", id, err)
	}
	s.changed(ctx, events.ActionUpdated, id)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product with ID %s: %w", id, err)
	}
	s.changed(ctx, events.ActionDeleted, id)
	return nil
}

func (s *Service) Seed(ctx context.Context) ([]product.Product, error) {
	samples := SampleProducts()
	created := make([]product.Product, 0, len(samples))
	for _, p := range samples {
		c, err := s.store.Create(ctx, p)
		if err != nil {
			if len(created) > 0 {
				s.changed(ctx, events.ActionSeeded, "")
			}
			return created, fmt.Errorf("failed to seed %q: %w", p.Name, err)
		}
		created = append(created, *c)
	}
	s.changed(ctx, events.ActionSeeded, "")
	return created, nil
}

func (s *Service) UploadImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	return s.uploader.Upload(ctx, filename, r)
}

// changed notifies other instances and refreshes the local catalog. Failures are logged only,
// the store write already succeeded.
func (s *Service) changed(ctx context.Context, action, id string) {
	event := events.ProductsChangedEvent{Action: action, ProductID: id, ChangedAt: s.now().UTC()}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish products changed event", "action", action, "ID", id, "error", err)
	}
	if err := s.reloader.Reload(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Failed to reload catalog after change", "action", action, "ID", id, "error", err)
	}
}

func normalize(in ProductInput) ProductInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	return in
}

// validate enforces the rules the struct tags cannot express.
func validate(in ProductInput) error {
	switch {
	case in.Name == "":
		return fmt.Errorf("%w: name is required", perrors.ErrInvalidProduct)
	case in.Description == "":
		return fmt.Errorf("%w: description is required", perrors.ErrInvalidProduct)
	case in.Category == "":
		return fmt.Errorf("%w: category is required", perrors.ErrInvalidProduct)
	case !in.Price.IsPositive():
		return fmt.Errorf("%w: price must be greater than zero", perrors.ErrInvalidProduct)
	}
	return nil
}

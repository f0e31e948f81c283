// Package store persists catalog products.
package store

import (
	"context"

	"github.com/abgdnv/storefront/internal/product"
)

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
// Listings are returned in creation order.
type ProductStore interface {
	// ListAll returns every product. Returns an empty slice if no products exist.
	ListAll(ctx context.Context) ([]product.Product, error)

	// ListFeatured returns the products flagged as featured.
	ListFeatured(ctx context.Context) ([]product.Product, error)

	// GetByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	GetByID(ctx context.Context, id string) (*product.Product, error)

	// Create stores p under a freshly generated ID and stamps both timestamps.
	Create(ctx context.Context, p product.Product) (*product.Product, error)

	// Update applies patch to the product and stamps UpdatedAt.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id string, patch product.Patch) (*product.Product, error)

	// Delete removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Delete(ctx context.Context, id string) error
}

package store

import (
	"context"
	"errors"
	"fmt"

	perrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/product"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Prices are exchanged as text so NUMERIC values keep their exact decimal form.
const productColumns = `id, name, description, price::text, category, image_url, featured, created_at, updated_at`

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

func (p *PgStore) ListAll(ctx context.Context) ([]product.Product, error) {
	rows, err := p.db.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return collect(rows)
}

func (p *PgStore) ListFeatured(ctx context.Context) ([]product.Product, error) {
	rows, err := p.db.Query(ctx, `SELECT `+productColumns+` FROM products WHERE featured ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list featured products: %w", err)
	}
	return collect(rows)
}

// GetByID retrieves a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) GetByID(ctx context.Context, id string) (*product.Product, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, perrors.ErrProductNotFound
	}
	rows, err := p.db.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return collectOne(rows, "find product by ID")
}

func (p *PgStore) Create(ctx context.Context, np product.Product) (*product.Product, error) {
	rows, err := p.db.Query(ctx, `
		INSERT INTO products (name, description, price, category, image_url, featured)
		VALUES ($1, $2, $3::text::numeric, $4, $5, $6)
		RETURNING `+productColumns,
		np.Name, np.Description, np.Price.String(), np.Category, np.ImageURL, np.Featured)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return collectOne(rows, "create product")
}

// Update applies the non-nil patch fields. Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) Update(ctx context.Context, id string, patch product.Patch) (*product.Product, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, perrors.ErrProductNotFound
	}
	var price *string
	if patch.Price != nil {
		s := patch.Price.String()
		price = &s
	}
	rows, err := p.db.Query(ctx, `
		UPDATE products SET
			name        = COALESCE($2, name),
			description = COALESCE($3, description),
			price       = COALESCE($4::text::numeric, price),
			category    = COALESCE($5, category),
			image_url   = COALESCE($6, image_url),
			featured    = COALESCE($7, featured),
			updated_at  = now()
		WHERE id = $1
		RETURNING `+productColumns,
		uid, patch.Name, patch.Description, price, patch.Category, patch.ImageURL, patch.Featured)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return collectOne(rows, "update product")
}

// Delete removes a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return perrors.ErrProductNotFound
	}
	tag, err := p.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, uid)
	if err != nil {
		return fmt.Errorf("failed to delete product by ID: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return perrors.ErrProductNotFound
	}
	return nil
}

func collect(rows pgx.Rows) ([]product.Product, error) {
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}
	return products, nil
}

func collectOne(rows pgx.Rows, op string) (*product.Product, error) {
	found, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	return &found, nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var (
		p     product.Product
		id    uuid.UUID
		price string
	)
	if err := row.Scan(&id, &p.Name, &p.Description, &price, &p.Category, &p.ImageURL, &p.Featured, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return product.Product{}, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return product.Product{}, fmt.Errorf("invalid price %q: %w", price, err)
	}
	p.ID = id.String()
	p.Price = d
	return p, nil
}

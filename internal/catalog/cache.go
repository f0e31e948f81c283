package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/abgdnv/storefront/internal/product"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Source provides the catalog data.
type Source interface {
	ListAll(ctx context.Context) ([]product.Product, error)
	ListFeatured(ctx context.Context) ([]product.Product, error)
}

// Snapshot is one immutable catalog state.
type Snapshot struct {
	filter   *Filter
	featured []product.Product
}

// Filter returns the unfiltered view of the snapshot. Callers must not mutate it; use WithCriteria.
func (s *Snapshot) Filter() *Filter {
	return s.filter
}

func (s *Snapshot) Featured() []product.Product {
	return s.featured
}

// Cache holds the current catalog snapshot and swaps it atomically on Reload.
type Cache struct {
	source   Source
	logger   *slog.Logger
	snapshot atomic.Pointer[Snapshot]
	loaded   atomic.Bool

	mu        sync.Mutex
	listeners []func(*Snapshot)

	size     metric.Int64Gauge
	failures metric.Int64Counter
}

func NewCache(source Source, logger *slog.Logger) *Cache {
	c := &Cache{
		source: source,
		logger: logger.With("component", "catalog"),
	}
	empty := &Snapshot{filter: NewFilter(), featured: []product.Product{}}
	empty.filter.SetCatalog([]product.Product{})
	c.snapshot.Store(empty)

	meter := otel.Meter("github.com/abgdnv/storefront/internal/catalog")
	c.size, _ = meter.Int64Gauge("catalog_products", metric.WithDescription("Number of products in the cached catalog"))
	c.failures, _ = meter.Int64Counter("catalog_reload_failures", metric.WithDescription("Catalog reloads that kept the previous catalog"))
	return c
}

// OnReload registers fn to run after every successful reload.
func (c *Cache) OnReload(fn func(*Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Reload fetches the catalog from the source. On failure the previous snapshot stays in place.
func (c *Cache) Reload(ctx context.Context) error {
	all, err := c.source.ListAll(ctx)
	if err != nil {
		c.reloadFailed(ctx, err)
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	featured, err := c.source.ListFeatured(ctx)
	if err != nil {
		c.reloadFailed(ctx, err)
		return fmt.Errorf("failed to load featured products: %w", err)
	}

	filter := NewFilter()
	filter.SetCatalog(all)
	snap := &Snapshot{filter: filter, featured: featured}
	c.snapshot.Store(snap)
	c.loaded.Store(true)
	c.size.Record(ctx, int64(len(all)))
	c.logger.InfoContext(ctx, "Catalog reloaded", "products", len(all), "featured", len(featured), "categories", len(filter.Categories()))

	c.mu.Lock()
	listeners := append([]func(*Snapshot){}, c.listeners...)
	c.mu.Unlock()
	for _, fn := range listeners {
		fn(snap)
	}
	return nil
}

func (c *Cache) reloadFailed(ctx context.Context, err error) {
	c.failures.Add(ctx, 1)
	c.logger.ErrorContext(ctx, "Catalog reload failed, keeping previous catalog", "error", err)
}

// Snapshot returns the current catalog state.
func (c *Cache) Snapshot() *Snapshot {
	return c.snapshot.Load()
}

// Loaded reports whether at least one reload succeeded.
func (c *Cache) Loaded() bool {
	return c.loaded.Load()
}

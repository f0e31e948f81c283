package store

import (
	"context"
	"slices"
	"sync"
	"time"

	perrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/product"
	"github.com/google/uuid"
)

// MemoryStore implements ProductStore in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	products []product.Product
	now      func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (s *MemoryStore) ListAll(_ context.Context) ([]product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.products), nil
}

func (s *MemoryStore) ListFeatured(_ context.Context) ([]product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]product.Product, 0, len(s.products))
	for _, p := range s.products {
		if p.Featured {
			list = append(list, p)
		}
	}
	return list, nil
}

func (s *MemoryStore) GetByID(_ context.Context, id string) (*product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return nil, perrors.ErrProductNotFound
	}
	p := s.products[i]
	return &p, nil
}

func (s *MemoryStore) Create(_ context.Context, p product.Product) (*product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	p.ID = uuid.NewString()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.products = append(s.products, p)
	return &p, nil
}

func (s *MemoryStore) Update(_ context.Context, id string, patch product.Patch) (*product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return nil, perrors.ErrProductNotFound
	}
	updated := patch.Apply(s.products[i])
	updated.UpdatedAt = s.now().UTC()
	s.products[i] = updated
	return &updated, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return perrors.ErrProductNotFound
	}
	s.products = slices.Delete(s.products, i, i+1)
	return nil
}

func (s *MemoryStore) indexOf(id string) int {
	return slices.IndexFunc(s.products, func(p product.Product) bool { return p.ID == id })
}

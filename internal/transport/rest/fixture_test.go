package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/abgdnv/storefront/internal/cart"
	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/abgdnv/storefront/internal/checkout"
	"github.com/abgdnv/storefront/internal/product"
	"github.com/abgdnv/storefront/internal/store"
	"github.com/abgdnv/storefront/pkg/logger"
	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	router   chi.Router
	store    *store.MemoryStore
	cache    *catalog.Cache
	sessions *cart.Sessions
	products map[string]product.Product
}

// newFixture builds the shopper API over an in-memory catalog of seven products, five of them featured.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	s := store.NewMemoryStore()
	seed := []struct {
		name, category, price string
		featured              bool
	}{
		{"Desk Lamp", "Lighting", "49.99", true},
		{"Floor Lamp", "Lighting", "129.00", true},
		{"Oak Chair", "Furniture", "89.50", true},
		{"Walnut Table", "Furniture", "349.00", false},
		{"Wool Rug", "Textiles", "210.00", true},
		{"Linen Throw", "Textiles", "39.90", false},
		{"Ceramic Vase", "Decor", "24.00", true},
	}
	products := make(map[string]product.Product, len(seed))
	for _, p := range seed {
		created, err := s.Create(ctx, product.Product{
			Name:        p.name,
			Description: p.name + " description",
			Price:       decimal.RequireFromString(p.price),
			Category:    p.category,
			ImageURL:    "https://img.example.com/" + strings.ReplaceAll(strings.ToLower(p.name), " ", "-") + ".jpg",
			Featured:    p.featured,
		})
		require.NoError(t, err)
		products[p.name] = *created
	}

	log := logger.Discard()
	cache := catalog.NewCache(s, log)
	slider := catalog.NewSlider(4, time.Hour, log)
	cache.OnReload(func(snap *catalog.Snapshot) { slider.SetFeatured(snap.Featured()) })
	require.NoError(t, cache.Reload(ctx))

	sessions := cart.NewSessions(cart.NewMemorySlot(), log)
	checkoutSvc := checkout.NewService(sessions, messaging.NoopPublisher{}, log)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		NewProductHandler(cache, slider, s, log).RegisterRoutes(r)
		NewCartHandler(sessions, cache, checkoutSvc, log).RegisterRoutes(r)
	})
	NewHealthHandler(cache, log).RegisterRoutes(r)

	return &fixture{router: r, store: s, cache: cache, sessions: sessions, products: products}
}

func (f *fixture) do(t *testing.T, method, target, session string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if session != "" {
		req.Header.Set(SessionHeader, session)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out), rr.Body.String())
	return out
}

func productNames(list []product.Product) []string {
	out := make([]string, len(list))
	for i, p := range list {
		out[i] = p.Name
	}
	return out
}


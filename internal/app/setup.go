// Package app wires the storefront components together.
package app

import (
	"log/slog"
	"net/http"

	"github.com/abgdnv/storefront/internal/admin"
	"github.com/abgdnv/storefront/internal/cart"
	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/abgdnv/storefront/internal/checkout"
	"github.com/abgdnv/storefront/internal/config"
	"github.com/abgdnv/storefront/internal/store"
	"github.com/abgdnv/storefront/internal/transport/rest"
	"github.com/abgdnv/storefront/pkg/auth"
	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/abgdnv/storefront/pkg/server"
	"github.com/go-chi/chi/v5"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Externals are the clients built by main from the process configuration.
type Externals struct {
	Store     store.ProductStore
	Slot      cart.Slot
	Uploader  admin.Uploader
	Verifier  auth.Verifier
	Publisher messaging.Publisher
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

type Dependencies struct {
	Store          store.ProductStore
	Cache          *catalog.Cache
	Slider         *catalog.Slider
	Sessions       *cart.Sessions
	Checkout       *checkout.Service
	ProductService admin.ProductService
	Verifier       auth.Verifier
	Health         *health.Server
	Metrics        http.Handler
	Logger         *slog.Logger

	adminMarker    string
	maxUploadBytes int64
}

// SetupDependencies builds the storefront components. The catalog is not loaded yet;
// the gRPC health status turns SERVING after the first successful Cache.Reload.
func SetupDependencies(ext Externals, cfg *config.Config, logger *slog.Logger) *Dependencies {
	publisher := ext.Publisher
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}

	cache := catalog.NewCache(ext.Store, logger)
	slider := catalog.NewSlider(cfg.Catalog.SliderGroupSize, cfg.Catalog.SliderInterval, logger)
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	cache.OnReload(func(snap *catalog.Snapshot) {
		slider.SetFeatured(snap.Featured())
		hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	})

	sessions := cart.NewSessions(ext.Slot, logger)

	return &Dependencies{
		Store:          ext.Store,
		Cache:          cache,
		Slider:         slider,
		Sessions:       sessions,
		Checkout:       checkout.NewService(sessions, publisher, logger),
		ProductService: admin.NewService(ext.Store, ext.Uploader, cache, publisher, logger),
		Verifier:       ext.Verifier,
		Health:         hs,
		Metrics:        ext.Metrics,
		Logger:         logger,
		adminMarker:    cfg.IdP.AdminMarker,
		maxUploadBytes: cfg.HTTPServer.MaxUploadBytes,
	}
}

// SetupHttpHandler builds the router with every storefront route.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the storefront application.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	rest.NewHealthHandler(deps.Cache, deps.Logger).RegisterRoutes(mux)
	if deps.Metrics != nil {
		mux.Handle("/metrics", deps.Metrics)
	}
	mux.Route("/api/v1", func(r chi.Router) {
		rest.NewProductHandler(deps.Cache, deps.Slider, deps.Store, deps.Logger).RegisterRoutes(r)
		rest.NewCartHandler(deps.Sessions, deps.Cache, deps.Checkout, deps.Logger).RegisterRoutes(r)
		rest.NewAdminHandler(deps.ProductService, deps.Verifier, deps.adminMarker, deps.maxUploadBytes, deps.Logger).RegisterRoutes(r)
	})
}

// SetupHttpServer creates and configures the HTTP server for the storefront.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, "storefront", mux)
}

// SetupGrpcServer exposes the health service, with reflection if enabled.
func SetupGrpcServer(deps *Dependencies, reflectionEnabled bool) *grpc.Server {
	return server.NewGRPCServer(reflectionEnabled, server.HealthRegistration(deps.Health))
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/abgdnv/storefront/internal/app"
	"github.com/abgdnv/storefront/internal/cart"
	"github.com/abgdnv/storefront/internal/config"
	"github.com/abgdnv/storefront/internal/media"
	"github.com/abgdnv/storefront/internal/store"
	"github.com/abgdnv/storefront/pkg/auth"
	"github.com/abgdnv/storefront/pkg/messaging"
	natsclient "github.com/abgdnv/storefront/pkg/nats"
	"github.com/abgdnv/storefront/pkg/telemetry"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/redis/go-redis/v9"
)

type externals struct {
	app.Externals
	nc *nats.Conn
	js jetstream.JetStream
}

func (e *externals) close() {
	if e.nc != nil {
		_ = e.nc.Drain()
	}
}

// setupExternals builds the clients the storefront talks to. NATS is optional;
// without it events are dropped and the catalog only reloads after local changes.
func setupExternals(ctx context.Context, cfg *config.Config, dbPool *pgxpool.Pool, redisClient *redis.Client, logger *slog.Logger) (*externals, error) {
	verifier, err := auth.NewJWTVerifier(ctx, cfg.IdP)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT verifier: %w", err)
	}

	ext := &externals{
		Externals: app.Externals{
			Store:     store.NewPgStore(dbPool),
			Slot:      cart.NewRedisSlot(redisClient, cfg.Cart.TTL),
			Uploader:  media.NewCloudinaryUploader(cfg.Media, nil, logger),
			Verifier:  verifier,
			Publisher: messaging.NoopPublisher{},
		},
	}
	if !cfg.NATS.Enabled {
		logger.Warn("NATS is disabled, catalog changes are not shared between instances")
		return ext, nil
	}

	ext.nc, err = natsclient.NewClient(cfg.NATS.Url, cfg.NATS.Timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create NATS connection: %w", err)
	}
	ext.js, err = natsclient.NewJetStreamContext(ext.nc)
	if err != nil {
		ext.close()
		return nil, fmt.Errorf("failed to get JetStream context: %w", err)
	}
	if _, err := natsclient.EnsureStream(ctx, ext.js, cfg.NATS.Stream, messaging.StreamSubjects); err != nil {
		ext.close()
		return nil, err
	}
	ext.Publisher = natsclient.NewNatsPublisher(ext.js)
	logger.Info("Successfully connected to NATS!", "stream", cfg.NATS.Stream)
	return ext, nil
}

// setupTelemetry installs the tracer and meter providers that are enabled.
// The returned function flushes and stops them.
func setupTelemetry(ctx context.Context, cfg *config.Config) (func(context.Context) error, http.Handler, error) {
	var shutdowns []func(context.Context) error
	var metricsHandler http.Handler

	if cfg.Telemetry.Traces.Enabled {
		tp, err := telemetry.NewTracerProvider(ctx, serviceName, cfg.Telemetry)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create tracer provider: %w", err)
		}
		shutdowns = append(shutdowns, tp.Shutdown)
	}
	if cfg.Telemetry.Metrics.Enabled {
		mp, handler, err := telemetry.NewMeterProvider(serviceName)
		if err != nil {
			return nil, nil, err
		}
		shutdowns = append(shutdowns, mp.Shutdown)
		metricsHandler = handler
	}

	return func(ctx context.Context) error {
		var errs []error
		for _, fn := range shutdowns {
			errs = append(errs, fn(ctx))
		}
		return errors.Join(errs...)
	}, metricsHandler, nil
}

// instanceConsumer suffixes the durable consumer with the host name so that every instance receives every event.
func instanceConsumer(consumer string) string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return consumer
	}
	// durable names may not contain dots
	return consumer + "-" + strings.ReplaceAll(host, ".", "-")
}

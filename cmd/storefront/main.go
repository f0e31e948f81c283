// Package main runs the storefront service: catalog, carts, checkout and the admin API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "net/http/pprof"

	"github.com/abgdnv/storefront/internal/app"
	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/abgdnv/storefront/internal/config"
	"github.com/abgdnv/storefront/internal/store"
	"github.com/abgdnv/storefront/pkg/bootstrap"
	"github.com/abgdnv/storefront/pkg/config/configloader"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const serviceName = "storefront"

func main() {
	flags := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	configFile := flags.StringP("config", "c", configloader.DefaultConfigFile, "path to the YAML configuration file")
	_ = flags.Parse(os.Args[1:])

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configFile); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run loads the configuration, connects the backing services and runs every long-lived part until ctx is done.
func run(ctx context.Context, configFile string) error {
	cfg, cfgErr := configloader.LoadFile[*config.Config](serviceName, configFile)
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	shutdownTelemetry, metricsHandler, err := setupTelemetry(ctx, cfg)
	if err != nil {
		logger.Error("error creating telemetry providers", slog.Any("error", err))
		return err
	}

	if cfg.Database.Migrate {
		if err := store.Migrate(cfg.Database.URL); err != nil {
			return err
		}
		logger.Info("Database migrations applied")
	}

	dbPool, err := bootstrap.NewDbPool(ctx, cfg.Database.URL, cfg.Database.Timeout)
	if err != nil {
		return fmt.Errorf("failed to create database connection pool: %w", err)
	}
	defer dbPool.Close()
	logger.Info("Successfully connected to the database!")

	redisClient, err := bootstrap.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer func() { _ = redisClient.Close() }()
	logger.Info("Successfully connected to Redis!")

	ext, err := setupExternals(ctx, cfg, dbPool, redisClient, logger)
	if err != nil {
		return err
	}
	defer ext.close()
	ext.Metrics = metricsHandler

	deps := app.SetupDependencies(ext.Externals, cfg, logger)
	if err := deps.Cache.Reload(ctx); err != nil {
		logger.Warn("Initial catalog load failed, serving an empty catalog until the next reload", "error", err)
	}

	httpServer := app.SetupHttpServer(deps, cfg)
	grpcServer := app.SetupGrpcServer(deps, cfg.GRPC.ReflectionEnabled)

	g, gCtx := errgroup.WithContext(ctx)

	serveHTTP(gCtx, g, logger, "HTTP", httpServer, cfg.Shutdown.Timeout)

	// Start the gRPC server
	g.Go(func() error {
		grpcAddr := ":" + cfg.GRPC.Port
		lis, err := net.Listen("tcp", grpcAddr)
		if err != nil {
			return fmt.Errorf("failed to listen on gRPC port: %w", err)
		}
		logger.Info("gRPC server listening", slog.String("addr", grpcAddr))
		return grpcServer.Serve(lis)
	})
	// gracefully shutdown gRPC server on context cancellation
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down gRPC server...")
		deps.Health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
		stopped := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			deps.Health.Shutdown()
			close(stopped)
		}()
		select {
		case <-stopped:
			logger.Info("gRPC server stopped gracefully.")
			return nil
		case <-time.After(cfg.Shutdown.Timeout):
			logger.Warn("gRPC server graceful stop timed out. Forcing stop.")
			grpcServer.Stop()
			return fmt.Errorf("grpc server graceful stop timed out")
		}
	})

	// Rotate the featured slider
	g.Go(func() error {
		return deps.Slider.Run(gCtx)
	})

	// Reload the catalog when another instance changes it
	if ext.js != nil {
		subscriber := cfg.Subscriber
		subscriber.Consumer = instanceConsumer(subscriber.Consumer)
		g.Go(func() error {
			err := catalog.StartRefresher(gCtx, ext.js, cfg.NATS.Stream, subscriber, deps.Cache, logger)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("catalog refresher failed", "error", err)
				return err
			}
			logger.Info("catalog refresher stopped gracefully.")
			return nil
		})
	}

	if cfg.PProf.Enabled {
		serveHTTP(gCtx, g, logger, "pprof", &http.Server{Addr: cfg.PProf.Addr}, cfg.Shutdown.Timeout)
	}

	// gracefully shutdown telemetry providers
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down telemetry providers")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
		defer cancel()
		return shutdownTelemetry(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}

// serveHTTP runs srv in g and shuts it down once ctx is done.
func serveHTTP(ctx context.Context, g *errgroup.Group, logger *slog.Logger, name string, srv *http.Server, timeout time.Duration) {
	g.Go(func() error {
		logger.Info(name+" server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s server failed: %w", name, err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down " + name + " server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

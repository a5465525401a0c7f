package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/allisson/quickie/internal/app"
	"github.com/allisson/quickie/internal/config"
)

// shutdownTimeout bounds how long in-flight requests get to finish.
const shutdownTimeout = 15 * time.Second

// serverRunner is an HTTP server that blocks in Start until Shutdown is called.
type serverRunner interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// janitor removes expired entries from an in-process store until ctx is done.
type janitor interface {
	Run(ctx context.Context, interval time.Duration) error
}

// RunServer starts the API server, the metrics server and, for the memory backend, the
// expiry janitor. Blocks until SIGINT/SIGTERM or until any of them fails, then shuts
// everything down gracefully.
func RunServer(ctx context.Context, version string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)

	logger := container.Logger()
	logger.Info("starting server",
		slog.String("version", version),
		slog.String("store_backend", cfg.StoreBackend),
	)

	defer closeContainer(container, logger)

	// Builds the store and vault, so an unreachable backend fails here.
	server, err := container.HTTPServer()
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	servers := map[string]serverRunner{"api": server}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}
	if metricsServer != nil {
		servers["metrics"] = metricsServer
	}

	var sweeper janitor
	memoryStore, err := container.MemoryStore()
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	if memoryStore != nil {
		sweeper = memoryStore
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return serve(ctx, logger, servers, sweeper, cfg.MemoryStoreSweepInterval, shutdownTimeout)
}

// serve runs servers and the optional sweeper in one errgroup. The first failure or the
// cancellation of ctx shuts every server down within timeout.
func serve(
	ctx context.Context,
	logger *slog.Logger,
	servers map[string]serverRunner,
	sweeper janitor,
	sweepInterval time.Duration,
	timeout time.Duration,
) error {
	g, gctx := errgroup.WithContext(ctx)

	for name, server := range servers {
		g.Go(func() error {
			if err := server.Start(gctx); err != nil {
				return fmt.Errorf("%s server error: %w", name, err)
			}
			return nil
		})
	}

	if sweeper != nil {
		g.Go(func() error {
			logger.Info("starting memory store janitor", slog.Duration("interval", sweepInterval))
			return sweeper.Run(gctx, sweepInterval)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() != nil {
			logger.Info("shutdown signal received")
		} else {
			logger.Error("server error, initiating shutdown")
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		var shutdownErrors []error
		for name, server := range servers {
			if err := server.Shutdown(shutdownCtx); err != nil {
				shutdownErrors = append(shutdownErrors, fmt.Errorf("%s server shutdown: %w", name, err))
			}
		}
		return errors.Join(shutdownErrors...)
	})

	return g.Wait()
}

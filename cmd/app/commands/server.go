package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/icarushq/icarus/internal/app"
	"github.com/icarushq/icarus/internal/config"
)

// RunServer starts the API and metrics servers with graceful shutdown
// support. Blocks until receiving SIGINT/SIGTERM or until one of the servers
// fails, then shuts the remaining ones down within DBConnMaxLifetime.
func RunServer(ctx context.Context, version string) error {
	cfg := config.Load()

	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)
	logger := container.Logger()
	logger.Info("starting server", slog.String("version", version))

	defer closeContainer(container, logger)

	server, err := container.HTTPServer()
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := server.Start(groupCtx); err != nil {
			return fmt.Errorf("api server error: %w", err)
		}
		return nil
	})

	if metricsServer != nil {
		group.Go(func() error {
			if err := metricsServer.Start(groupCtx); err != nil {
				return fmt.Errorf("metrics server error: %w", err)
			}
			return nil
		})
	}

	// Stops the servers once the signal arrives or a sibling goroutine
	// fails. Start returns nil after Shutdown, so the group drains cleanly.
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.DBConnMaxLifetime)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("api server shutdown: %w", err)
		}
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("metrics server shutdown: %w", err)
			}
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		logger.Error("server stopped with error", slog.Any("error", err))
		return err
	}

	return nil
}

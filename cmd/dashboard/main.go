// Command dashboard serves the squirrel census charts from the merged dataset written
// by cmd/wrangle.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/squirrel-census/internal/adapter/httpadapter"
	"github.com/couchcryptid/squirrel-census/internal/chart"
	"github.com/couchcryptid/squirrel-census/internal/config"
	"github.com/couchcryptid/squirrel-census/internal/dataset"
	"github.com/couchcryptid/squirrel-census/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// The dataset is loaded once before serving; readiness stays false until then.
	store := dataset.NewStore(cfg.DatasetPath, logger, metrics)
	if err := store.Load(); err != nil {
		logger.Error("failed to load dataset", "path", cfg.DatasetPath, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var watcher *dataset.Watcher
	if cfg.DatasetWatch {
		watcher, err = dataset.NewWatcher(store, dataset.DefaultDebounce, logger, metrics)
		if err != nil {
			logger.Error("failed to create dataset watcher", "error", err)
			os.Exit(1)
		}
		if err := watcher.Start(ctx); err != nil {
			logger.Error("failed to start dataset watcher", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Info("dataset watching disabled")
	}

	composer := chart.NewComposer(chart.DefaultConfig())
	srv := httpadapter.NewServer(cfg.HTTPAddr, store, composer, httpadapter.Options{
		DefaultBehavior:    cfg.DefaultBehavior,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}, logger, metrics)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if watcher != nil {
		watcher.Stop()
	}

	logger.Info("shutdown complete")
}

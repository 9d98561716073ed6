package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/kma-weather-etl/internal/adapter/filestore"
	httpadapter "github.com/couchcryptid/kma-weather-etl/internal/adapter/http"
	"github.com/couchcryptid/kma-weather-etl/internal/config"
	"github.com/couchcryptid/kma-weather-etl/internal/dashboard"
	"github.com/couchcryptid/kma-weather-etl/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	weatherFile := cfg.ResolveWeatherFile(cfg.CollectFrom, cfg.CollectTo)
	svc := dashboard.NewService(filestore.New(logger), weatherFile, cfg.StationFile, cfg.DashboardCacheSize, logger, metrics)

	// Missing tables are reported, not fatal: the server stays up and answers 503.
	if err := svc.CheckReadiness(context.Background()); err != nil {
		logger.Warn("dataset not available yet", "error", err)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	logger.Info("dashboard serving", "weather_file", weatherFile, "station_file", cfg.StationFile)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}

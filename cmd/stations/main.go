// Command stations downloads the KMA surface station directory and writes it
// to STATION_FILE (or -out).
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/kma-weather-etl/internal/adapter/filestore"
	"github.com/couchcryptid/kma-weather-etl/internal/adapter/kma"
	"github.com/couchcryptid/kma-weather-etl/internal/config"
	"github.com/couchcryptid/kma-weather-etl/internal/observability"
	"github.com/couchcryptid/kma-weather-etl/internal/pipeline"
)

func main() {
	out := flag.String("out", "", "station file path (default STATION_FILE)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.RequireAuthKey(); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *out != "" {
		cfg.StationFile = *out
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	client := kma.NewClient(kma.Options{
		AuthKey:        cfg.AuthKey,
		StationAuthKey: cfg.StationAuthKey,
		BaseURL:        cfg.BaseURL,
		StationTimeout: cfg.StationTimeout,
		MonthlyTimeout: cfg.MonthlyTimeout,
	}, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	job := pipeline.NewStationSync(client, filestore.New(logger), logger)
	if _, err := job.Run(ctx, cfg.StationFile); err != nil {
		logger.Error("station file not created", "error", err)
		os.Exit(1)
	}
}

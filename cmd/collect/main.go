// Command collect downloads hourly observations for every station over a
// month range and writes them as one table.
//
// Usage:
//
//	go run ./cmd/collect -from 2024-01 -to 2024-12 -out weather.parquet
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/kma-weather-etl/internal/adapter/filestore"
	kafkaadapter "github.com/couchcryptid/kma-weather-etl/internal/adapter/kafka"
	"github.com/couchcryptid/kma-weather-etl/internal/adapter/kma"
	"github.com/couchcryptid/kma-weather-etl/internal/config"
	"github.com/couchcryptid/kma-weather-etl/internal/domain"
	"github.com/couchcryptid/kma-weather-etl/internal/observability"
	"github.com/couchcryptid/kma-weather-etl/internal/pipeline"
)

func main() {
	from := flag.String("from", "", "first month, YYYY-MM (default COLLECT_FROM)")
	to := flag.String("to", "", "last month, YYYY-MM (default COLLECT_TO)")
	out := flag.String("out", "", "output table, .csv or .parquet (default WEATHER_FILE or kma_weather_<from>-<to>.csv)")
	flag.Parse()

	if err := run(*from, *to, *out); err != nil {
		slog.Error("collection failed", "error", err)
		os.Exit(1)
	}
}

func run(fromFlag, toFlag, outFlag string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.RequireAuthKey(); err != nil {
		return err
	}

	from, to := cfg.CollectFrom, cfg.CollectTo
	if fromFlag != "" {
		if from, err = domain.ParseYearMonth(fromFlag); err != nil {
			return fmt.Errorf("-from: %w", err)
		}
	}
	if toFlag != "" {
		if to, err = domain.ParseYearMonth(toFlag); err != nil {
			return fmt.Errorf("-to: %w", err)
		}
	}
	if to.Before(from) {
		return fmt.Errorf("range %s..%s is empty", from, to)
	}
	out := outFlag
	if out == "" {
		out = cfg.ResolveWeatherFile(from, to)
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

	var opts []pipeline.Option
	if cfg.KafkaEnabled() {
		writer := kafkaadapter.NewWriter(cfg, logger, metrics)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		opts = append(opts, pipeline.WithPublisher(writer))
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := pipeline.NewCollector(client, filestore.New(logger), logger, metrics, cfg.RequestDelay, opts...)
	report, err := collector.Run(ctx, from, to, out)
	if err != nil {
		return err
	}
	if !report.Collected {
		logger.Warn("no data collected", "from", from.String(), "to", to.String())
	}
	return nil
}

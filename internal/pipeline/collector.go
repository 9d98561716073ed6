package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/kma-weather-etl/internal/domain"
	"github.com/couchcryptid/kma-weather-etl/internal/observability"
)

// DefaultDelay is the pause after every monthly request.
const DefaultDelay = 2 * time.Second

// Report summarizes a collection run.
type Report struct {
	RunID        string
	OutputPath   string
	Rows         int
	MonthsOK     int
	MonthsEmpty  int
	MonthsFailed int
	Collected    bool // false when no month produced rows and nothing was written
	Published    bool
}

// Collector walks a month range, fetches each month, and persists the
// concatenated result as one table.
type Collector struct {
	fetcher   MonthFetcher
	store     ObservationStore
	publisher ObservationPublisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock
	delay     time.Duration
}

// Option configures a Collector.
type Option func(*Collector)

// WithClock replaces the real clock, for tests.
func WithClock(c clockwork.Clock) Option {
	return func(col *Collector) { col.clock = c }
}

// WithPublisher forwards collected rows after they are persisted.
func WithPublisher(p ObservationPublisher) Option {
	return func(col *Collector) { col.publisher = p }
}

// NewCollector creates a Collector that waits delay after every request.
func NewCollector(f MonthFetcher, s ObservationStore, logger *slog.Logger, metrics *observability.Metrics, delay time.Duration, opts ...Option) *Collector {
	c := &Collector{
		fetcher: f,
		store:   s,
		logger:  logger,
		metrics: metrics,
		clock:   clockwork.NewRealClock(),
		delay:   delay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run collects from..to inclusive and writes the rows to outPath. A run that
// collects nothing writes nothing and is not an error. Cancellation stops the
// run without writing.
func (c *Collector) Run(ctx context.Context, from, to domain.YearMonth, outPath string) (Report, error) {
	months := domain.MonthsBetween(from, to)
	report := Report{RunID: uuid.NewString(), OutputPath: outPath}
	log := c.logger.With("run_id", report.RunID)

	log.Info("collection started", "from", from.String(), "to", to.String(), "months", len(months), "delay", c.delay)
	c.metrics.CollectorRunning.Set(1)
	defer c.metrics.CollectorRunning.Set(0)
	start := c.clock.Now()

	var batches [][]domain.Observation
	for _, ym := range months {
		res := c.fetcher.FetchMonth(ctx, ym)
		c.metrics.MonthsFetched.WithLabelValues(res.Status.String()).Inc()

		switch res.Status {
		case domain.MonthOK:
			report.MonthsOK++
			report.Rows += len(res.Observations)
			batches = append(batches, res.Observations)
			c.metrics.ObservationsCollected.Add(float64(len(res.Observations)))
		case domain.MonthEmpty:
			report.MonthsEmpty++
		case domain.MonthFailed:
			report.MonthsFailed++
			log.Warn("month skipped", "month", ym.String(), "error", res.Err)
		}

		if !c.wait(ctx) {
			log.Info("collection cancelled", "month", ym.String())
			return report, fmt.Errorf("collection cancelled: %w", ctx.Err())
		}
	}

	if len(batches) == 0 {
		log.Info("nothing collected, no file written", "months_failed", report.MonthsFailed, "months_empty", report.MonthsEmpty)
		return report, nil
	}

	all := make([]domain.Observation, 0, report.Rows)
	for _, b := range batches {
		all = append(all, b...)
	}

	if err := c.store.SaveObservations(outPath, all); err != nil {
		return report, fmt.Errorf("persist observations: %w", err)
	}
	report.Collected = true
	c.metrics.CollectionDuration.Observe(c.clock.Since(start).Seconds())

	if c.publisher != nil {
		if err := c.publisher.Publish(ctx, report.RunID, all); err != nil {
			log.Error("publish failed, file kept", "error", err)
		} else {
			report.Published = true
		}
	}

	log.Info("collection complete",
		"path", outPath,
		"rows", report.Rows,
		"months_ok", report.MonthsOK,
		"months_empty", report.MonthsEmpty,
		"months_failed", report.MonthsFailed,
	)
	return report, nil
}

// wait pauses for the configured delay. Returns false if ctx ends first.
func (c *Collector) wait(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	if c.delay <= 0 {
		return true
	}
	select {
	case <-ctx.Done():
		return false
	case <-c.clock.After(c.delay):
		return true
	}
}

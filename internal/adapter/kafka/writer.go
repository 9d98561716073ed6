package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/kma-weather-etl/internal/config"
	"github.com/couchcryptid/kma-weather-etl/internal/domain"
	"github.com/couchcryptid/kma-weather-etl/internal/observability"
)

// publishChunk bounds the messages handed to a single WriteMessages call.
const publishChunk = 1000

// Writer publishes collected observations to a Kafka topic.
// It implements pipeline.ObservationPublisher.
type Writer struct {
	writer  *kafkago.Writer
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewWriter creates a Kafka producer for the configured observation topic.
func NewWriter(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger, metrics: metrics}
}

// Publish serializes observations as JSON and writes them keyed by station so
// that one station's readings stay ordered within a partition.
func (w *Writer) Publish(ctx context.Context, runID string, obs []domain.Observation) error {
	if len(obs) == 0 {
		return nil
	}
	publishedAt := time.Now().UTC()
	for start := 0; start < len(obs); start += publishChunk {
		end := min(start+publishChunk, len(obs))
		msgs := make([]kafkago.Message, 0, end-start)
		for i := start; i < end; i++ {
			msg, err := serializeToMessage(obs[i], runID, publishedAt)
			if err != nil {
				return err
			}
			msgs = append(msgs, msg)
		}
		if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
			return fmt.Errorf("publish observations: %w", err)
		}
		w.metrics.ObservationsPublished.Add(float64(len(msgs)))
	}
	w.logger.Info("observations published", "topic", w.writer.Topic, "count", len(obs), "run_id", runID)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an Observation into a Kafka message.
func serializeToMessage(o domain.Observation, runID string, publishedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(o)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize observation: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(o.StationID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "run_id", Value: []byte(runID)},
			{Key: "observed_at", Value: []byte(o.Time)},
			{Key: "published_at", Value: []byte(publishedAt.Format(time.RFC3339))},
		},
	}, nil
}

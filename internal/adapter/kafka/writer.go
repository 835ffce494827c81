// Package kafka publishes points to a Kafka topic as JSON messages.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/dwd-climate-etl/internal/config"
	"github.com/couchcryptid/dwd-climate-etl/internal/domain"
)

// Writer produces point messages to a Kafka topic. Messages are keyed by the
// point identity and hashed to partitions, so on a compacted topic a re-run
// replaces earlier values.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchFlushInterval,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes points in a single WriteMessages call.
func (w *Writer) LoadBatch(ctx context.Context, points []domain.Point) error {
	if len(points) == 0 {
		return nil
	}
	writtenAt := domain.Now()
	msgs := make([]kafkago.Message, len(points))
	for i := range points {
		msg, err := serializeToMessage(points[i], writtenAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka write %d points: %w", len(points), err)
	}
	w.logger.Debug("points published", "topic", w.writer.Topic, "points", len(points))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a point into a Kafka message.
func serializeToMessage(p domain.Point, writtenAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize point: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(p.Key()),
		Value: data,
		Time:  p.Time,
		Headers: []kafkago.Header{
			{Key: "measurement", Value: []byte(p.Measurement)},
			{Key: "written_at", Value: []byte(writtenAt.Format(time.RFC3339))},
		},
	}, nil
}

// Package influx writes points to InfluxDB 2.x.
package influx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/couchcryptid/dwd-climate-etl/internal/config"
	"github.com/couchcryptid/dwd-climate-etl/internal/domain"
)

// Writer writes points with second precision through the blocking write API.
// InfluxDB overwrites a point with the same measurement, tag set, and
// timestamp, so repeated writes converge.
// It implements pipeline.BatchLoader.
type Writer struct {
	client    influxdb2.Client
	writeAPI  api.WriteAPIBlocking
	batchSize int
	logger    *slog.Logger
}

// NewWriter creates an InfluxDB writer for the configured org and bucket.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	timeout := uint(cfg.HTTPTimeout / time.Second)
	if timeout == 0 {
		timeout = 1
	}
	opts := influxdb2.DefaultOptions().
		SetPrecision(time.Second).
		SetHTTPRequestTimeout(timeout)
	client := influxdb2.NewClientWithOptions(cfg.InfluxURL, cfg.InfluxToken, opts)

	return &Writer{
		client:    client,
		writeAPI:  client.WriteAPIBlocking(cfg.InfluxOrg, cfg.InfluxBucket),
		batchSize: cfg.WriteBatchSize,
		logger:    logger,
	}
}

// LoadBatch writes points in chunks of the configured write batch size.
func (w *Writer) LoadBatch(ctx context.Context, points []domain.Point) error {
	size := w.batchSize
	if size <= 0 {
		size = len(points)
	}
	for start := 0; start < len(points); start += size {
		end := min(start+size, len(points))
		batch := make([]*write.Point, 0, end-start)
		for _, p := range points[start:end] {
			batch = append(batch, toInflux(p))
		}
		if err := w.writeAPI.WritePoint(ctx, batch...); err != nil {
			return fmt.Errorf("influx write %d points: %w", len(batch), err)
		}
	}
	w.logger.Debug("points written", "points", len(points))
	return nil
}

// CheckReadiness pings the InfluxDB server.
func (w *Writer) CheckReadiness(ctx context.Context) error {
	ok, err := w.client.Ping(ctx)
	if err != nil {
		return fmt.Errorf("influx ping: %w", err)
	}
	if !ok {
		return errors.New("influx ping: server not ready")
	}
	return nil
}

func (w *Writer) Close() error {
	w.client.Close()
	return nil
}

func toInflux(p domain.Point) *write.Point {
	fields := make(map[string]interface{}, len(p.Fields))
	for k, v := range p.Fields {
		fields[k] = v
	}
	return write.NewPoint(p.Measurement, p.TagMap(), fields, p.Time)
}

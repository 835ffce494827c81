package observability

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "dwd_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for the loader.
type Metrics struct {
	PipelineRunning prometheus.Gauge
	LastSuccess     prometheus.Gauge

	// Archive metrics.
	ArchivesFetched *prometheus.CounterVec   // labels: data_type, scope
	ArchiveFailures *prometheus.CounterVec   // labels: data_type, scope, stage={list,fetch,unzip}
	ArchiveDuration *prometheus.HistogramVec // labels: scope

	// Decoding metrics.
	LinesSkipped     *prometheus.CounterVec // labels: format
	RecordsDiscarded *prometheus.CounterVec // labels: format

	PointsWritten *prometheus.CounterVec // labels: measurement

	registry prometheus.Gatherer
}

func newMetrics() *Metrics {
	return &Metrics{
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 while a run is in progress, 0 otherwise.",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last run that completed without a sink error.",
		}),
		ArchivesFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archives_fetched_total",
			Help:      "Archives downloaded from the DWD open data server.",
		}, []string{"data_type", "scope"}),
		ArchiveFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archive_failures_total",
			Help:      "Archives skipped because listing, download, or unpacking failed.",
		}, []string{"data_type", "scope", "stage"}),
		ArchiveDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "archive_duration_seconds",
			Help:      "Time to fetch, decode, and write one archive.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"scope"}),
		LinesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_skipped_total",
			Help:      "Malformed input lines skipped during decoding.",
		}, []string{"format"}),
		RecordsDiscarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_discarded_total",
			Help:      "Rows dropped because every measured value was missing.",
		}, []string{"format"}),
		PointsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_written_total",
			Help:      "Points handed to the sink by measurement.",
		}, []string{"measurement"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.PipelineRunning,
		m.LastSuccess,
		m.ArchivesFetched,
		m.ArchiveFailures,
		m.ArchiveDuration,
		m.LinesSkipped,
		m.RecordsDiscarded,
		m.PointsWritten,
	}
}

// NewMetrics creates and registers all loader metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	m.registry = prometheus.DefaultGatherer
	return m
}

// NewMetricsForTesting creates Metrics on a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	m := newMetrics()
	reg := prometheus.NewRegistry()
	reg.MustRegister(m.collectors()...)
	m.registry = reg
	return m
}

// Gatherer returns the registry the metrics were registered with.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// Push sends the current metric values to a Prometheus Pushgateway under the
// given job name. The loader is a batch job, so values would otherwise be lost
// when the process exits.
func (m *Metrics) Push(ctx context.Context, gatewayURL, job string) error {
	err := push.New(gatewayURL, job).
		Gatherer(m.registry).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("push metrics to %s: %w", gatewayURL, err)
	}
	return nil
}

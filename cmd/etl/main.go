// Command etl loads DWD open climate data for a station roster into a
// time-series sink.
//
// Usage:
//
//	go run ./cmd/etl -config config.yaml bootstrap|historical|tracking
//
// bootstrap (alias init) loads the multi-annual means and the recent 10-minute
// archives, historical loads every historical 10-minute archive, and tracking
// loads the current-day 10-minute archives. Each invocation runs one mode and
// exits.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/couchcryptid/dwd-climate-etl/internal/adapter/dwd"
	httpadapter "github.com/couchcryptid/dwd-climate-etl/internal/adapter/http"
	"github.com/couchcryptid/dwd-climate-etl/internal/adapter/influx"
	kafkaadapter "github.com/couchcryptid/dwd-climate-etl/internal/adapter/kafka"
	"github.com/couchcryptid/dwd-climate-etl/internal/config"
	"github.com/couchcryptid/dwd-climate-etl/internal/domain"
	"github.com/couchcryptid/dwd-climate-etl/internal/observability"
	"github.com/couchcryptid/dwd-climate-etl/internal/pipeline"
)

// sink is a point destination that holds connections.
type sink interface {
	pipeline.BatchLoader
	Close() error
}

func main() {
	if err := run(); err != nil {
		slog.Error("dwd etl failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-config path] bootstrap|historical|tracking\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		return errors.New("exactly one run mode is required")
	}
	mode, err := domain.ParseMode(flag.Arg(0))
	if err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	metrics := observability.NewMetrics()

	out := newSink(cfg, logger)
	defer func() {
		if err := out.Close(); err != nil {
			logger.Error("sink close error", "error", err)
		}
	}()

	client := dwd.NewClient(cfg.HTTPTimeout, logger)
	p := pipeline.New(client, out, domain.NewSelector(cfg.BaseURL), cfg.Stations, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if checker, ok := out.(interface{ CheckReadiness(context.Context) error }); ok {
		if err := checker.CheckReadiness(ctx); err != nil {
			return fmt.Errorf("sink not reachable: %w", err)
		}
	}

	var srv *httpadapter.Server
	if cfg.MetricsAddr != "" {
		srv = httpadapter.NewServer(cfg.MetricsAddr, p, p, metrics.Gatherer(), logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
	}

	logger.Info("starting dwd etl", "mode", mode, "sink", cfg.Sink, "stations", cfg.Stations.IDs())
	report, runErr := p.Run(ctx, mode)
	logReport(logger, report)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if cfg.PushgatewayURL != "" {
		if err := metrics.Push(shutdownCtx, cfg.PushgatewayURL, "dwd_etl_"+string(mode)); err != nil {
			logger.Error("metrics push failed", "error", err)
		}
	}
	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
	}

	if runErr != nil {
		return fmt.Errorf("%s run: %w", mode, runErr)
	}
	logger.Info("shutdown complete")
	return nil
}

func newSink(cfg *config.Config, logger *slog.Logger) sink {
	if cfg.Sink == config.SinkKafka {
		return kafkaadapter.NewWriter(cfg, logger)
	}
	return influx.NewWriter(cfg, logger)
}

func logReport(logger *slog.Logger, r pipeline.Report) {
	measurements := make([]string, 0, len(r.Points))
	for m := range r.Points {
		measurements = append(measurements, m)
	}
	sort.Strings(measurements)
	for _, m := range measurements {
		logger.Info("points written", "measurement", m, "points", r.Points[m])
	}
	logger.Info("run finished",
		"mode", r.Mode,
		"archives", r.Archives,
		"archives_failed", r.ArchivesFailed,
		"lines_skipped", r.LinesSkipped,
		"records_discarded", r.RecordsDiscarded,
		"points", r.TotalPoints(),
		"duration", r.FinishedAt.Sub(r.StartedAt),
	)
}

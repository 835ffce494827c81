package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/dwd-climate-etl/internal/domain"
	"github.com/couchcryptid/dwd-climate-etl/internal/observability"
)

// Extractor downloads remote files and lists remote directories.
type Extractor interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
	List(ctx context.Context, dirURL, prefix, suffix string) ([]string, error)
}

// BatchLoader writes points to the destination. Points with the same identity
// overwrite each other.
type BatchLoader interface {
	LoadBatch(ctx context.Context, points []domain.Point) error
}

// Pipeline orchestrates select, fetch, decode, build, and write for a run mode.
// Archives are processed one at a time.
type Pipeline struct {
	extractor Extractor
	loader    BatchLoader
	selector  domain.Selector
	roster    domain.Roster
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool

	mu   sync.Mutex
	last *Report
}

// New creates a Pipeline for roster reading through e and writing through l.
func New(e Extractor, l BatchLoader, sel domain.Selector, roster domain.Roster, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		extractor: e,
		loader:    l,
		selector:  sel,
		roster:    roster,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once the pipeline has written at least one batch.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not written any points yet")
	}
	return nil
}

// LastReport returns the report of the most recent run, if any.
func (p *Pipeline) LastReport() (Report, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		return Report{}, false
	}
	return p.last.clone(), true
}

// Run executes mode for every dataset. Transport and archive failures are
// logged and skipped; a sink failure or context cancellation stops the run and
// is returned. The report is returned in both cases.
func (p *Pipeline) Run(ctx context.Context, mode domain.Mode) (Report, error) {
	report := Report{Mode: mode, StartedAt: domain.Now(), Points: make(map[string]int)}
	p.logger.Info("pipeline started", "mode", mode, "stations", len(p.roster))
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	err := p.run(ctx, mode, &report)

	report.FinishedAt = domain.Now()
	if err != nil {
		report.Error = err.Error()
	} else {
		p.metrics.LastSuccess.Set(float64(report.FinishedAt.Unix()))
	}

	p.mu.Lock()
	r := report.clone()
	p.last = &r
	p.mu.Unlock()

	return report, err
}

func (p *Pipeline) run(ctx context.Context, mode domain.Mode, report *Report) error {
	for _, ds := range domain.Datasets {
		refs, err := p.plan(ctx, mode, ds)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.logger.Error("listing failed, skipping data type", "error", err, "data_type", ds.Type)
			p.metrics.ArchiveFailures.WithLabelValues(string(ds.Type), string(domain.ScopeHistorical), "list").Inc()
			report.ArchivesFailed++
			continue
		}
		p.logger.Info("archives selected", "data_type", ds.Type, "mode", mode, "archives", len(refs))

		for _, ref := range refs {
			if err := ctx.Err(); err != nil {
				p.logger.Info("pipeline stopping", "reason", err)
				return err
			}
			if err := p.processArchive(ctx, ref, report); err != nil {
				return err
			}
		}
	}
	return nil
}

// plan returns the archives mode needs for ds. Only historical mode touches
// the network here.
func (p *Pipeline) plan(ctx context.Context, mode domain.Mode, ds domain.Dataset) ([]domain.ArchiveRef, error) {
	switch mode {
	case domain.ModeBootstrap:
		return p.selector.Bootstrap(ds, p.roster), nil
	case domain.ModeTracking:
		return p.selector.Tracking(ds, p.roster), nil
	case domain.ModeHistorical:
		dir := p.selector.Dir(ds, domain.ScopeHistorical)
		names, err := p.extractor.List(ctx, dir, ds.HistoricalPrefix(), domain.HistoricalSuffix)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", dir, err)
		}
		refs := p.selector.MatchHistorical(ds, p.roster, names)
		for _, st := range p.roster {
			if !hasStation(refs, st.ID) {
				p.logger.Info("no historical archives for station", "station_id", st.ID, "data_type", ds.Type)
			}
		}
		return refs, nil
	}
	return nil, fmt.Errorf("unsupported mode %q", mode)
}

// processArchive handles one archive. It returns an error only when the run
// must stop.
func (p *Pipeline) processArchive(ctx context.Context, ref domain.ArchiveRef, report *Report) error {
	start := time.Now()
	log := p.logger.With("archive", ref.Name, "data_type", ref.DataType, "scope", ref.Scope)
	dataType, scope := string(ref.DataType), string(ref.Scope)

	data, err := p.extractor.Fetch(ctx, ref.URL)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Error("fetch failed, skipping archive", "error", err, "url", ref.URL)
		p.metrics.ArchiveFailures.WithLabelValues(dataType, scope, "fetch").Inc()
		report.ArchivesFailed++
		return nil
	}
	p.metrics.ArchivesFetched.WithLabelValues(dataType, scope).Inc()

	members, err := Unpack(ref, data)
	if err != nil {
		log.Error("unpack failed, skipping archive", "error", err, "url", ref.URL)
		p.metrics.ArchiveFailures.WithLabelValues(dataType, scope, "unzip").Inc()
		report.ArchivesFailed++
		return nil
	}

	var points []domain.Point
	for _, m := range members {
		res, err := Transform(ref, m.Text, p.roster)
		if err != nil {
			return err
		}
		p.reportLines(log, m.Name, res)
		report.LinesSkipped += len(res.Skipped)
		report.RecordsDiscarded += res.Discarded
		points = append(points, res.Points...)
	}
	report.Archives++

	if len(points) == 0 {
		log.Info("no points in archive")
		return nil
	}

	if err := p.loader.LoadBatch(ctx, points); err != nil {
		log.Error("load batch failed", "error", err, "points", len(points))
		return fmt.Errorf("write %s: %w", ref.Name, err)
	}

	for meas, n := range countByMeasurement(points) {
		report.Points[meas] += n
		p.metrics.PointsWritten.WithLabelValues(meas).Add(float64(n))
	}
	p.metrics.ArchiveDuration.WithLabelValues(scope).Observe(time.Since(start).Seconds())
	p.ready.Store(true)

	log.Info("archive written", "points", len(points), "duration", time.Since(start))
	return nil
}

func (p *Pipeline) reportLines(log *slog.Logger, member string, res Result) {
	for _, le := range res.Skipped {
		log.Warn("malformed line, skipping", "member", member, "line", le.Line, "text", le.Text, "error", le.Err)
	}
	if n := len(res.Skipped); n > 0 {
		p.metrics.LinesSkipped.WithLabelValues(res.Format).Add(float64(n))
	}
	if res.Discarded > 0 {
		p.metrics.RecordsDiscarded.WithLabelValues(res.Format).Add(float64(res.Discarded))
		log.Debug("records without values discarded", "member", member, "count", res.Discarded)
	}
}

func countByMeasurement(points []domain.Point) map[string]int {
	counts := make(map[string]int)
	for _, pt := range points {
		counts[pt.Measurement]++
	}
	return counts
}

func hasStation(refs []domain.ArchiveRef, id domain.StationID) bool {
	for _, r := range refs {
		if r.Station == id {
			return true
		}
	}
	return false
}

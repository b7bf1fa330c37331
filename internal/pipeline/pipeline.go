// Package pipeline orchestrates the scan-dedupe-enrich-load cycle over the
// configured coverage regions.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/traffic-incident-etl/internal/domain"
	"github.com/couchcryptid/traffic-incident-etl/internal/observability"
)

// Enricher produces the complete output record for one raw incident.
type Enricher interface {
	Enrich(ctx context.Context, incident domain.Incident, runID string) (domain.EnrichedIncident, error)
}

// Sink writes a batch of enriched incidents to a destination.
type Sink interface {
	LoadBatch(ctx context.Context, records []domain.EnrichedIncident) error
}

// resettable is implemented by sinks whose artifact should reflect only the
// latest scan (the results file). Checked before each rescan.
type resettable interface {
	Reset()
}

// Summary describes one completed scan cycle.
type Summary struct {
	RunID      string
	Fetched    int
	Duplicates int
	Skipped    int
	Written    int
	RiskLevels map[string]int
	Regions    map[string]int
	Duration   time.Duration
}

// Pipeline scans every coverage region for incidents, deduplicates across
// region overlaps, enriches each unique incident, and loads the records into
// the sinks.
type Pipeline struct {
	source       domain.IncidentSource
	enricher     Enricher
	sinks        []Sink
	regions      []string
	scanInterval time.Duration
	logger       *slog.Logger
	metrics      *observability.Metrics
	ready        atomic.Bool
}

// New creates a Pipeline. regions is the ordered list of bounding boxes to
// scan; a zero scanInterval means a single scan per Run.
func New(source domain.IncidentSource, enricher Enricher, sinks []Sink, regions []string, scanInterval time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		source:       source,
		enricher:     enricher,
		sinks:        sinks,
		regions:      regions,
		scanInterval: scanInterval,
		logger:       logger,
		metrics:      metrics,
	}
}

// CheckReadiness returns nil once the pipeline has completed at least one
// scan cycle, or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed a scan yet")
	}
	return nil
}

// Run executes scan cycles until the context is cancelled. With a zero scan
// interval it performs exactly one scan and returns.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started",
		"regions", len(p.regions),
		"scan_interval", p.scanInterval,
	)

	if _, err := p.RunScan(ctx); err != nil {
		return err
	}
	if p.scanInterval <= 0 {
		return nil
	}

	for {
		if !sleepWithContext(ctx, p.scanInterval) {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}
		p.resetSinks()
		if _, err := p.RunScan(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			p.logger.Error("scan cycle failed", "error", err)
		}
	}
}

// RunScan performs one complete scan-dedupe-enrich-load cycle and returns its
// summary.
func (p *Pipeline) RunScan(ctx context.Context) (Summary, error) {
	start := time.Now()
	runID := uuid.NewString()

	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	all, err := p.fetchAllRegions(ctx, runID)
	if err != nil {
		return Summary{}, err
	}
	p.metrics.IncidentsFetched.Add(float64(len(all)))

	unique := domain.Deduplicate(all)
	duplicates := len(all) - len(unique)
	p.metrics.DuplicatesDropped.Add(float64(duplicates))

	summary := Summary{
		RunID:      runID,
		Fetched:    len(all),
		Duplicates: duplicates,
		RiskLevels: make(map[string]int),
		Regions:    make(map[string]int),
	}

	records := make([]domain.EnrichedIncident, 0, len(unique))
	for _, incident := range unique {
		record, err := p.enricher.Enrich(ctx, incident, runID)
		if err != nil {
			p.logger.Warn("skipping incident", "error", err)
			p.metrics.IncidentsSkipped.Inc()
			summary.Skipped++
			continue
		}
		records = append(records, record)
		summary.RiskLevels[record.Risk.Level]++
		summary.Regions[record.Location.Region]++
	}

	if len(records) > 0 {
		for _, sink := range p.sinks {
			if err := sink.LoadBatch(ctx, records); err != nil {
				return Summary{}, fmt.Errorf("load batch: %w", err)
			}
		}
		p.metrics.RecordsWritten.Add(float64(len(records)))
	}
	summary.Written = len(records)
	summary.Duration = time.Since(start)

	p.metrics.ScanDuration.Observe(summary.Duration.Seconds())
	p.ready.Store(true)

	p.logger.Info("scan complete",
		"run_id", summary.RunID,
		"fetched", summary.Fetched,
		"duplicates", summary.Duplicates,
		"skipped", summary.Skipped,
		"written", summary.Written,
		"risk_levels", summary.RiskLevels,
		"regions", summary.Regions,
		"duration", summary.Duration,
	)
	return summary, nil
}

// fetchAllRegions scans every coverage box and tags each incident with its
// 1-based source region. A failing region is logged and skipped; only context
// cancellation aborts the scan.
func (p *Pipeline) fetchAllRegions(ctx context.Context, runID string) ([]domain.Incident, error) {
	var all []domain.Incident
	for i, bbox := range p.regions {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		incidents, err := p.source.FetchIncidents(ctx, bbox)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			p.logger.Error("region scan failed",
				"run_id", runID, "region", i+1, "bbox", bbox, "error", err)
			p.metrics.RegionScanErrors.Inc()
			continue
		}

		for j := range incidents {
			incidents[j].SourceRegion = i + 1
		}
		all = append(all, incidents...)
	}
	return all, nil
}

func (p *Pipeline) resetSinks() {
	for _, sink := range p.sinks {
		if r, ok := sink.(resettable); ok {
			r.Reset()
		}
	}
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

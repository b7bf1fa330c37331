package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// incident enrichment pipeline.
type Metrics struct {
	IncidentsFetched  prometheus.Counter
	DuplicatesDropped prometheus.Counter
	IncidentsSkipped  prometheus.Counter
	RecordsWritten    prometheus.Counter
	RegionScanErrors  prometheus.Counter
	PipelineRunning   prometheus.Gauge

	ScanDuration prometheus.Histogram

	// Enrichment metrics.
	UpstreamRequests *prometheus.CounterVec // labels: source={weather,road,place,incident}, outcome={success,error}
	CacheLookups     *prometheus.CounterVec // labels: extractor={weather,road}, result={hit,miss}
	RiskLevels       *prometheus.CounterVec // labels: level={Low,Medium,High}
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		IncidentsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "incident_etl",
			Name:      "incidents_fetched_total",
			Help:      "Total raw incidents fetched across all region scans.",
		}),
		DuplicatesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "incident_etl",
			Name:      "duplicates_dropped_total",
			Help:      "Total incidents dropped by structural deduplication.",
		}),
		IncidentsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "incident_etl",
			Name:      "incidents_skipped_total",
			Help:      "Total incidents skipped for malformed geometry.",
		}),
		RecordsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "incident_etl",
			Name:      "records_written_total",
			Help:      "Total enriched records written to the sinks.",
		}),
		RegionScanErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "incident_etl",
			Name:      "region_scan_errors_total",
			Help:      "Total region fetches that failed against the incident source.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "incident_etl",
			Name:      "pipeline_running",
			Help:      "1 when a scan cycle is active, 0 otherwise.",
		}),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "incident_etl",
			Name:      "scan_duration_seconds",
			Help:      "Duration of a complete scan-dedupe-enrich-load cycle.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "incident_etl",
			Name:      "upstream_requests_total",
			Help:      "Upstream collaborator requests by source and outcome.",
		}, []string{"source", "outcome"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "incident_etl",
			Name:      "cache_lookups_total",
			Help:      "Extractor cache lookups by extractor and result.",
		}, []string{"extractor", "result"}),
		RiskLevels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "incident_etl",
			Name:      "risk_levels_total",
			Help:      "Enriched records by assessed risk level.",
		}, []string{"level"}),
	}

	prometheus.MustRegister(
		m.IncidentsFetched,
		m.DuplicatesDropped,
		m.IncidentsSkipped,
		m.RecordsWritten,
		m.RegionScanErrors,
		m.PipelineRunning,
		m.ScanDuration,
		m.UpstreamRequests,
		m.CacheLookups,
		m.RiskLevels,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		IncidentsFetched:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "incident_etl", Name: "incidents_fetched_total"}),
		DuplicatesDropped: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "incident_etl", Name: "duplicates_dropped_total"}),
		IncidentsSkipped:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "incident_etl", Name: "incidents_skipped_total"}),
		RecordsWritten:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "incident_etl", Name: "records_written_total"}),
		RegionScanErrors:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "incident_etl", Name: "region_scan_errors_total"}),
		PipelineRunning:   prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "incident_etl", Name: "pipeline_running"}),
		ScanDuration:      prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "incident_etl", Name: "scan_duration_seconds"}),
		UpstreamRequests:  prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "incident_etl", Name: "upstream_requests_total"}, []string{"source", "outcome"}),
		CacheLookups:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "incident_etl", Name: "cache_lookups_total"}, []string{"extractor", "result"}),
		RiskLevels:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "incident_etl", Name: "risk_levels_total"}, []string{"level"}),
	}
}

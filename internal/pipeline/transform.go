package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/traffic-incident-etl/internal/domain"
	"github.com/couchcryptid/traffic-incident-etl/internal/features"
	"github.com/couchcryptid/traffic-incident-etl/internal/observability"
)

// IncidentEnricher implements Enricher: feature engineering followed by risk
// scoring and record assembly.
type IncidentEnricher struct {
	engine  *features.Engine
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewEnricher creates an IncidentEnricher around a feature engine.
func NewEnricher(engine *features.Engine, logger *slog.Logger, metrics *observability.Metrics) *IncidentEnricher {
	return &IncidentEnricher{
		engine:  engine,
		logger:  logger,
		metrics: metrics,
	}
}

// Enrich produces the complete output record for one incident. Incidents
// whose geometry yields no usable point are rejected with an error wrapping
// domain.ErrMalformedGeometry.
func (e *IncidentEnricher) Enrich(ctx context.Context, incident domain.Incident, runID string) (domain.EnrichedIncident, error) {
	lat, lon, err := incident.Geometry.FirstPoint()
	if err != nil {
		return domain.EnrichedIncident{}, fmt.Errorf("incident %s: %w", incident.Properties.ID, err)
	}

	feats := e.engine.Engineer(ctx, lat, lon, incident.Properties.StartTime, &incident)
	risk := domain.ScoreRisk(feats)
	e.metrics.RiskLevels.WithLabelValues(risk.Level).Inc()

	return domain.BuildRecord(incident, feats, risk, runID), nil
}

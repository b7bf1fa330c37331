package features

import (
	"context"

	"github.com/couchcryptid/traffic-incident-etl/internal/domain"
)

// daylight hours: lighting is Daylight for any hour in [6, 20] regardless of
// road infrastructure.
const (
	daylightStartHour = 6
	daylightEndHour   = 20
)

// Engine composes the three extractors plus incident-specific heuristics
// into one complete FeatureRecord per (location, time, incident) triple.
type Engine struct {
	weather  *WeatherExtractor
	road     *RoadExtractor
	temporal *TemporalExtractor
}

// NewEngine creates a feature engineering engine from its extractors.
func NewEngine(weather *WeatherExtractor, road *RoadExtractor, temporal *TemporalExtractor) *Engine {
	return &Engine{weather: weather, road: road, temporal: temporal}
}

// Engineer runs all three extractors unconditionally and merges their
// outputs with the engine-level fields. The incident may be nil (location
// and time only); timestamp may be empty (current time). The returned
// record is complete, every field populated, never partial.
func (e *Engine) Engineer(ctx context.Context, lat, lon float64, timestamp string, incident *domain.Incident) domain.FeatureRecord {
	weather := e.weather.Extract(ctx, lat, lon)
	temporal := e.temporal.Extract(timestamp)
	road := e.road.Extract(ctx, lat, lon)

	return domain.FeatureRecord{
		WeatherFeatures:  weather,
		RoadFeatures:     road,
		TemporalFeatures: temporal,

		AreaType:   e.road.ClassifyArea(ctx, lat, lon),
		Lat:        lat,
		Lon:        lon,
		PartyCount: estimateParties(incident),
		// Lighting is derived last: it depends on the temporal and road fields.
		Lighting: classifyLighting(temporal.Hour, road.Lit),
	}
}

// estimateParties estimates the number of parties involved from the
// incident's category code: category 1 (accident) typically involves two
// parties, anything else one. Without incident data, assume two.
func estimateParties(incident *domain.Incident) int {
	if incident == nil {
		return 2
	}
	if incident.Properties.IconCategory == 1 {
		return 2
	}
	return 1
}

// classifyLighting is a three-way decision tree, not independent flags:
// darkness requires both non-daylight hours and an unlit road.
func classifyLighting(hour int, roadLit string) string {
	switch {
	case hour >= daylightStartHour && hour <= daylightEndHour:
		return domain.LightingDaylight
	case roadLit == "yes":
		return domain.LightingArtificial
	default:
		return domain.LightingDarkness
	}
}

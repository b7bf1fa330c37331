// Package features engineers the ML feature set for an incident: weather,
// road-infrastructure, and temporal extractors composed by an engine that
// adds incident-specific heuristics.
package features

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/traffic-incident-etl/internal/cache"
	"github.com/couchcryptid/traffic-incident-etl/internal/domain"
	"github.com/couchcryptid/traffic-incident-etl/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Weather-code sets from the WMO weather interpretation codes used by the
// upstream forecast API. Anything not listed classifies as dry.
var (
	rainCodes = map[int]bool{61: true, 63: true, 65: true, 80: true, 81: true, 82: true}
	fogCodes  = map[int]bool{45: true, 48: true}
	snowCodes = map[int]bool{71: true, 73: true, 75: true, 77: true, 85: true, 86: true}
)

// isWetThreshold is the precipitation (mm) above which roads count as wet.
const isWetThreshold = 0.1

// WeatherExtractor maps coordinates to current weather attributes, caching
// results by coarse coordinate rounding so nearby incidents share one
// upstream call.
type WeatherExtractor struct {
	lookup  domain.WeatherLookup
	cache   *cache.TTL[domain.WeatherFeatures]
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewWeatherExtractor creates a weather extractor with its own cache.
// A nil clock defaults to real time.
func NewWeatherExtractor(lookup domain.WeatherLookup, cacheTimeout time.Duration, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *WeatherExtractor {
	return &WeatherExtractor{
		lookup:  lookup,
		cache:   cache.New[domain.WeatherFeatures](cacheTimeout, clock),
		logger:  logger,
		metrics: metrics,
	}
}

// Extract returns the weather features for a coordinate. Upstream failures
// yield the fixed default profile and are never cached, so a later call with
// the same key retries the upstream.
func (e *WeatherExtractor) Extract(ctx context.Context, lat, lon float64) domain.WeatherFeatures {
	// 4 decimals bounds cache cardinality while keeping ~11m precision.
	key := fmt.Sprintf("weather:%.4f_%.4f", lat, lon)

	if cached, ok := e.cache.Get(key); ok {
		e.metrics.CacheLookups.WithLabelValues("weather", "hit").Inc()
		return cached
	}
	e.metrics.CacheLookups.WithLabelValues("weather", "miss").Inc()

	obs, err := e.lookup.Current(ctx, lat, lon)
	if err != nil {
		e.logger.Warn("weather lookup failed, using default profile",
			"lat", lat, "lon", lon, "error", err)
		return domain.DefaultWeather()
	}

	feats := weatherFromObservation(obs)
	e.cache.Set(key, feats)
	return feats
}

// weatherFromObservation fills a WeatherFeatures from a possibly-partial
// observation, defaulting each missing field, then derives the condition
// classification and wetness flag.
func weatherFromObservation(obs domain.WeatherObservation) domain.WeatherFeatures {
	feats := domain.DefaultWeather()
	if obs.Temperature != nil {
		feats.Temperature = *obs.Temperature
	}
	if obs.Precipitation != nil {
		feats.Precipitation = *obs.Precipitation
	}
	if obs.WindSpeed != nil {
		feats.WindSpeed = *obs.WindSpeed
	}
	if obs.WeatherCode != nil {
		feats.WeatherCode = *obs.WeatherCode
	}
	feats.WeatherCondition = classifyWeatherCode(feats.WeatherCode)
	feats.IsWet = feats.Precipitation > isWetThreshold
	return feats
}

// classifyWeatherCode maps a numeric weather code to a condition category.
func classifyWeatherCode(code int) string {
	switch {
	case rainCodes[code]:
		return domain.ConditionRain
	case fogCodes[code]:
		return domain.ConditionFog
	case snowCodes[code]:
		return domain.ConditionSnow
	default:
		return domain.ConditionDry
	}
}

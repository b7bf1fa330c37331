package features

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/traffic-incident-etl/internal/cache"
	"github.com/couchcryptid/traffic-incident-etl/internal/domain"
	"github.com/couchcryptid/traffic-incident-etl/internal/observability"
	"github.com/jonboulle/clockwork"
)

const (
	// wayRadius is the search radius in meters for highway ways around an
	// incident point.
	wayRadius = 100

	// placeRadius is the search radius in meters for named places when
	// classifying urban vs rural.
	placeRadius = 2000
)

// roadTypeSpeeds substitutes a default speed limit when a way carries a
// highway tag but no parseable maxspeed. Unknown types keep the profile
// default of 50.
var roadTypeSpeeds = map[string]int{
	"motorway":      130,
	"trunk":         100,
	"primary":       80,
	"secondary":     80,
	"tertiary":      60,
	"residential":   30,
	"living_street": 15,
}

// RoadExtractor maps coordinates to road-infrastructure attributes and an
// urban/rural classification. Extraction results are cached; area
// classification is not.
type RoadExtractor struct {
	lookup  domain.RoadLookup
	cache   *cache.TTL[domain.RoadFeatures]
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewRoadExtractor creates a road extractor with its own cache, disjoint
// from the weather extractor's so keys can never collide across extractors.
func NewRoadExtractor(lookup domain.RoadLookup, cacheTimeout time.Duration, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *RoadExtractor {
	return &RoadExtractor{
		lookup:  lookup,
		cache:   cache.New[domain.RoadFeatures](cacheTimeout, clock),
		logger:  logger,
		metrics: metrics,
	}
}

// Extract returns the road features for a coordinate. The first returned
// highway way is taken as representative; this is imprecise near
// intersections but keeps query cost flat. Failures and empty results yield
// the default road profile and are never cached.
func (e *RoadExtractor) Extract(ctx context.Context, lat, lon float64) domain.RoadFeatures {
	// 3 decimals, coarser than weather: road attributes change less per
	// unit distance and the queries are costlier.
	key := fmt.Sprintf("road:%.3f_%.3f", lat, lon)

	if cached, ok := e.cache.Get(key); ok {
		e.metrics.CacheLookups.WithLabelValues("road", "hit").Inc()
		return cached
	}
	e.metrics.CacheLookups.WithLabelValues("road", "miss").Inc()

	elements, err := e.lookup.WaysAround(ctx, lat, lon, wayRadius)
	if err != nil {
		e.logger.Warn("road lookup failed, using default profile",
			"lat", lat, "lon", lon, "error", err)
		return domain.DefaultRoad()
	}

	if len(elements) == 0 {
		return domain.DefaultRoad()
	}

	feats := roadFromTags(elements[0].Tags)
	e.cache.Set(key, feats)
	return feats
}

// ClassifyArea reports whether the coordinate lies in an urban or rural
// area: any city/town place within placeRadius means urban. Fails closed to
// rural on any error. Not cached.
func (e *RoadExtractor) ClassifyArea(ctx context.Context, lat, lon float64) string {
	elements, err := e.lookup.PlacesAround(ctx, lat, lon, placeRadius)
	if err != nil {
		e.logger.Warn("place lookup failed, classifying as rural",
			"lat", lat, "lon", lon, "error", err)
		return domain.AreaRural
	}

	if len(elements) > 0 {
		return domain.AreaUrban
	}
	return domain.AreaRural
}

// roadFromTags reads the road profile from a way's tag set, starting from
// the default profile so parse failures leave prior defaults intact.
func roadFromTags(tags map[string]string) domain.RoadFeatures {
	feats := domain.DefaultRoad()

	speedParsed := false
	if maxspeed, ok := tags["maxspeed"]; ok {
		if v, err := parseSpeed(maxspeed); err == nil {
			feats.SpeedLimit = v
			speedParsed = true
		}
	}

	if highway, ok := tags["highway"]; ok {
		feats.RoadType = highway
		if !speedParsed {
			if v, ok := roadTypeSpeeds[highway]; ok {
				feats.SpeedLimit = v
			}
		}
	}

	if lanes, ok := tags["lanes"]; ok {
		if v, err := strconv.Atoi(strings.TrimSpace(lanes)); err == nil {
			feats.Lanes = v
		}
	}

	if surface, ok := tags["surface"]; ok {
		feats.Surface = surface
	}

	// lit never passes arbitrary tag text through: anything but "yes" is "no".
	if lit, ok := tags["lit"]; ok {
		if lit == "yes" {
			feats.Lit = "yes"
		} else {
			feats.Lit = "no"
		}
	}

	return feats
}

// parseSpeed parses a free-text maxspeed tag after stripping unit suffixes.
func parseSpeed(s string) (int, error) {
	s = strings.ReplaceAll(s, "mph", "")
	s = strings.ReplaceAll(s, "kmh", "")
	return strconv.Atoi(strings.TrimSpace(s))
}

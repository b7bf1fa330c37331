package domain

import "context"

// WeatherObservation is the current-conditions block returned by the weather
// collaborator. Fields are pointers because the upstream "current" block may
// be partial; a nil field takes its documented default at the extractor.
type WeatherObservation struct {
	Temperature   *float64
	Precipitation *float64
	WindSpeed     *float64
	WeatherCode   *int
}

// WeatherLookup fetches current weather for a coordinate.
type WeatherLookup interface {
	Current(ctx context.Context, lat, lon float64) (WeatherObservation, error)
}

// OSMElement is one element of a geospatial query result. Only the tag set
// is consumed by the extractors; presence alone is enough for place queries.
type OSMElement struct {
	Tags map[string]string `json:"tags"`
}

// RoadLookup queries road infrastructure and named places around a
// coordinate. Radii are in meters.
type RoadLookup interface {
	// WaysAround returns highway-tagged ways within radius of the point,
	// in upstream response order.
	WaysAround(ctx context.Context, lat, lon float64, radius int) ([]OSMElement, error)

	// PlacesAround returns city/town place elements within radius of the point.
	PlacesAround(ctx context.Context, lat, lon float64, radius int) ([]OSMElement, error)
}

// IncidentSource supplies raw incidents for a bounding box, given as
// "minLon,minLat,maxLon,maxLat".
type IncidentSource interface {
	FetchIncidents(ctx context.Context, bbox string) ([]Incident, error)
}

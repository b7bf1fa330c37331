package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedGeometry marks an incident whose geometry cannot yield a
// coordinate pair. Such incidents are skipped individually; the batch
// continues.
var ErrMalformedGeometry = errors.New("malformed incident geometry")

// Incident is a single raw traffic-incident report as returned by the
// incident source, consumed read-only. SourceRegion is assigned by the
// pipeline when the report is fetched (1-based coverage-box index).
type Incident struct {
	Type         string             `json:"type,omitempty"`
	Geometry     Geometry           `json:"geometry"`
	Properties   IncidentProperties `json:"properties"`
	SourceRegion int                `json:"source_region,omitempty"`
}

// IncidentProperties is the subset of the source's properties bag this
// pipeline consumes.
type IncidentProperties struct {
	ID           string `json:"id,omitempty"`
	IconCategory int    `json:"iconCategory"`
	StartTime    string `json:"startTime,omitempty"`
}

// Geometry is a GeoJSON geometry. Coordinates stay raw because the shape
// depends on Type: [lon, lat] for Point, [[lon, lat], ...] for LineString.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// FirstPoint returns the (lat, lon) of a Point geometry or the first vertex
// of a LineString, converting from GeoJSON [lon, lat] order.
func (g Geometry) FirstPoint() (lat, lon float64, err error) {
	pts, err := g.points()
	if err != nil {
		return 0, 0, err
	}
	return pts[0][1], pts[0][0], nil
}

// PointCount reports how many vertices the geometry holds, for output
// metadata. Malformed geometries count as zero.
func (g Geometry) PointCount() int {
	pts, err := g.points()
	if err != nil {
		return 0
	}
	return len(pts)
}

// points parses the raw coordinates into a non-empty list of [lon, lat]
// pairs, one for Point, all vertices for LineString.
func (g Geometry) points() ([][2]float64, error) {
	switch g.Type {
	case "Point":
		var pair []float64
		if err := json.Unmarshal(g.Coordinates, &pair); err != nil || len(pair) < 2 {
			return nil, ErrMalformedGeometry
		}
		return [][2]float64{{pair[0], pair[1]}}, nil
	case "LineString":
		var pairs [][]float64
		if err := json.Unmarshal(g.Coordinates, &pairs); err != nil || len(pairs) == 0 {
			return nil, ErrMalformedGeometry
		}
		pts := make([][2]float64, 0, len(pairs))
		for _, p := range pairs {
			if len(p) < 2 {
				return nil, ErrMalformedGeometry
			}
			pts = append(pts, [2]float64{p[0], p[1]})
		}
		return pts, nil
	default:
		return nil, ErrMalformedGeometry
	}
}

// DedupKey produces a deterministic structural fingerprint of the incident:
// a SHA-256 hash over every geometry coordinate and the icon category. Two
// incidents with the same key describe the same real-world event. Incidents
// whose geometry does not parse hash their raw coordinate bytes instead, so
// they still deduplicate against byte-identical reports.
func (i Incident) DedupKey() string {
	var sb strings.Builder
	pts, err := i.Geometry.points()
	if err != nil {
		sb.Write(i.Geometry.Coordinates)
	} else {
		for _, p := range pts {
			fmt.Fprintf(&sb, "%g,%g;", p[0], p[1])
		}
	}
	fmt.Fprintf(&sb, "|%d", i.Properties.IconCategory)

	hash := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(hash[:8])
}

// Deduplicate collapses repeated reports into unique incidents, preserving
// encounter order. The first incident seen per key wins; later duplicates
// are silently dropped, not merged.
func Deduplicate(incidents []Incident) []Incident {
	seen := make(map[string]struct{}, len(incidents))
	unique := make([]Incident, 0, len(incidents))
	for _, inc := range incidents {
		key := inc.DedupKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, inc)
	}
	return unique
}

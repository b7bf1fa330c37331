// Package file provides filesystem-backed adapters: a fixture incident
// source for offline runs and the results.json sink.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/couchcryptid/traffic-incident-etl/internal/domain"
)

// Source implements domain.IncidentSource from a JSON fixture file. The
// fixture holds either {"incidents":[...]} or a bare incident array; each
// FetchIncidents call returns the incidents whose first point falls inside
// the requested bounding box.
type Source struct {
	path   string
	logger *slog.Logger

	once      sync.Once
	incidents []domain.Incident
	loadErr   error
}

// NewSource creates a fixture-backed incident source.
func NewSource(path string, logger *slog.Logger) *Source {
	return &Source{path: path, logger: logger}
}

// FetchIncidents returns the fixture incidents inside bbox, given as
// "minLon,minLat,maxLon,maxLat". The fixture is read once and reused across
// regions.
func (s *Source) FetchIncidents(_ context.Context, bbox string) ([]domain.Incident, error) {
	minLon, minLat, maxLon, maxLat, err := parseBBox(bbox)
	if err != nil {
		return nil, err
	}

	s.once.Do(s.load)
	if s.loadErr != nil {
		return nil, s.loadErr
	}

	var matched []domain.Incident
	for _, incident := range s.incidents {
		lat, lon, err := incident.Geometry.FirstPoint()
		if err != nil {
			s.logger.Warn("fixture incident has malformed geometry, skipping",
				"incident_id", incident.Properties.ID, "error", err)
			continue
		}
		if lat >= minLat && lat <= maxLat && lon >= minLon && lon <= maxLon {
			matched = append(matched, incident)
		}
	}
	return matched, nil
}

func (s *Source) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		s.loadErr = fmt.Errorf("read fixture: %w", err)
		return
	}

	var wrapped struct {
		Incidents []domain.Incident `json:"incidents"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Incidents != nil {
		s.incidents = wrapped.Incidents
		return
	}

	var bare []domain.Incident
	if err := json.Unmarshal(data, &bare); err != nil {
		s.loadErr = fmt.Errorf("parse fixture: %w", err)
		return
	}
	s.incidents = bare
}

func parseBBox(bbox string) (minLon, minLat, maxLon, maxLat float64, err error) {
	parts := strings.Split(bbox, ",")
	if len(parts) != 4 {
		return 0, 0, 0, 0, fmt.Errorf("invalid bbox %q: want minLon,minLat,maxLon,maxLat", bbox)
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		vals[i], err = strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return 0, 0, 0, 0, fmt.Errorf("invalid bbox %q: %w", bbox, err)
		}
	}
	return vals[0], vals[1], vals[2], vals[3], nil
}

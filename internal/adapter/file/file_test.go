package file

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/traffic-incident-etl/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "incidents.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const fixtureJSON = `{"incidents":[
	{
		"type":"Feature",
		"geometry":{"type":"Point","coordinates":[4.9041,52.3676]},
		"properties":{"id":"ams-1","iconCategory":1,"startTime":"2025-01-15T14:30:00Z"}
	},
	{
		"type":"Feature",
		"geometry":{"type":"Point","coordinates":[4.4777,51.9244]},
		"properties":{"id":"rtm-1","iconCategory":8}
	},
	{
		"type":"Feature",
		"geometry":{"type":"Polygon","coordinates":[[[1,2],[3,4]]]},
		"properties":{"id":"bad-geom","iconCategory":1}
	}
]}`

func TestSource_FiltersByBoundingBox(t *testing.T) {
	src := NewSource(writeFixture(t, fixtureJSON), discardLogger())

	// Amsterdam box: only ams-1.
	incidents, err := src.FetchIncidents(context.Background(), "4.8,52.3,5.0,52.5")
	require.NoError(t, err)
	require.Len(t, incidents, 1)
	assert.Equal(t, "ams-1", incidents[0].Properties.ID)

	// Rotterdam box: only rtm-1.
	incidents, err = src.FetchIncidents(context.Background(), "4.4,51.9,4.6,52.0")
	require.NoError(t, err)
	require.Len(t, incidents, 1)
	assert.Equal(t, "rtm-1", incidents[0].Properties.ID)

	// Empty box.
	incidents, err = src.FetchIncidents(context.Background(), "6.0,53.0,6.1,53.1")
	require.NoError(t, err)
	assert.Empty(t, incidents)
}

func TestSource_BareArrayFixture(t *testing.T) {
	src := NewSource(writeFixture(t, `[
		{"geometry":{"type":"Point","coordinates":[4.9041,52.3676]},"properties":{"id":"ams-1","iconCategory":1}}
	]`), discardLogger())

	incidents, err := src.FetchIncidents(context.Background(), "4.8,52.3,5.0,52.5")
	require.NoError(t, err)
	require.Len(t, incidents, 1)
	assert.Equal(t, "ams-1", incidents[0].Properties.ID)
}

func TestSource_InvalidBBox(t *testing.T) {
	src := NewSource(writeFixture(t, fixtureJSON), discardLogger())

	_, err := src.FetchIncidents(context.Background(), "not-a-bbox")
	require.Error(t, err)
}

func TestSource_MissingFixture(t *testing.T) {
	src := NewSource(filepath.Join(t.TempDir(), "nope.json"), discardLogger())

	_, err := src.FetchIncidents(context.Background(), "4.8,52.3,5.0,52.5")
	require.Error(t, err)
}

func TestWriter_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "results.json")
	w := NewWriter(path, discardLogger())

	batch := []domain.EnrichedIncident{
		{Metadata: domain.IncidentMetadata{IncidentID: "inc-1"}, Risk: domain.RiskReport{Score: 6, Level: domain.RiskMedium}},
		{Metadata: domain.IncidentMetadata{IncidentID: "inc-2"}, Risk: domain.RiskReport{Score: 2, Level: domain.RiskLow}},
	}
	require.NoError(t, w.LoadBatch(context.Background(), batch))

	records, err := ReadResults(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "inc-1", records[0].Metadata.IncidentID)
	assert.Equal(t, domain.RiskMedium, records[0].Risk.Level)
}

func TestWriter_AccumulatesAcrossBatches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	w := NewWriter(path, discardLogger())

	require.NoError(t, w.LoadBatch(context.Background(), []domain.EnrichedIncident{
		{Metadata: domain.IncidentMetadata{IncidentID: "inc-1"}},
	}))
	require.NoError(t, w.LoadBatch(context.Background(), []domain.EnrichedIncident{
		{Metadata: domain.IncidentMetadata{IncidentID: "inc-2"}},
	}))

	records, err := ReadResults(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
}

func TestWriter_ResetStartsFreshArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	w := NewWriter(path, discardLogger())

	require.NoError(t, w.LoadBatch(context.Background(), []domain.EnrichedIncident{
		{Metadata: domain.IncidentMetadata{IncidentID: "old"}},
	}))
	w.Reset()
	require.NoError(t, w.LoadBatch(context.Background(), []domain.EnrichedIncident{
		{Metadata: domain.IncidentMetadata{IncidentID: "new"}},
	}))

	records, err := ReadResults(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "new", records[0].Metadata.IncidentID)
}

func TestWriter_EmptyBatchIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	w := NewWriter(path, discardLogger())

	require.NoError(t, w.LoadBatch(context.Background(), nil))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

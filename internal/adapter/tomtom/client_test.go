package tomtom

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/traffic-incident-etl/internal/observability"
)

const testKey = "test-key"

func testClient(baseURL string) *Client {
	c := NewClient(testKey, 5*time.Second,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		observability.NewMetricsForTesting())
	c.baseURL = baseURL
	return c
}

func TestClient_FetchIncidents_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, testKey, q.Get("key"))
		assert.Equal(t, "4.7,52.3,5.0,52.4", q.Get("bbox"))
		assert.Equal(t, fieldsParam, q.Get("fields"))
		assert.Equal(t, "Accident", q.Get("categoryFilter"))
		assert.Equal(t, "present", q.Get("timeValidityFilter"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"incidents":[
			{
				"type":"Feature",
				"geometry":{"type":"Point","coordinates":[4.9041,52.3676]},
				"properties":{"id":"inc-1","iconCategory":1,"startTime":"2025-01-15T14:30:00Z"}
			},
			{
				"type":"Feature",
				"geometry":{"type":"LineString","coordinates":[[4.90,52.36],[4.91,52.37]]},
				"properties":{"id":"inc-2","iconCategory":8}
			}
		]}`))
	}))
	defer srv.Close()

	incidents, err := testClient(srv.URL).FetchIncidents(context.Background(), "4.7,52.3,5.0,52.4")
	require.NoError(t, err)
	require.Len(t, incidents, 2)

	assert.Equal(t, "inc-1", incidents[0].Properties.ID)
	assert.Equal(t, 1, incidents[0].Properties.IconCategory)
	assert.Equal(t, "2025-01-15T14:30:00Z", incidents[0].Properties.StartTime)

	lat, lon, err := incidents[0].Geometry.FirstPoint()
	require.NoError(t, err)
	assert.Equal(t, 52.3676, lat)
	assert.Equal(t, 4.9041, lon)

	lat, lon, err = incidents[1].Geometry.FirstPoint()
	require.NoError(t, err)
	assert.Equal(t, 52.36, lat)
	assert.Equal(t, 4.90, lon)
}

func TestClient_FetchIncidents_EmptyBBox(t *testing.T) {
	_, err := testClient("http://unused").FetchIncidents(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bbox")
}

func TestClient_FetchIncidents_NoIncidents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"incidents":[]}`))
	}))
	defer srv.Close()

	incidents, err := testClient(srv.URL).FetchIncidents(context.Background(), "4.7,52.3,5.0,52.4")
	require.NoError(t, err)
	assert.Empty(t, incidents)
}

func TestClient_FetchIncidents_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"detailedError":{"message":"invalid key"}}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchIncidents(context.Background(), "4.7,52.3,5.0,52.4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestClient_FetchIncidents_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(testKey, 50*time.Millisecond,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		observability.NewMetricsForTesting())
	c.baseURL = srv.URL

	_, err := c.FetchIncidents(context.Background(), "4.7,52.3,5.0,52.4")
	require.Error(t, err)
}

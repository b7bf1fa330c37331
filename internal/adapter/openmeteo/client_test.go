package openmeteo

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/traffic-incident-etl/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(baseURL string) *Client {
	return NewClient(baseURL, 5*time.Second,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		observability.NewMetricsForTesting())
}

func TestClient_Current_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "52.3676", r.URL.Query().Get("latitude"))
		assert.Equal(t, "4.9041", r.URL.Query().Get("longitude"))
		assert.Equal(t, currentFields, r.URL.Query().Get("current"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"current":{"temperature_2m":2.5,"precipitation":1.2,"wind_speed_10m":35.0,"weathercode":63}}`))
	}))
	defer srv.Close()

	obs, err := testClient(srv.URL).Current(context.Background(), 52.3676, 4.9041)
	require.NoError(t, err)

	require.NotNil(t, obs.Temperature)
	assert.Equal(t, 2.5, *obs.Temperature)
	require.NotNil(t, obs.Precipitation)
	assert.Equal(t, 1.2, *obs.Precipitation)
	require.NotNil(t, obs.WindSpeed)
	assert.Equal(t, 35.0, *obs.WindSpeed)
	require.NotNil(t, obs.WeatherCode)
	assert.Equal(t, 63, *obs.WeatherCode)
}

func TestClient_Current_PartialResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"current":{"temperature_2m":21.0}}`))
	}))
	defer srv.Close()

	obs, err := testClient(srv.URL).Current(context.Background(), 52.3676, 4.9041)
	require.NoError(t, err)

	require.NotNil(t, obs.Temperature)
	assert.Equal(t, 21.0, *obs.Temperature)
	assert.Nil(t, obs.Precipitation)
	assert.Nil(t, obs.WindSpeed)
	assert.Nil(t, obs.WeatherCode)
}

func TestClient_Current_MissingCurrentBlock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"latitude":52.37}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Current(context.Background(), 52.3676, 4.9041)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "current")
}

func TestClient_Current_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"reason":"rate limited"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Current(context.Background(), 52.3676, 4.9041)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestClient_Current_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 50*time.Millisecond,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		observability.NewMetricsForTesting())

	_, err := c.Current(context.Background(), 52.3676, 4.9041)
	require.Error(t, err)
}

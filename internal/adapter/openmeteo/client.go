// Package openmeteo implements domain.WeatherLookup against the Open-Meteo
// forecast API.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/traffic-incident-etl/internal/domain"
	"github.com/couchcryptid/traffic-incident-etl/internal/observability"
)

// currentFields is the set of current-conditions variables requested per call.
const currentFields = "temperature_2m,precipitation,wind_speed_10m,weathercode"

// Client fetches current weather conditions from Open-Meteo.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates an Open-Meteo client. baseURL points at the forecast
// endpoint, e.g. https://api.open-meteo.com/v1/forecast.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		logger:  logger,
		metrics: metrics,
	}
}

// Current returns the current-conditions observation for a coordinate.
// Missing response fields stay nil so the caller can apply its defaults.
func (c *Client) Current(ctx context.Context, lat, lon float64) (domain.WeatherObservation, error) {
	params := url.Values{
		"latitude":  {strconv.FormatFloat(lat, 'f', -1, 64)},
		"longitude": {strconv.FormatFloat(lon, 'f', -1, 64)},
		"current":   {currentFields},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.WeatherObservation{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues("weather", "error").Inc()
		return domain.WeatherObservation{}, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.UpstreamRequests.WithLabelValues("weather", "error").Inc()
		body, _ := io.ReadAll(resp.Body)
		return domain.WeatherObservation{}, fmt.Errorf("weather API error: status %d: %s", resp.StatusCode, body)
	}

	var meteoResp response
	if err := json.NewDecoder(resp.Body).Decode(&meteoResp); err != nil {
		c.metrics.UpstreamRequests.WithLabelValues("weather", "error").Inc()
		return domain.WeatherObservation{}, fmt.Errorf("decode response: %w", err)
	}

	if meteoResp.Current == nil {
		c.metrics.UpstreamRequests.WithLabelValues("weather", "error").Inc()
		return domain.WeatherObservation{}, fmt.Errorf("weather response missing current block")
	}

	c.metrics.UpstreamRequests.WithLabelValues("weather", "success").Inc()
	return domain.WeatherObservation{
		Temperature:   meteoResp.Current.Temperature,
		Precipitation: meteoResp.Current.Precipitation,
		WindSpeed:     meteoResp.Current.WindSpeed,
		WeatherCode:   meteoResp.Current.WeatherCode,
	}, nil
}

// Open-Meteo API response types.

type response struct {
	Current *current `json:"current"`
}

type current struct {
	Temperature   *float64 `json:"temperature_2m"`
	Precipitation *float64 `json:"precipitation"`
	WindSpeed     *float64 `json:"wind_speed_10m"`
	WeatherCode   *int     `json:"weathercode"`
}

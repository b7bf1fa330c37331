// Package tomtom implements domain.IncidentSource against the TomTom Traffic
// Incident Details API.
package tomtom

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/traffic-incident-etl/internal/domain"
	"github.com/couchcryptid/traffic-incident-etl/internal/observability"
)

// fieldsParam selects the projection of the incident payload: geometry plus
// the properties the enrichment pipeline consumes.
const fieldsParam = "{incidents{type,geometry{type,coordinates},properties{id,iconCategory,startTime}}}"

// Client fetches accident incidents for a bounding box.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a TomTom incident client.
func NewClient(apiKey string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.tomtom.com/traffic/services/5/incidentDetails",
		logger:  logger,
		metrics: metrics,
	}
}

// FetchIncidents returns the currently active accident incidents inside bbox,
// given as "minLon,minLat,maxLon,maxLat".
func (c *Client) FetchIncidents(ctx context.Context, bbox string) ([]domain.Incident, error) {
	if bbox == "" {
		return nil, fmt.Errorf("bbox is required")
	}

	params := url.Values{
		"key":                {c.apiKey},
		"bbox":               {bbox},
		"fields":             {fieldsParam},
		"language":           {"en-GB"},
		"categoryFilter":     {"Accident"},
		"timeValidityFilter": {"present"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues("incident", "error").Inc()
		return nil, fmt.Errorf("incident request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.UpstreamRequests.WithLabelValues("incident", "error").Inc()
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("tomtom API error: status %d: %s", resp.StatusCode, body)
	}

	var tomtomResp response
	if err := json.NewDecoder(resp.Body).Decode(&tomtomResp); err != nil {
		c.metrics.UpstreamRequests.WithLabelValues("incident", "error").Inc()
		return nil, fmt.Errorf("decode response: %w", err)
	}

	c.metrics.UpstreamRequests.WithLabelValues("incident", "success").Inc()
	return tomtomResp.Incidents, nil
}

// TomTom API response types.

type response struct {
	Incidents []domain.Incident `json:"incidents"`
}

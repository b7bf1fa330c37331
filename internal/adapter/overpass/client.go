// Package overpass implements domain.RoadLookup against an Overpass API
// interpreter endpoint.
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/traffic-incident-etl/internal/domain"
	"github.com/couchcryptid/traffic-incident-etl/internal/observability"
)

// Client queries road infrastructure and named places via Overpass QL.
// Element order in the response is preserved; callers rely on it.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates an Overpass client. baseURL points at the interpreter
// endpoint, e.g. https://overpass-api.de/api/interpreter.
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

// WaysAround returns highway-tagged ways within radius meters of the point,
// in upstream response order.
func (c *Client) WaysAround(ctx context.Context, lat, lon float64, radius int) ([]domain.OSMElement, error) {
	query := fmt.Sprintf(`[out:json][timeout:10];
(
  way(around:%d,%f,%f)["highway"];
);
out geom;`, radius, lat, lon)

	return c.runQuery(ctx, query, "road")
}

// PlacesAround returns city and town place elements within radius meters of
// the point. Only element presence matters to callers.
func (c *Client) PlacesAround(ctx context.Context, lat, lon float64, radius int) ([]domain.OSMElement, error) {
	query := fmt.Sprintf(`[out:json][timeout:5];
(
  rel(around:%d,%f,%f)["place"~"city|town"];
  way(around:%d,%f,%f)["place"~"city|town"];
);
out;`, radius, lat, lon, radius, lat, lon)

	return c.runQuery(ctx, query, "place")
}

func (c *Client) runQuery(ctx context.Context, query, source string) ([]domain.OSMElement, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(query))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(source, "error").Inc()
		return nil, fmt.Errorf("%s query: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.UpstreamRequests.WithLabelValues(source, "error").Inc()
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("overpass API error: status %d: %s", resp.StatusCode, body)
	}

	var overpassResp response
	if err := json.NewDecoder(resp.Body).Decode(&overpassResp); err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(source, "error").Inc()
		return nil, fmt.Errorf("decode response: %w", err)
	}

	c.metrics.UpstreamRequests.WithLabelValues(source, "success").Inc()
	return overpassResp.Elements, nil
}

// Overpass API response types.

type response struct {
	Elements []domain.OSMElement `json:"elements"`
}

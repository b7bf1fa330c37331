package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// defaultCoverageBoxes are the 16 bounding boxes that tile the Netherlands,
// each "minLon,minLat,maxLon,maxLat".
var defaultCoverageBoxes = []string{
	"3.2,50.7,4.0,51.3", "4.0,50.7,4.8,51.3", "4.8,50.7,5.6,51.3", "5.6,50.7,6.1,51.3",
	"3.2,51.3,4.0,51.9", "4.0,51.3,4.8,51.9", "4.8,51.3,5.6,51.9", "5.6,51.3,6.1,51.9",
	"3.2,51.9,4.0,52.5", "4.0,51.9,4.8,52.5", "4.8,51.9,5.6,52.5", "5.6,51.9,6.1,52.5",
	"3.2,52.5,4.0,53.1", "4.0,52.5,4.8,53.1", "4.8,52.5,5.6,53.1", "5.6,52.5,6.1,53.1",
}

// Config holds all service settings, populated from environment variables.
// It is constructed once at process start and passed into each component;
// there is no ambient global configuration state.
type Config struct {
	// Incident source. The live API is used when an API key is set;
	// otherwise IncidentFixture must point at a fixture file.
	TomTomAPIKey    string
	TomTomEnabled   bool
	IncidentFixture string
	CoverageBoxes   []string

	// Upstream enrichment collaborators.
	WeatherURL     string
	OverpassURL    string
	RequestTimeout time.Duration
	CacheTimeout   time.Duration

	// Sinks.
	OutputPath     string
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string

	// Service.
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	ScanInterval    time.Duration // 0 means scan once and exit
}

// Load reads configuration from environment variables, applying defaults
// where unset, and validates the result.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("TOMTOM_API_KEY", "")
	v.SetDefault("TOMTOM_ENABLED", "")
	v.SetDefault("INCIDENT_FIXTURE", "")
	v.SetDefault("COVERAGE_BOXES", "")
	v.SetDefault("WEATHER_API_URL", "https://api.open-meteo.com/v1/forecast")
	v.SetDefault("OSM_OVERPASS_URL", "https://overpass-api.de/api/interpreter")
	v.SetDefault("REQUEST_TIMEOUT", "10s")
	v.SetDefault("CACHE_TIMEOUT", "10m")
	v.SetDefault("OUTPUT_PATH", "output/results.json")
	v.SetDefault("KAFKA_ENABLED", "false")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_SINK_TOPIC", "enriched-incidents")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("SCAN_INTERVAL", "0")

	apiKey := v.GetString("TOMTOM_API_KEY")
	tomtomEnabled := apiKey != ""
	if s := v.GetString("TOMTOM_ENABLED"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, errors.New("invalid TOMTOM_ENABLED")
		}
		tomtomEnabled = b
	}

	requestTimeout := v.GetDuration("REQUEST_TIMEOUT")
	if requestTimeout <= 0 {
		return nil, errors.New("invalid REQUEST_TIMEOUT")
	}
	cacheTimeout := v.GetDuration("CACHE_TIMEOUT")
	if cacheTimeout <= 0 {
		return nil, errors.New("invalid CACHE_TIMEOUT")
	}
	shutdownTimeout := v.GetDuration("SHUTDOWN_TIMEOUT")
	if shutdownTimeout <= 0 {
		return nil, errors.New("invalid SHUTDOWN_TIMEOUT")
	}
	scanInterval := v.GetDuration("SCAN_INTERVAL")
	if scanInterval < 0 {
		return nil, errors.New("invalid SCAN_INTERVAL")
	}

	boxes := defaultCoverageBoxes
	if s := v.GetString("COVERAGE_BOXES"); s != "" {
		boxes = splitAndTrim(s, ";")
	}
	for _, box := range boxes {
		if err := validateBox(box); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		TomTomAPIKey:    apiKey,
		TomTomEnabled:   tomtomEnabled,
		IncidentFixture: v.GetString("INCIDENT_FIXTURE"),
		CoverageBoxes:   boxes,
		WeatherURL:      v.GetString("WEATHER_API_URL"),
		OverpassURL:     v.GetString("OSM_OVERPASS_URL"),
		RequestTimeout:  requestTimeout,
		CacheTimeout:    cacheTimeout,
		OutputPath:      v.GetString("OUTPUT_PATH"),
		KafkaEnabled:    v.GetBool("KAFKA_ENABLED"),
		KafkaBrokers:    splitAndTrim(v.GetString("KAFKA_BROKERS"), ","),
		KafkaSinkTopic:  v.GetString("KAFKA_SINK_TOPIC"),
		HTTPAddr:        v.GetString("HTTP_ADDR"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogFormat:       v.GetString("LOG_FORMAT"),
		ShutdownTimeout: shutdownTimeout,
		ScanInterval:    scanInterval,
	}

	if cfg.TomTomEnabled && cfg.TomTomAPIKey == "" {
		return nil, errors.New("TOMTOM_ENABLED is true but TOMTOM_API_KEY is not set")
	}
	if !cfg.TomTomEnabled && cfg.IncidentFixture == "" {
		return nil, errors.New("no incident source: set TOMTOM_API_KEY or INCIDENT_FIXTURE")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.OutputPath == "" && !cfg.KafkaEnabled {
		return nil, errors.New("no sink: set OUTPUT_PATH or enable Kafka")
	}

	return cfg, nil
}

// validateBox checks a "minLon,minLat,maxLon,maxLat" bounding box string.
func validateBox(box string) error {
	parts := strings.Split(box, ",")
	if len(parts) != 4 {
		return fmt.Errorf("invalid coverage box %q: want minLon,minLat,maxLon,maxLat", box)
	}
	for _, p := range parts {
		if _, err := strconv.ParseFloat(strings.TrimSpace(p), 64); err != nil {
			return fmt.Errorf("invalid coverage box %q: %w", box, err)
		}
	}
	return nil
}

func splitAndTrim(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

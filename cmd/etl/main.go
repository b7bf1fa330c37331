package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	fileadapter "github.com/couchcryptid/traffic-incident-etl/internal/adapter/file"
	httpadapter "github.com/couchcryptid/traffic-incident-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/traffic-incident-etl/internal/adapter/kafka"
	"github.com/couchcryptid/traffic-incident-etl/internal/adapter/openmeteo"
	"github.com/couchcryptid/traffic-incident-etl/internal/adapter/overpass"
	"github.com/couchcryptid/traffic-incident-etl/internal/adapter/tomtom"
	"github.com/couchcryptid/traffic-incident-etl/internal/config"
	"github.com/couchcryptid/traffic-incident-etl/internal/domain"
	"github.com/couchcryptid/traffic-incident-etl/internal/features"
	"github.com/couchcryptid/traffic-incident-etl/internal/observability"
	"github.com/couchcryptid/traffic-incident-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Incident source: live TomTom API when enabled, fixture file otherwise.
	var source domain.IncidentSource
	if cfg.TomTomEnabled {
		source = tomtom.NewClient(cfg.TomTomAPIKey, cfg.RequestTimeout, logger, metrics)
		logger.Info("incident source: tomtom", "regions", len(cfg.CoverageBoxes))
	} else {
		source = fileadapter.NewSource(cfg.IncidentFixture, logger)
		logger.Info("incident source: fixture", "path", cfg.IncidentFixture)
	}

	weatherClient := openmeteo.NewClient(cfg.WeatherURL, cfg.RequestTimeout, logger, metrics)
	roadClient := overpass.NewClient(cfg.OverpassURL, cfg.RequestTimeout, logger, metrics)

	engine := features.NewEngine(
		features.NewWeatherExtractor(weatherClient, cfg.CacheTimeout, nil, logger, metrics),
		features.NewRoadExtractor(roadClient, cfg.CacheTimeout, nil, logger, metrics),
		features.NewTemporalExtractor(nil),
	)
	enricher := pipeline.NewEnricher(engine, logger, metrics)

	var sinks []pipeline.Sink
	if cfg.OutputPath != "" {
		sinks = append(sinks, fileadapter.NewWriter(cfg.OutputPath, logger))
	}
	var kafkaWriter *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		kafkaWriter = kafkaadapter.NewWriter(cfg, logger)
		sinks = append(sinks, kafkaWriter)
		logger.Info("kafka sink enabled", "topic", cfg.KafkaSinkTopic, "brokers", cfg.KafkaBrokers)
	}

	p := pipeline.New(source, enricher, sinks, cfg.CoverageBoxes, cfg.ScanInterval, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Run the pipeline. With a zero scan interval this is a single scan;
	// otherwise it rescans until signalled.
	pipelineDone := make(chan error, 1)
	go func() {
		pipelineDone <- p.Run(ctx)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down", "reason", "signal")
	case err := <-pipelineDone:
		if err != nil {
			logger.Error("pipeline error", "error", err)
		}
		logger.Info("shutting down", "reason", "pipeline finished")
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

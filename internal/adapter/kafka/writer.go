// Package kafka publishes enriched incidents to a Kafka topic for downstream
// consumers.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/traffic-incident-etl/internal/config"
	"github.com/couchcryptid/traffic-incident-etl/internal/domain"
)

// Writer produces enriched incidents to the sink topic.
// It implements pipeline.Sink.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes enriched incidents in a single
// WriteMessages call. Messages are keyed by incident ID so re-scans of the
// same incident land on the same partition.
func (w *Writer) LoadBatch(ctx context.Context, records []domain.EnrichedIncident) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := serializeToMessage(records[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an enriched incident into a Kafka message.
func serializeToMessage(record domain.EnrichedIncident) (kafkago.Message, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize enriched incident: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(record.Metadata.IncidentID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "risk_level", Value: []byte(record.Risk.Level)},
			{Key: "processed_at", Value: []byte(record.ProcessedAt.Format(time.RFC3339))},
		},
	}, nil
}

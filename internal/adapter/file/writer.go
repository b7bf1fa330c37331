package file

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/couchcryptid/traffic-incident-etl/internal/domain"
)

// Writer accumulates enriched incidents and persists them as a pretty-printed
// JSON array. It implements pipeline.Sink. The file is rewritten in full on
// every batch so a crash mid-run leaves the previous complete artifact intact.
type Writer struct {
	path   string
	logger *slog.Logger

	mu      sync.Mutex
	records []domain.EnrichedIncident
}

// NewWriter creates a results file sink.
func NewWriter(path string, logger *slog.Logger) *Writer {
	return &Writer{path: path, logger: logger}
}

// LoadBatch appends the records and rewrites the results file atomically.
func (w *Writer) LoadBatch(_ context.Context, records []domain.EnrichedIncident) error {
	if len(records) == 0 {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.records = append(w.records, records...)
	if err := w.flush(); err != nil {
		return err
	}

	w.logger.Info("results written", "path", w.path, "total_records", len(w.records))
	return nil
}

// Reset clears the accumulated records so the next scan cycle starts a fresh
// artifact.
func (w *Writer) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.records = nil
}

// flush writes the full record set via a temp file and rename.
func (w *Writer) flush() error {
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	data, err := json.MarshalIndent(w.records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".results-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write results: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), w.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace results file: %w", err)
	}
	return nil
}

// ReadResults loads a results file written by Writer.
func ReadResults(path string) ([]domain.EnrichedIncident, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	var records []domain.EnrichedIncident
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	return records, nil
}

package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// Source provides raw, untyped records to the pipeline's extract stage.
type Source interface {
	// Extract obtains the raw records for one pipeline run.
	// Returns an error if the source is missing or unreadable.
	Extract(ctx context.Context) ([]map[string]any, error)
}

// FileSource reads raw records from a JSON array file.
type FileSource struct {
	Path string
}

var _ Source = (*FileSource)(nil)

// NewFileSource creates a source reading from the given path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Extract reads and decodes the file.
func (f *FileSource) Extract(ctx context.Context) ([]map[string]any, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrSourceUnavailable, f.Path, err)
	}

	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %w", ErrSourceUnavailable, f.Path, err)
	}
	return records, nil
}

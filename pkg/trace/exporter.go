package trace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrExporterClosed is returned by Export after Close.
var ErrExporterClosed = errors.New("exporter closed")

// FileExporter appends trace records to a JSON Lines file.
type FileExporter struct {
	filePath string
	file     *os.File
	encoder  *json.Encoder
	mu       sync.Mutex
	closed   bool
}

var _ Exporter = (*FileExporter)(nil)

// NewFileExporter opens filePath for append, creating parent directories.
func NewFileExporter(filePath string) (*FileExporter, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("create trace directory: %w", err)
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}

	return &FileExporter{
		filePath: filePath,
		file:     file,
		encoder:  json.NewEncoder(file),
	}, nil
}

// Export writes record as one JSON line.
func (fe *FileExporter) Export(ctx context.Context, record *TraceRecord) error {
	fe.mu.Lock()
	defer fe.mu.Unlock()

	if fe.closed {
		return ErrExporterClosed
	}
	if err := fe.encoder.Encode(record); err != nil {
		return fmt.Errorf("encode trace record: %w", err)
	}
	return nil
}

// Close syncs and closes the file. It is safe to call twice.
func (fe *FileExporter) Close() error {
	fe.mu.Lock()
	defer fe.mu.Unlock()

	if fe.closed {
		return nil
	}
	fe.closed = true

	if err := fe.file.Sync(); err != nil {
		fe.file.Close()
		return fmt.Errorf("sync trace file: %w", err)
	}
	return fe.file.Close()
}

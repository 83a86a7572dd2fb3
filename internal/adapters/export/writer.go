package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mikey/llm-email-assistant/internal/core"
	"go.uber.org/zap"
)

// WriterExporter prints the finalized text to a stream
type WriterExporter struct {
	w      io.Writer
	logger *zap.Logger
}

// NewWriterExporter creates an exporter writing to w
func NewWriterExporter(w io.Writer, logger *zap.Logger) *WriterExporter {
	return &WriterExporter{w: w, logger: logger}
}

// Name implements core.Exporter
func (e *WriterExporter) Name() string {
	return "stdout"
}

// Export implements core.Exporter
func (e *WriterExporter) Export(ctx context.Context, email *core.OutgoingEmail) error {
	if _, err := fmt.Fprintln(e.w, email.Text); err != nil {
		return fmt.Errorf("failed to write email: %w", err)
	}
	return nil
}

// FileExporter writes the finalized text to a file, replacing it
type FileExporter struct {
	path   string
	logger *zap.Logger
}

// NewFileExporter creates an exporter writing to path
func NewFileExporter(path string, logger *zap.Logger) *FileExporter {
	return &FileExporter{path: path, logger: logger}
}

// Name implements core.Exporter
func (e *FileExporter) Name() string {
	return "file " + e.path
}

// Export implements core.Exporter
func (e *FileExporter) Export(ctx context.Context, email *core.OutgoingEmail) error {
	if err := os.MkdirAll(filepath.Dir(e.path), 0700); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := os.WriteFile(e.path, []byte(email.Text+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to write email file: %w", err)
	}

	e.logger.Info("Finalized email written",
		zap.String("path", e.path),
		zap.String("session_id", email.SessionID))
	return nil
}

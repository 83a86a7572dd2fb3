package factory

import (
	"fmt"
	"io"
	"os"

	"github.com/mikey/llm-email-assistant/internal/adapters/export"
	"github.com/mikey/llm-email-assistant/internal/config"
	"github.com/mikey/llm-email-assistant/internal/core"
	"go.uber.org/zap"
)

// ExportFactory creates exporters based on configuration
type ExportFactory struct {
	cfg    *config.Config
	logger *zap.Logger
	stdout io.Writer
}

// NewExportFactory creates a new export factory
func NewExportFactory(cfg *config.Config, logger *zap.Logger) *ExportFactory {
	return &ExportFactory{
		cfg:    cfg,
		logger: logger,
		stdout: os.Stdout,
	}
}

// CreateExporter creates the exporter named by export.type
func (f *ExportFactory) CreateExporter() (core.Exporter, error) {
	exportCfg, err := f.cfg.GetExport()
	if err != nil {
		return nil, err
	}

	switch exportCfg.Type {
	case "clipboard", "":
		return export.NewClipboardExporter(f.logger), nil
	case "stdout":
		return export.NewWriterExporter(f.stdout, f.logger), nil
	case "file":
		if exportCfg.FilePath == "" {
			return nil, fmt.Errorf("export.file_path is required for the file exporter")
		}
		return export.NewFileExporter(exportCfg.FilePath, f.logger), nil
	case "smtp":
		return export.NewSMTPExporter(exportCfg.SMTP, f.logger)
	case "kafka":
		return export.NewKafkaExporter(exportCfg.Kafka, f.logger)
	default:
		return nil, fmt.Errorf("unsupported export type: %s", exportCfg.Type)
	}
}

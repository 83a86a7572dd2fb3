package export

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/mikey/llm-email-assistant/internal/core"
	"go.uber.org/zap"
)

// CommandFunc builds the process that receives the text on stdin
type CommandFunc func(ctx context.Context) (*exec.Cmd, error)

// ClipboardExporter copies the finalized text to the system clipboard
type ClipboardExporter struct {
	command CommandFunc
	logger  *zap.Logger
}

// NewClipboardExporter creates an exporter using the platform clipboard utility
func NewClipboardExporter(logger *zap.Logger) *ClipboardExporter {
	return NewClipboardExporterWithCommand(clipboardCommand, logger)
}

// NewClipboardExporterWithCommand creates an exporter piping into a custom command
func NewClipboardExporterWithCommand(command CommandFunc, logger *zap.Logger) *ClipboardExporter {
	return &ClipboardExporter{
		command: command,
		logger:  logger,
	}
}

// Name implements core.Exporter
func (e *ClipboardExporter) Name() string {
	return "clipboard"
}

// Export implements core.Exporter
func (e *ClipboardExporter) Export(ctx context.Context, email *core.OutgoingEmail) error {
	cmd, err := e.command(ctx)
	if err != nil {
		return err
	}

	cmd.Stdin = strings.NewReader(email.Text)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w: %s", err, strings.TrimSpace(string(out)))
	}

	e.logger.Debug("Copied finalized email to clipboard",
		zap.String("session_id", email.SessionID),
		zap.Int("length", len(email.Text)))
	return nil
}

// clipboardCommand picks pbcopy, xclip, xsel or clip for the running platform
func clipboardCommand(ctx context.Context) (*exec.Cmd, error) {
	switch runtime.GOOS {
	case "darwin":
		return exec.CommandContext(ctx, "pbcopy"), nil
	case "windows":
		return exec.CommandContext(ctx, "clip"), nil
	case "linux", "freebsd", "openbsd", "netbsd":
		if _, err := exec.LookPath("wl-copy"); err == nil {
			return exec.CommandContext(ctx, "wl-copy"), nil
		}
		if _, err := exec.LookPath("xclip"); err == nil {
			return exec.CommandContext(ctx, "xclip", "-selection", "clipboard"), nil
		}
		if _, err := exec.LookPath("xsel"); err == nil {
			return exec.CommandContext(ctx, "xsel", "--clipboard", "--input"), nil
		}
		return nil, fmt.Errorf("no clipboard utility found (wl-copy, xclip or xsel required)")
	default:
		return nil, fmt.Errorf("clipboard not supported on platform: %s", runtime.GOOS)
	}
}

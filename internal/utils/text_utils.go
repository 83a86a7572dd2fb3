package utils

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// truncationMarker is appended to email text cut down to the prompt budget
const truncationMarker = "\n[... Email truncated to fit the analysis budget ...]"

// TextProcessor prepares pasted email text before it is sent to a model
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TextProcessor{
		logger: logger,
	}
}

// NormalizeLineEndings converts CRLF and lone CR line breaks to LF
func (tp *TextProcessor) NormalizeLineEndings(text string) string {
	if !strings.Contains(text, "\r") {
		return text
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// SanitizeUTF8 drops invalid UTF-8 sequences and composes the text into NFC
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	sanitized := text
	if !utf8.ValidString(sanitized) {
		sanitized = strings.ToValidUTF8(sanitized, "")
		tp.logger.Debug("Dropped invalid UTF-8 from email text",
			zap.Int("original_size", len(text)),
			zap.Int("sanitized_size", len(sanitized)))
	}
	return norm.NFC.String(sanitized)
}

// TruncateText cuts text to at most maxSize bytes on a rune boundary.
// A non-positive maxSize disables truncation.
func (tp *TextProcessor) TruncateText(text string, maxSize int) string {
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	truncated := text[:maxSize]
	for len(truncated) > 0 && !utf8.ValidString(truncated) {
		truncated = truncated[:len(truncated)-1]
	}

	tp.logger.Debug("Email text truncated",
		zap.Int("original_size", len(text)),
		zap.Int("truncated_size", len(truncated)),
		zap.Int("max_size", maxSize))

	return truncated + truncationMarker
}

// ProcessText normalizes, sanitizes and truncates text in one operation
func (tp *TextProcessor) ProcessText(text string, maxSize int) string {
	text = tp.NormalizeLineEndings(text)
	text = tp.SanitizeUTF8(text)
	return tp.TruncateText(strings.TrimSpace(text), maxSize)
}

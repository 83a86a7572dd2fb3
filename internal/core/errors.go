package core

import (
	"errors"
	"fmt"
)

const (
	// AnalysisFallbackText is shown in place of an analysis that failed
	AnalysisFallbackText = "Error analyzing content"
	// GenerationFallbackText is shown in place of a draft that failed
	GenerationFallbackText = "Error generating response"
)

// ValidationError reports user input that failed a precondition
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// NotFoundError reports a signature name absent from the store
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("signature '%s' not found", e.Name)
}

// AnalysisError reports a failed or timed out analysis call
type AnalysisError struct {
	Err error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("an error occurred while analyzing email content: %v", e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// GenerationError reports a failed or timed out reply generation call
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("an error occurred while generating the email response: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// StorageReadError reports a signature backend that could not be read or parsed
type StorageReadError struct {
	Err error
}

func (e *StorageReadError) Error() string {
	return fmt.Sprintf("failed to read signatures: %v", e.Err)
}

func (e *StorageReadError) Unwrap() error { return e.Err }

// StorageWriteError reports a signature backend that rejected a write
type StorageWriteError struct {
	Err error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("failed to save signatures: %v", e.Err)
}

func (e *StorageWriteError) Unwrap() error { return e.Err }

// TransitionError reports an action that is not valid in the session's state
type TransitionError struct {
	Action string
	From   State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s while session is %s", e.Action, e.From)
}

// ExportError reports a finalized email that could not be handed off
type ExportError struct {
	Target string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("failed to export email to %s: %v", e.Target, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// IsRetryable reports whether repeating the same action may succeed
func IsRetryable(err error) bool {
	var analysisErr *AnalysisError
	var generationErr *GenerationError
	var writeErr *StorageWriteError
	var exportErr *ExportError
	return errors.As(err, &analysisErr) ||
		errors.As(err, &generationErr) ||
		errors.As(err, &writeErr) ||
		errors.As(err, &exportErr)
}

// IsDegrading reports whether err puts the signature feature into its
// empty, read-only fallback mode
func IsDegrading(err error) bool {
	var readErr *StorageReadError
	return errors.As(err, &readErr)
}

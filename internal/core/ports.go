package core

import (
	"context"
)

// LLMClient defines the interface for interacting with LLM services
type LLMClient interface {
	// Complete sends one system instruction and one user message and returns
	// the generated text
	Complete(ctx context.Context, req *CompletionRequest) (*Completion, error)
}

// EmailAnalyzer extracts intent, urgency and sentiment from an email
type EmailAnalyzer interface {
	Analyze(ctx context.Context, emailText string) (*AnalysisResult, error)
}

// ResponseGenerator drafts a reply from an analysis in the requested tone
type ResponseGenerator interface {
	Generate(ctx context.Context, analysisText string, tone Tone) (*DraftResponse, error)
}

// SignatureRepository persists the whole signature mapping
type SignatureRepository interface {
	// Load returns the stored mapping. A missing backing store is an empty
	// mapping, not an error.
	Load(ctx context.Context) (map[string]string, error)

	// Save overwrites the stored mapping with signatures
	Save(ctx context.Context, signatures map[string]string) error
}

// Exporter hands a finalized email to something outside the session
type Exporter interface {
	// Name identifies the export target in messages and logs
	Name() string

	Export(ctx context.Context, email *OutgoingEmail) error
}

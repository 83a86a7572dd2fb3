package core

import (
	"strings"
	"time"
)

// Email represents a received email as pasted or loaded by the user
type Email struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// Sentiment is the coarse label reported by the analysis model
type Sentiment struct {
	Label string
}

// AnalysisResult represents the outcome of analyzing one email
type AnalysisResult struct {
	// Sentiment is nil when the model output carried no usable sentiment line
	Sentiment    *Sentiment
	AnalysisText string
	Model        string
	AnalyzedAt   time.Time
}

// Tone is the style requested for a generated reply
type Tone string

const (
	ToneFormal       Tone = "Formal"
	ToneCasual       Tone = "Casual"
	ToneProfessional Tone = "Professional"
	ToneSpartan      Tone = "Spartan"
)

// Tones lists the supported tones in display order
func Tones() []Tone {
	return []Tone{ToneFormal, ToneCasual, ToneProfessional, ToneSpartan}
}

// ParseTone resolves a tone name case-insensitively
func ParseTone(name string) (Tone, error) {
	name = strings.TrimSpace(name)
	for _, tone := range Tones() {
		if strings.EqualFold(name, string(tone)) {
			return tone, nil
		}
	}
	return "", &ValidationError{Field: "tone", Reason: "must be one of Formal, Casual, Professional, Spartan"}
}

// DraftResponse represents a reply generated by the model
type DraftResponse struct {
	Text        string
	Tone        Tone
	Model       string
	GeneratedAt time.Time
}

// OutgoingEmail is a finalized reply handed to an exporter
type OutgoingEmail struct {
	SessionID     string
	Subject       string
	Tone          Tone
	SignatureName string
	Text          string
}

// CompletionRequest is a single chat-style request: one system instruction
// and one user message
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
}

// Completion is the text block produced by a model
type Completion struct {
	Text  string
	Model string
	ID    string
}

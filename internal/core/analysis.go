package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mikey/llm-email-assistant/internal/utils"
	"go.uber.org/zap"
)

const sentimentPrefix = "Sentiment:"

const analysisSystemPrompt = "You are an assistant that helps analyze emails."

const analysisPromptFormat = `Analyze the following email and extract the main request, the topic and the urgency.
Report the sentiment on its own line in the format 'Sentiment: POSITIVE/NEGATIVE/NEUTRAL'.
Provide a detailed analysis and print every heading except the detailed analysis heading.

Email:
%s`

// AssistantOptions bounds the model calls made on behalf of a session
type AssistantOptions struct {
	AnalysisTimeout   time.Duration
	GenerationTimeout time.Duration
	MaxBodySize       int
}

// ParseAnalysis splits the raw analysis output into the sentiment label and
// the text shown to the user. The first line starting with "Sentiment:" is
// the sentiment line; it is removed from the text and its value is read up to
// any parenthesized annotation. Without such a line raw is returned as is.
func ParseAnalysis(raw string) (*Sentiment, string) {
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		if !strings.HasPrefix(line, sentimentPrefix) {
			continue
		}

		value := strings.TrimSpace(strings.TrimPrefix(line, sentimentPrefix))
		label, _, _ := strings.Cut(value, "(")
		label = strings.TrimSpace(label)

		rest := append(lines[:i:i], lines[i+1:]...)
		text := strings.TrimSpace(strings.Join(rest, "\n"))

		if label == "" {
			return nil, text
		}
		return &Sentiment{Label: label}, text
	}
	return nil, raw
}

// AnalysisService asks the model to analyze an email and parses the result
type AnalysisService struct {
	llmClient     LLMClient
	textProcessor *utils.TextProcessor
	logger        *zap.Logger
	timeout       time.Duration
	maxBodySize   int
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(
	llmClient LLMClient,
	textProcessor *utils.TextProcessor,
	logger *zap.Logger,
	opts AssistantOptions,
) *AnalysisService {
	return &AnalysisService{
		llmClient:     llmClient,
		textProcessor: textProcessor,
		logger:        logger,
		timeout:       opts.AnalysisTimeout,
		maxBodySize:   opts.MaxBodySize,
	}
}

// Analyze analyzes emailText. On failure the returned result carries the
// fallback text together with an *AnalysisError.
func (s *AnalysisService) Analyze(ctx context.Context, emailText string) (*AnalysisResult, error) {
	if strings.TrimSpace(emailText) == "" {
		return nil, &ValidationError{Field: "email text", Reason: "cannot be empty"}
	}

	body := s.textProcessor.ProcessText(emailText, s.maxBodySize)

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	startTime := time.Now()
	resp, err := s.llmClient.Complete(ctx, &CompletionRequest{
		SystemPrompt: analysisSystemPrompt,
		UserPrompt:   fmt.Sprintf(analysisPromptFormat, body),
	})
	if err != nil {
		s.logger.Error("Failed to analyze email",
			zap.Error(err),
			zap.Duration("elapsed", time.Since(startTime)))
		return &AnalysisResult{
			AnalysisText: AnalysisFallbackText,
			AnalyzedAt:   time.Now(),
		}, &AnalysisError{Err: err}
	}

	sentiment, text := ParseAnalysis(resp.Text)
	result := &AnalysisResult{
		Sentiment:    sentiment,
		AnalysisText: text,
		Model:        resp.Model,
		AnalyzedAt:   time.Now(),
	}

	fields := []zap.Field{
		zap.String("model", resp.Model),
		zap.Duration("elapsed", time.Since(startTime)),
	}
	if sentiment != nil {
		fields = append(fields, zap.String("sentiment", sentiment.Label))
	}
	s.logger.Debug("Email analyzed", fields...)

	return result, nil
}

// withTimeout bounds ctx by timeout; a non-positive timeout leaves it unbounded
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const responseSystemPrompt = "You are an assistant that helps generate email responses."

const responsePromptFormat = `Write a reply to the email described by the following context.
Tone: %s
Context:
%s`

// ResponseService drafts replies through the model
type ResponseService struct {
	llmClient LLMClient
	logger    *zap.Logger
	timeout   time.Duration
}

// NewResponseService creates a new response generation service
func NewResponseService(llmClient LLMClient, logger *zap.Logger, opts AssistantOptions) *ResponseService {
	return &ResponseService{
		llmClient: llmClient,
		logger:    logger,
		timeout:   opts.GenerationTimeout,
	}
}

// Generate drafts a reply in tone. On failure the returned draft carries the
// fallback text together with a *GenerationError.
func (s *ResponseService) Generate(ctx context.Context, analysisText string, tone Tone) (*DraftResponse, error) {
	tone, err := ParseTone(string(tone))
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	startTime := time.Now()
	resp, err := s.llmClient.Complete(ctx, &CompletionRequest{
		SystemPrompt: responseSystemPrompt,
		UserPrompt:   fmt.Sprintf(responsePromptFormat, tone, analysisText),
	})
	if err != nil {
		s.logger.Error("Failed to generate email response",
			zap.Error(err),
			zap.String("tone", string(tone)),
			zap.Duration("elapsed", time.Since(startTime)))
		return &DraftResponse{
			Text:        GenerationFallbackText,
			Tone:        tone,
			GeneratedAt: time.Now(),
		}, &GenerationError{Err: err}
	}

	s.logger.Debug("Email response generated",
		zap.String("tone", string(tone)),
		zap.String("model", resp.Model),
		zap.Duration("elapsed", time.Since(startTime)))

	return &DraftResponse{
		Text:        resp.Text,
		Tone:        tone,
		Model:       resp.Model,
		GeneratedAt: time.Now(),
	}, nil
}

package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/llm-email-assistant/internal/core"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GeminiClient is an implementation of the LLMClient interface using Google Gemini
type GeminiClient struct {
	client      *genai.Client
	modelName   string
	maxTokens   int
	temperature float32
	topP        float32
	logger      *zap.Logger
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(
	ctx context.Context,
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	logger *zap.Logger,
	opts ...option.ClientOption,
) (*GeminiClient, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:      client,
		modelName:   modelName,
		maxTokens:   maxTokens,
		temperature: temperature,
		topP:        topP,
		logger:      logger,
	}, nil
}

// Close closes the Gemini client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// model builds a generative model carrying the system instruction. A fresh
// model per call keeps concurrent requests from sharing the instruction.
func (c *GeminiClient) model(systemPrompt string) *genai.GenerativeModel {
	model := c.client.GenerativeModel(c.modelName)
	model.SetTemperature(c.temperature)
	model.SetTopP(c.topP)
	model.SetMaxOutputTokens(int32(c.maxTokens))
	if systemPrompt != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemPrompt)},
		}
	}
	return model
}

// Complete runs a single generation request against Gemini
func (c *GeminiClient) Complete(ctx context.Context, req *core.CompletionRequest) (*core.Completion, error) {
	resp, err := c.model(req.SystemPrompt).GenerateContent(ctx, genai.Text(req.UserPrompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	c.logger.Debug("Gemini completion received",
		zap.String("model", c.modelName),
		zap.Int("length", len(text)))

	return &core.Completion{
		Text:  text,
		Model: c.modelName,
	}, nil
}

// responseText joins the text parts of the first candidate
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return strings.TrimSpace(sb.String())
}

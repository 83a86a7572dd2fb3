package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/llm-email-assistant/internal/core"
	"go.uber.org/zap"
)

const anthropicVersion = "bedrock-2023-05-31"

// InvokeModelAPI is the subset of the Bedrock runtime client used here
type InvokeModelAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockClient is an implementation of the LLMClient interface using Amazon Bedrock
type BedrockClient struct {
	client      InvokeModelAPI
	modelID     string
	maxTokens   int
	temperature float32
	topP        float32
	logger      *zap.Logger
}

// NewBedrockClient creates a new Bedrock client
func NewBedrockClient(
	client InvokeModelAPI,
	modelID string,
	maxTokens int,
	temperature float32,
	topP float32,
	logger *zap.Logger,
) *BedrockClient {
	return &BedrockClient{
		client:      client,
		modelID:     modelID,
		maxTokens:   maxTokens,
		temperature: temperature,
		topP:        topP,
		logger:      logger,
	}
}

// Complete invokes the configured model with a single prompt
func (c *BedrockClient) Complete(ctx context.Context, req *core.CompletionRequest) (*core.Completion, error) {
	payload, err := c.buildPayload(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	text, err := c.parseResponse(resp.Body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Bedrock completion received",
		zap.String("model", c.modelID),
		zap.Int("length", len(text)))

	return &core.Completion{
		Text:  text,
		Model: c.modelID,
	}, nil
}

// buildPayload encodes the request in the body format of the model family
func (c *BedrockClient) buildPayload(req *core.CompletionRequest) ([]byte, error) {
	switch {
	case c.isAnthropicModel():
		payload := map[string]interface{}{
			"anthropic_version": anthropicVersion,
			"max_tokens":        c.maxTokens,
			"temperature":       c.temperature,
			"top_p":             c.topP,
			"messages": []interface{}{
				map[string]interface{}{
					"role": "user",
					"content": []interface{}{
						map[string]interface{}{"type": "text", "text": req.UserPrompt},
					},
				},
			},
		}
		if req.SystemPrompt != "" {
			payload["system"] = req.SystemPrompt
		}
		return json.Marshal(payload)
	case c.isAmazonTitanModel():
		return json.Marshal(map[string]interface{}{
			"inputText": joinPrompt(req),
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": c.maxTokens,
				"temperature":   c.temperature,
				"topP":          c.topP,
			},
		})
	default:
		return json.Marshal(map[string]interface{}{
			"prompt":      joinPrompt(req),
			"max_tokens":  c.maxTokens,
			"temperature": c.temperature,
			"top_p":       c.topP,
		})
	}
}

// parseResponse extracts the generated text for the model family
func (c *BedrockClient) parseResponse(body []byte) (string, error) {
	var text string

	switch {
	case c.isAnthropicModel():
		var claudeResp struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		}
		if err := json.Unmarshal(body, &claudeResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Claude response: %w", err)
		}
		var sb strings.Builder
		for _, part := range claudeResp.Content {
			if part.Type == "text" {
				sb.WriteString(part.Text)
			}
		}
		text = sb.String()
	case c.isAmazonTitanModel():
		var titanResp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &titanResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Titan response: %w", err)
		}
		if len(titanResp.Results) > 0 {
			text = titanResp.Results[0].OutputText
		}
	default:
		var genericResp map[string]interface{}
		if err := json.Unmarshal(body, &genericResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal response: %w", err)
		}
		for _, field := range []string{"completion", "generation", "text", "output"} {
			if value, ok := genericResp[field].(string); ok && value != "" {
				text = value
				break
			}
		}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty response from Bedrock model %s", c.modelID)
	}
	return text, nil
}

func joinPrompt(req *core.CompletionRequest) string {
	if req.SystemPrompt == "" {
		return req.UserPrompt
	}
	return req.SystemPrompt + "\n\n" + req.UserPrompt
}

// isAnthropicModel checks if the model is an Anthropic Claude model
func (c *BedrockClient) isAnthropicModel() bool {
	return strings.Contains(strings.ToLower(c.modelID), "anthropic.claude")
}

// isAmazonTitanModel checks if the model is an Amazon Titan model
func (c *BedrockClient) isAmazonTitanModel() bool {
	return strings.Contains(strings.ToLower(c.modelID), "amazon.titan")
}

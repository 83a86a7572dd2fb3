package openai

import (
	"fmt"
	"strings"

	"github.com/mikey/llm-email-assistant/internal/config"
	"github.com/mikey/llm-email-assistant/internal/core"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Factory creates new instances of OpenAIClient
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a new factory for OpenAIClient instances
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateLLMClient creates a new OpenAIClient
func (f *Factory) CreateLLMClient() (core.LLMClient, error) {
	openaiCfg := f.cfg.GetOpenAI()

	if openaiCfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	clientCfg, err := clientConfig(openaiCfg)
	if err != nil {
		return nil, err
	}

	f.logger.Info("Using OpenAI provider",
		zap.String("api_type", openaiCfg.APIType),
		zap.String("model", openaiCfg.ModelName))

	return NewOpenAIClient(
		openai.NewClientWithConfig(clientCfg),
		openaiCfg.ModelName,
		openaiCfg.MaxTokens,
		openaiCfg.Temperature,
		openaiCfg.TopP,
		f.logger,
	), nil
}

// clientConfig builds the go-openai configuration for the public API or an
// Azure deployment
func clientConfig(openaiCfg config.OpenAIConfig) (openai.ClientConfig, error) {
	switch strings.ToLower(openaiCfg.APIType) {
	case "", "openai":
		clientCfg := openai.DefaultConfig(openaiCfg.APIKey)
		if openaiCfg.BaseURL != "" {
			clientCfg.BaseURL = openaiCfg.BaseURL
		}
		return clientCfg, nil
	case "azure":
		if openaiCfg.BaseURL == "" {
			return openai.ClientConfig{}, fmt.Errorf("azure OpenAI requires openai.base_url")
		}
		clientCfg := openai.DefaultAzureConfig(openaiCfg.APIKey, openaiCfg.BaseURL)
		if openaiCfg.APIVersion != "" {
			clientCfg.APIVersion = openaiCfg.APIVersion
		}
		if deployment := openaiCfg.Deployment; deployment != "" {
			clientCfg.AzureModelMapperFunc = func(string) string {
				return deployment
			}
		}
		return clientCfg, nil
	default:
		return openai.ClientConfig{}, fmt.Errorf("unsupported OpenAI api type: %s", openaiCfg.APIType)
	}
}

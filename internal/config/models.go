package config

import (
	"fmt"
	"strings"
	"time"
)

// LLMConfig represents the configuration for the LLM provider
type LLMConfig struct {
	Provider string
}

// OpenAIConfig represents the configuration for OpenAI and Azure OpenAI
type OpenAIConfig struct {
	APIType     string
	APIKey      string
	BaseURL     string
	APIVersion  string
	Deployment  string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// AssistantConfig holds the limits applied around each model call
type AssistantConfig struct {
	AnalysisTimeout   time.Duration
	GenerationTimeout time.Duration
	MaxBodySize       int
}

// SignaturesConfig selects and configures the signature backend
type SignaturesConfig struct {
	Type        string
	Path        string
	SQLitePath  string
	MySQLDSN    string
	PostgresDSN string
	RedisURL    string
	RedisKey    string
}

// SMTPConfig configures the SMTP export target
type SMTPConfig struct {
	Address  string
	From     string
	To       []string
	Username string
	Password string
	Timeout  time.Duration
}

// KafkaConfig configures the Kafka export target
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// ExportConfig selects where finalized emails go
type ExportConfig struct {
	Type     string
	FilePath string
	SMTP     SMTPConfig
	Kafka    KafkaConfig
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider: c.GetString("llm.provider"),
	}
}

// GetOpenAI returns the OpenAI configuration. The azure provider always
// selects the Azure API type.
func (c *Config) GetOpenAI() OpenAIConfig {
	apiType := c.GetString("openai.api_type")
	if strings.EqualFold(c.GetLLM().Provider, "azure") {
		apiType = "azure"
	}
	return OpenAIConfig{
		APIType:     apiType,
		APIKey:      c.GetString("openai.api_key"),
		BaseURL:     c.GetString("openai.base_url"),
		APIVersion:  c.GetString("openai.api_version"),
		Deployment:  c.GetString("openai.deployment"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
	}
}

// GetAssistant returns the call limits for analysis and generation
func (c *Config) GetAssistant() (AssistantConfig, error) {
	analysisTimeout, err := c.GetDuration("assistant.analysis_timeout")
	if err != nil {
		return AssistantConfig{}, fmt.Errorf("invalid analysis timeout: %w", err)
	}
	generationTimeout, err := c.GetDuration("assistant.generation_timeout")
	if err != nil {
		return AssistantConfig{}, fmt.Errorf("invalid generation timeout: %w", err)
	}
	return AssistantConfig{
		AnalysisTimeout:   analysisTimeout,
		GenerationTimeout: generationTimeout,
		MaxBodySize:       c.GetInt("assistant.max_body_size"),
	}, nil
}

// GetSignatures returns the signature store configuration
func (c *Config) GetSignatures() SignaturesConfig {
	return SignaturesConfig{
		Type:        c.GetString("signatures.type"),
		Path:        c.GetString("signatures.path"),
		SQLitePath:  c.GetString("signatures.sqlite_path"),
		MySQLDSN:    c.GetString("signatures.mysql_dsn"),
		PostgresDSN: c.GetString("signatures.postgres_dsn"),
		RedisURL:    c.GetString("signatures.redis_url"),
		RedisKey:    c.GetString("signatures.redis_key"),
	}
}

// GetExport returns the export configuration
func (c *Config) GetExport() (ExportConfig, error) {
	smtpTimeout, err := c.GetDuration("export.smtp.timeout")
	if err != nil {
		return ExportConfig{}, fmt.Errorf("invalid smtp timeout: %w", err)
	}
	return ExportConfig{
		Type:     c.GetString("export.type"),
		FilePath: c.GetString("export.file_path"),
		SMTP: SMTPConfig{
			Address:  c.GetString("export.smtp.address"),
			From:     c.GetString("export.smtp.from"),
			To:       c.GetStringSlice("export.smtp.to"),
			Username: c.GetString("export.smtp.username"),
			Password: c.GetString("export.smtp.password"),
			Timeout:  smtpTimeout,
		},
		Kafka: KafkaConfig{
			Brokers: c.GetStringSlice("export.kafka.brokers"),
			Topic:   c.GetString("export.kafka.topic"),
		},
	}, nil
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// NewWithFile creates a configuration instance reading an explicit config
// file when path is not empty, and the usual search paths otherwise
func NewWithFile(path string) (*Config, error) {
	// Pick up credentials from a local .env file, like the hosted deployment does
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/email-assistant/")
		v.AddConfigPath("$HOME/.email-assistant")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("EMAIL_ASSISTANT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := bindProviderEnv(v); err != nil {
		return nil, err
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// bindProviderEnv maps the vendor environment variables onto config keys
func bindProviderEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"openai.api_key":  {"EMAIL_ASSISTANT_OPENAI_API_KEY", "AZURE_OPENAI_API_KEY", "OPENAI_API_KEY"},
		"openai.base_url": {"EMAIL_ASSISTANT_OPENAI_BASE_URL", "AZURE_OPENAI_ENDPOINT"},
		"gemini.api_key":  {"EMAIL_ASSISTANT_GEMINI_API_KEY", "GEMINI_API_KEY"},
	}
	for key, envs := range bindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("failed to bind environment for %s: %w", key, err)
		}
	}
	return nil
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// LLM provider defaults
	v.SetDefault("llm.provider", "openai")

	// OpenAI / Azure OpenAI defaults
	v.SetDefault("openai.api_type", "openai")
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.api_version", "2024-02-15-preview")
	v.SetDefault("openai.deployment", "")
	v.SetDefault("openai.model_name", "gpt-4o")
	v.SetDefault("openai.max_tokens", 400)
	v.SetDefault("openai.temperature", 0.7)
	v.SetDefault("openai.top_p", 1.0)

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-1.5-pro")
	v.SetDefault("gemini.max_tokens", 400)
	v.SetDefault("gemini.temperature", 0.7)
	v.SetDefault("gemini.top_p", 0.95)

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-3-haiku-20240307-v1:0")
	v.SetDefault("bedrock.max_tokens", 400)
	v.SetDefault("bedrock.temperature", 0.7)
	v.SetDefault("bedrock.top_p", 0.9)

	// Assistant defaults
	v.SetDefault("assistant.analysis_timeout", "60s")
	v.SetDefault("assistant.generation_timeout", "60s")
	v.SetDefault("assistant.max_body_size", 8192)

	// Signature store defaults
	v.SetDefault("signatures.type", "file")
	v.SetDefault("signatures.path", "signatures.json")
	v.SetDefault("signatures.sqlite_path", "signatures.db")
	v.SetDefault("signatures.mysql_dsn", "user:password@tcp(localhost:3306)/email_assistant")
	v.SetDefault("signatures.postgres_dsn", "postgres://localhost:5432/email_assistant")
	v.SetDefault("signatures.redis_url", "redis://localhost:6379/0")
	v.SetDefault("signatures.redis_key", "email-assistant:signatures")

	// Export defaults
	v.SetDefault("export.type", "clipboard")
	v.SetDefault("export.file_path", "finalized_email.txt")
	v.SetDefault("export.smtp.address", "localhost:25")
	v.SetDefault("export.smtp.from", "")
	v.SetDefault("export.smtp.to", []string{})
	v.SetDefault("export.smtp.username", "")
	v.SetDefault("export.smtp.password", "")
	v.SetDefault("export.smtp.timeout", "30s")
	v.SetDefault("export.kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("export.kafka.topic", "finalized-emails")

	// Logging defaults
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}

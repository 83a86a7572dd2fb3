package di

import (
	"flag"
	"io"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/llm-email-assistant/internal/config"
	"github.com/mikey/llm-email-assistant/internal/logging"
)

// CLIFlags contains all command line flags for the one-shot drafter
type CLIFlags struct {
	// LLM provider flags
	Provider  string
	Model     string
	MaxTokens int

	// Drafting flags
	Tone      string
	Signature string
	Export    bool
	ExportTo  string

	// Input flags
	InputFile  string
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags(args []string, output io.Writer) (*CLIFlags, error) {
	flags := &CLIFlags{}
	fs := flag.NewFlagSet("reply-drafter", flag.ContinueOnError)
	fs.SetOutput(output)

	// LLM provider flags
	fs.StringVar(&flags.Provider, "provider", "", "LLM provider (openai, azure, gemini, bedrock)")
	fs.StringVar(&flags.Model, "model", "", "Model name or Bedrock model ID for the selected provider")
	fs.IntVar(&flags.MaxTokens, "max-tokens", 0, "Maximum tokens for LLM responses")

	// Drafting flags
	fs.StringVar(&flags.Tone, "tone", "professional", "Tone of the reply (formal, casual, professional, spartan)")
	fs.StringVar(&flags.Signature, "signature", "", "Saved signature to append")
	fs.BoolVar(&flags.Export, "export", false, "Send the finalized reply to the configured exporter")
	fs.StringVar(&flags.ExportTo, "export-type", "", "Override export.type (clipboard, stdout, file, smtp, kafka)")

	// Input flags
	fs.StringVar(&flags.InputFile, "file", "", "Input email file (use stdin if not specified)")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	fs.StringVar(&flags.ConfigFile, "config", "", "Path to config file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return flags, nil
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration, with flags taking precedence over the file
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		cfg, err := config.NewWithFile(flags.ConfigFile)
		if err != nil {
			return nil, err
		}
		if used := cfg.GetViper().ConfigFileUsed(); used != "" {
			logger.Info("Loaded configuration from file", zap.String("file", used))
		}
		applyFlags(cfg, flags)
		return cfg, nil
	}); err != nil {
		return nil, err
	}

	if err := provideAssistant(container); err != nil {
		return nil, err
	}

	return container, nil
}

// applyFlags overrides configuration values with the flags that were set
func applyFlags(cfg *config.Config, flags *CLIFlags) {
	v := cfg.GetViper()
	if flags.Provider != "" {
		v.Set("llm.provider", flags.Provider)
		if flags.Provider == "azure" {
			v.Set("openai.api_type", "azure")
		}
	}

	provider := v.GetString("llm.provider")
	section := provider
	if provider == "azure" {
		section = "openai"
	}
	if flags.Model != "" {
		if provider == "bedrock" {
			v.Set("bedrock.model_id", flags.Model)
		} else {
			v.Set(section+".model_name", flags.Model)
		}
	}
	if flags.MaxTokens > 0 {
		v.Set(section+".max_tokens", flags.MaxTokens)
	}
	if flags.ExportTo != "" {
		v.Set("export.type", flags.ExportTo)
	}
}

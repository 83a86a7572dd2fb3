package di

import (
	"context"
	"os"
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/llm-email-assistant/internal/adapters/console"
	"github.com/mikey/llm-email-assistant/internal/adapters/signature"
	"github.com/mikey/llm-email-assistant/internal/adapters/source"
	"github.com/mikey/llm-email-assistant/internal/config"
	"github.com/mikey/llm-email-assistant/internal/core"
	"github.com/mikey/llm-email-assistant/internal/factory"
	"github.com/mikey/llm-email-assistant/internal/logging"
	"github.com/mikey/llm-email-assistant/internal/ports"
	"github.com/mikey/llm-email-assistant/internal/utils"
)

// signatureConnectTimeout bounds connecting to a networked signature backend
const signatureConnectTimeout = 10 * time.Second

// BuildContainer creates and configures a dependency injection container for
// the interactive assistant
func BuildContainer(configFile string) (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(func() (*config.Config, error) {
		return config.NewWithFile(configFile)
	}); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideAssistant(container); err != nil {
		return nil, err
	}

	// Register the console frontend
	if err := container.Provide(func(assistant *core.Assistant, parser *source.Parser, logger *zap.Logger) ports.Frontend {
		return console.New(assistant, parser, os.Stdin, os.Stdout, logger)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// provideAssistant registers everything between the configuration and the
// assistant. The container must already provide *config.Config and *zap.Logger.
func provideAssistant(container *dig.Container) error {
	// Register factories
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewSignatureFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewExportFactory); err != nil {
		return err
	}

	// Register text processor and parser
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return err
	}
	if err := container.Provide(source.NewParser); err != nil {
		return err
	}

	// Register LLM client
	if err := container.Provide(func(f *factory.LLMFactory) (core.LLMClient, error) {
		return f.CreateLLMClient()
	}); err != nil {
		return err
	}

	// Register signature repository and store
	if err := container.Provide(func(f *factory.SignatureFactory, logger *zap.Logger) core.SignatureRepository {
		ctx, cancel := context.WithTimeout(context.Background(), signatureConnectTimeout)
		defer cancel()

		repo, err := f.CreateSignatureRepository(ctx)
		if err != nil {
			// Signatures are optional; the store starts degraded
			logger.Warn("Signature backend unavailable", zap.Error(err))
			return signature.NewUnavailableStore(err)
		}
		return repo
	}); err != nil {
		return err
	}
	if err := container.Provide(func(repo core.SignatureRepository, logger *zap.Logger) *core.SignatureStore {
		store, err := core.OpenSignatureStore(context.Background(), repo, logger)
		if err != nil {
			// The store stays usable read-only with no signatures
			logger.Warn("Signatures could not be loaded", zap.Error(err))
		}
		return store
	}); err != nil {
		return err
	}

	// Register exporter
	if err := container.Provide(func(f *factory.ExportFactory) (core.Exporter, error) {
		return f.CreateExporter()
	}); err != nil {
		return err
	}

	// Register assistant options
	if err := container.Provide(func(cfg *config.Config) (core.AssistantOptions, error) {
		assistantCfg, err := cfg.GetAssistant()
		if err != nil {
			return core.AssistantOptions{}, err
		}
		return core.AssistantOptions{
			AnalysisTimeout:   assistantCfg.AnalysisTimeout,
			GenerationTimeout: assistantCfg.GenerationTimeout,
			MaxBodySize:       assistantCfg.MaxBodySize,
		}, nil
	}); err != nil {
		return err
	}

	// Register services
	if err := container.Provide(func(llm core.LLMClient, tp *utils.TextProcessor, logger *zap.Logger, opts core.AssistantOptions) core.EmailAnalyzer {
		return core.NewAnalysisService(llm, tp, logger, opts)
	}); err != nil {
		return err
	}
	if err := container.Provide(func(llm core.LLMClient, logger *zap.Logger, opts core.AssistantOptions) core.ResponseGenerator {
		return core.NewResponseService(llm, logger, opts)
	}); err != nil {
		return err
	}
	return container.Provide(core.NewAssistant)
}

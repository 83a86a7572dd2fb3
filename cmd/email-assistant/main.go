package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/llm-email-assistant/internal/core"
	"github.com/mikey/llm-email-assistant/internal/di"
	"github.com/mikey/llm-email-assistant/internal/ports"
	"go.uber.org/zap"
)

func main() {
	configFile := flag.String("config", "", "Path to config file")
	flag.Parse()

	// Build the dependency injection container
	container, err := di.BuildContainer(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	frontend ports.Frontend,
	llmClient core.LLMClient,
	signatureRepo core.SignatureRepository,
	exporter core.Exporter,
) error {
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := frontend.Run(ctx)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	logger.Info("Shutting down...")

	// Close any resources that need closing
	for name, resource := range map[string]interface{}{
		"LLM client":           llmClient,
		"signature repository": signatureRepo,
		"exporter":             exporter,
	} {
		if closer, ok := resource.(io.Closer); ok {
			if cerr := closer.Close(); cerr != nil {
				logger.Error("Failed to close "+name, zap.Error(cerr))
			}
		}
	}

	return err
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mikey/llm-email-assistant/internal/adapters/source"
	"github.com/mikey/llm-email-assistant/internal/core"
	"github.com/mikey/llm-email-assistant/internal/di"
	"go.uber.org/zap"
)

func main() {
	flags, err := di.ParseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run drafts a single reply: analyze, generate, finalize and optionally export
func run(
	flags *di.CLIFlags,
	logger *zap.Logger,
	assistant *core.Assistant,
	parser *source.Parser,
	llmClient core.LLMClient,
	signatureRepo core.SignatureRepository,
	exporter core.Exporter,
) error {
	defer logger.Sync()
	defer closeAll(logger, llmClient, signatureRepo, exporter)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tone, err := core.ParseTone(flags.Tone)
	if err != nil {
		return err
	}

	// Read email from file or stdin
	var email *core.Email
	if flags.InputFile != "" {
		logger.Info("Reading email from file", zap.String("file", flags.InputFile))
		email, err = parser.ParseFile(flags.InputFile)
	} else {
		logger.Info("Reading email from stdin")
		email, err = parser.Parse(os.Stdin)
	}
	if err != nil {
		return err
	}

	startTime := time.Now()
	sess := core.NewSession()
	sess.Subject = email.Subject

	sess, err = assistant.Analyze(ctx, sess, source.Text(email))
	if err != nil {
		return err
	}

	fmt.Printf("=== Analysis ===\n")
	if sess.Analysis.Sentiment != nil {
		fmt.Printf("Sentiment: %s\n", sess.Analysis.Sentiment.Label)
	}
	fmt.Printf("%s\n\n", sess.Analysis.AnalysisText)

	if sess, err = assistant.GenerateResponse(ctx, sess, tone); err != nil {
		return err
	}
	if sess, err = assistant.Customize(sess); err != nil {
		return err
	}
	if sess, err = assistant.SelectSignature(sess, flags.Signature); err != nil {
		return err
	}
	if sess, err = assistant.Finalize(sess); err != nil {
		return err
	}

	fmt.Printf("=== Reply (%s) ===\n%s\n\n", sess.Tone, sess.Finalized)
	fmt.Printf("Model used: %s\n", sess.Draft.Model)
	fmt.Printf("Processing time: %v\n", time.Since(startTime).Round(time.Millisecond))

	if flags.Export {
		if err := assistant.Export(ctx, sess); err != nil {
			return err
		}
		fmt.Printf("Exported to %s\n", assistant.ExportTarget())
	}
	return nil
}

func closeAll(logger *zap.Logger, resources ...interface{}) {
	for _, resource := range resources {
		if closer, ok := resource.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				logger.Error("Failed to close resource", zap.Error(err))
			}
		}
	}
}

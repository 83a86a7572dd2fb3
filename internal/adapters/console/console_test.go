package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mikey/llm-email-assistant/internal/adapters/export"
	"github.com/mikey/llm-email-assistant/internal/adapters/signature"
	"github.com/mikey/llm-email-assistant/internal/adapters/source"
	"github.com/mikey/llm-email-assistant/internal/core"
	"github.com/mikey/llm-email-assistant/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// scriptedLLM answers analysis and generation prompts with canned text
type scriptedLLM struct {
	analysis string
	reply    string
	err      error
}

func (s *scriptedLLM) Complete(ctx context.Context, req *core.CompletionRequest) (*core.Completion, error) {
	if s.err != nil {
		return nil, s.err
	}
	if strings.Contains(req.SystemPrompt, "email responses") {
		return &core.Completion{Text: s.reply, Model: "test"}, nil
	}
	return &core.Completion{Text: s.analysis, Model: "test"}, nil
}

type harness struct {
	console  *Console
	out      *bytes.Buffer
	exported *bytes.Buffer
}

func newHarness(t *testing.T, llm core.LLMClient, signatures map[string]string, script string) *harness {
	t.Helper()
	logger := zap.NewNop()
	store, err := core.OpenSignatureStore(context.Background(), signature.NewMemoryStore(signatures), logger)
	require.NoError(t, err)

	exported := &bytes.Buffer{}
	opts := core.AssistantOptions{}
	assistant := core.NewAssistant(
		core.NewAnalysisService(llm, utils.NewTextProcessor(logger), logger, opts),
		core.NewResponseService(llm, logger, opts),
		store,
		export.NewWriterExporter(exported, logger),
		logger,
	)

	out := &bytes.Buffer{}
	return &harness{
		console:  New(assistant, source.NewParser(logger), strings.NewReader(script), out, logger),
		out:      out,
		exported: exported,
	}
}

func TestConsole_FullWorkflow(t *testing.T) {
	llm := &scriptedLLM{
		analysis: "Main request: refund for order #123\nSentiment: NEGATIVE (frustrated)",
		reply:    "Dear customer, we are on it.",
	}
	script := strings.Join([]string{
		"paste",
		"Can I get a refund for order #123?",
		".",
		"analyze",
		"generate formal",
		"customize",
		"edit",
		"Dear customer, ...",
		".",
		"save-signature default",
		"Best,",
		"Jane",
		".",
		"use default",
		"finalize",
		"export",
		"quit",
	}, "\n")
	h := newHarness(t, llm, nil, script)

	require.NoError(t, h.console.Run(context.Background()))

	sess := h.console.Session()
	assert.Equal(t, core.StateFinalized, sess.State)
	assert.Equal(t, "Dear customer, ...\n\nBest,\nJane", sess.Finalized)
	assert.Equal(t, core.ToneFormal, sess.Tone)
	assert.Equal(t, "Dear customer, ...\n\nBest,\nJane\n", h.exported.String())

	out := h.out.String()
	assert.Contains(t, out, "Sentiment: NEGATIVE")
	assert.Contains(t, out, "=== Draft response ===\nDear customer, we are on it.")
	assert.Contains(t, out, "OK: Signature 'default' added/updated successfully.")
	assert.Contains(t, out, "=== Final email ===")
	assert.Contains(t, out, "OK: Email exported to stdout")
	assert.NotContains(t, out, "Warning:")
}

func TestConsole_OutOfOrderCommands(t *testing.T) {
	h := newHarness(t, &scriptedLLM{}, nil, "generate\nfinalize\nexport\nanalyze\nquit\n")

	require.NoError(t, h.console.Run(context.Background()))

	out := h.out.String()
	assert.Contains(t, out, "Warning: cannot generate a response while session is empty")
	assert.Contains(t, out, "Warning: cannot finalize the email while session is empty")
	assert.Contains(t, out, "Warning: paste or load an email first")
	assert.Equal(t, core.StateEmpty, h.console.Session().State)
}

func TestConsole_EmptyPasteWarns(t *testing.T) {
	h := newHarness(t, &scriptedLLM{}, nil, "paste\n   \n.\nquit\n")

	require.NoError(t, h.console.Run(context.Background()))
	assert.Contains(t, h.out.String(), "Warning: the email is empty")
}

func TestConsole_AnalysisFailure(t *testing.T) {
	llm := &scriptedLLM{err: errors.New("503 service unavailable")}
	h := newHarness(t, llm, nil, "paste\nHello\n.\nanalyze\nquit\n")

	require.NoError(t, h.console.Run(context.Background()))

	out := h.out.String()
	assert.Contains(t, out, "Warning: Error analyzing content")
	assert.Contains(t, out, "You can try again.")
	assert.Equal(t, core.StateEmpty, h.console.Session().State)
}

func TestConsole_InvalidTone(t *testing.T) {
	llm := &scriptedLLM{analysis: "Topic: x", reply: "Hi"}
	h := newHarness(t, llm, nil, "paste\nHello\n.\nanalyze\ngenerate angry\nquit\n")

	require.NoError(t, h.console.Run(context.Background()))

	assert.Contains(t, h.out.String(), "Warning: tone")
	assert.Equal(t, core.StateAnalyzed, h.console.Session().State)
}

func TestConsole_SignatureCommands(t *testing.T) {
	signatures := map[string]string{"work": "Regards,\nJ. Doe"}
	h := newHarness(t, &scriptedLLM{}, signatures, "signatures\ndelete-signature work\ndelete-signature work\nsignatures\nquit\n")

	require.NoError(t, h.console.Run(context.Background()))

	out := h.out.String()
	assert.Contains(t, out, "  work\n      Regards,\n      J. Doe")
	assert.Contains(t, out, "OK: Signature 'work' has been successfully deleted.")
	assert.Contains(t, out, "Warning: signature 'work' not found")
	assert.Contains(t, out, "No saved signatures")
}

func TestConsole_LoadEmlFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "message.eml")
	require.NoError(t, os.WriteFile(path, []byte("From: alice@example.com\nSubject: Refund\n\nWhere is my refund?\n"), 0600))

	llm := &scriptedLLM{analysis: "Topic: refund"}
	h := newHarness(t, llm, nil, "load "+path+"\nanalyze\nquit\n")

	require.NoError(t, h.console.Run(context.Background()))

	sess := h.console.Session()
	assert.Equal(t, core.StateAnalyzed, sess.State)
	assert.Equal(t, "Refund", sess.Subject)
	assert.Contains(t, sess.EmailText, "Where is my refund?")
}

func TestConsole_NewSessionAndUnknownCommand(t *testing.T) {
	h := newHarness(t, &scriptedLLM{analysis: "Topic: x"}, nil, "paste\nHi\n.\nanalyze\nnew\nbogus\n")

	// Input ends without quit
	require.NoError(t, h.console.Run(context.Background()))

	assert.Equal(t, core.StateEmpty, h.console.Session().State)
	assert.Contains(t, h.out.String(), `Warning: unknown command "bogus"`)
}

func TestConsole_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	reader, writer := io.Pipe()
	defer writer.Close()

	h := newHarness(t, &scriptedLLM{}, nil, "")
	h.console.in = reader

	err := h.console.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConsole_SignaturesListedInNameOrder(t *testing.T) {
	signatures := map[string]string{"zeta": "Z", "alpha": "A", "mid": "M"}
	h := newHarness(t, &scriptedLLM{}, signatures, "signatures\nquit\n")

	require.NoError(t, h.console.Run(context.Background()))

	out := h.out.String()
	alpha := strings.Index(out, "  alpha\n")
	mid := strings.Index(out, "  mid\n")
	zeta := strings.Index(out, "  zeta\n")
	require.True(t, alpha >= 0 && mid >= 0 && zeta >= 0, out)
	assert.Less(t, alpha, mid)
	assert.Less(t, mid, zeta)
}

package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mikey/llm-email-assistant/internal/adapters/source"
	"github.com/mikey/llm-email-assistant/internal/core"
	"go.uber.org/zap"
)

// endOfInput terminates multi-line input
const endOfInput = "."

const helpText = `Commands:
  paste                   paste the received email, end with a line containing only "."
  load <path>             load the received email from a text or .eml file
  analyze                 analyze the pasted or loaded email
  tones                   list the available tones
  generate [tone]         draft a response (default: professional)
  customize               start editing the draft
  edit                    replace the working text, end with "."
  show                    show the current session
  signatures              list saved signatures
  use <name>              select a signature ("use -" clears the selection)
  save-signature <name>   save a signature, end the body with "."
  delete-signature [name] delete a signature (default: the selected one)
  finalize                append the selected signature
  export                  send the finalized email to %s
  new                     discard the session and start over
  help                    show this help
  quit                    exit`

// Console is an interactive line-oriented frontend
type Console struct {
	assistant *core.Assistant
	parser    *source.Parser
	in        io.Reader
	out       io.Writer
	logger    *zap.Logger

	sess           core.Session
	pending        string
	pendingSubject string
	lines          <-chan string
}

// New creates a console reading commands from in and writing to out
func New(assistant *core.Assistant, parser *source.Parser, in io.Reader, out io.Writer, logger *zap.Logger) *Console {
	return &Console{
		assistant: assistant,
		parser:    parser,
		in:        in,
		out:       out,
		logger:    logger,
		sess:      core.NewSession(),
	}
}

// Session returns the current session
func (c *Console) Session() core.Session {
	return c.sess
}

// Run implements ports.Frontend
func (c *Console) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	c.lines = readLines(c.in, done)

	c.printf("Email assistant ready. Type \"help\" for commands.\n")
	if err := c.assistant.Signatures().Degraded(); err != nil {
		c.warn("signatures unavailable: %v", err)
	}

	for {
		c.printf("> ")
		line, ok := c.next(ctx)
		if !ok {
			c.printf("\n")
			return ctx.Err()
		}

		quit, err := c.dispatch(ctx, strings.TrimSpace(line))
		if err != nil {
			c.report(err)
		}
		if quit {
			return nil
		}
	}
}

// readLines feeds input lines to a channel until EOF or done is closed
func readLines(r io.Reader, done <-chan struct{}) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
	}()
	return lines
}

func (c *Console) next(ctx context.Context) (string, bool) {
	select {
	case <-ctx.Done():
		return "", false
	case line, ok := <-c.lines:
		return line, ok
	}
}

// readBlock collects lines until a line holding only endOfInput
func (c *Console) readBlock(ctx context.Context) (string, bool) {
	var lines []string
	for {
		line, ok := c.next(ctx)
		if !ok {
			return "", false
		}
		if strings.TrimSpace(line) == endOfInput {
			return strings.Join(lines, "\n"), true
		}
		lines = append(lines, line)
	}
}

func (c *Console) dispatch(ctx context.Context, line string) (bool, error) {
	if line == "" {
		return false, nil
	}
	command, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(command) {
	case "help", "?":
		c.printf(helpText+"\n", c.assistant.ExportTarget())
	case "paste":
		return false, c.paste(ctx)
	case "load":
		return false, c.load(arg)
	case "analyze":
		return false, c.analyze(ctx)
	case "tones":
		for _, tone := range core.Tones() {
			c.printf("  %s\n", tone)
		}
	case "generate":
		return false, c.generate(ctx, arg)
	case "customize":
		return false, c.customize()
	case "edit":
		return false, c.edit(ctx)
	case "show":
		c.show()
	case "signatures":
		c.listSignatures()
	case "use":
		return false, c.use(arg)
	case "save-signature":
		return false, c.saveSignature(ctx, arg)
	case "delete-signature":
		return false, c.deleteSignature(ctx, arg)
	case "finalize":
		return false, c.finalize()
	case "export", "copy":
		return false, c.export(ctx)
	case "new":
		c.sess = core.NewSession()
		c.pending, c.pendingSubject = "", ""
		c.success("Started a new session")
	case "quit", "exit":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q, type \"help\" for commands", command)
	}
	return false, nil
}

func (c *Console) paste(ctx context.Context) error {
	c.printf("Paste the email, then a line with a single \".\":\n")
	text, ok := c.readBlock(ctx)
	if !ok {
		return errors.New("input ended before the email was complete")
	}
	return c.setPending(strings.NewReader(text))
}

func (c *Console) load(path string) error {
	if path == "" {
		return errors.New("usage: load <path>")
	}
	email, err := c.parser.ParseFile(path)
	if err != nil {
		return err
	}
	return c.accept(email)
}

func (c *Console) setPending(r io.Reader) error {
	email, err := c.parser.Parse(r)
	if err != nil {
		return err
	}
	return c.accept(email)
}

func (c *Console) accept(email *core.Email) error {
	if strings.TrimSpace(email.Body) == "" {
		c.warn("the email is empty, nothing to analyze")
		return nil
	}
	c.pending = source.Text(email)
	c.pendingSubject = email.Subject
	c.success("Email received (%d characters). Type \"analyze\" next.", len(c.pending))
	return nil
}

func (c *Console) analyze(ctx context.Context) error {
	text := c.pending
	if text == "" {
		text = c.sess.EmailText
	}
	if strings.TrimSpace(text) == "" {
		c.warn("paste or load an email first")
		return nil
	}

	c.printf("Analyzing...\n")
	next, err := c.assistant.Analyze(ctx, c.sess, text)
	if err != nil {
		return err
	}
	if c.pendingSubject != "" || next.EmailText != c.sess.EmailText {
		next.Subject = c.pendingSubject
	}
	c.sess = next
	c.showAnalysis()
	return nil
}

func (c *Console) generate(ctx context.Context, arg string) error {
	tone := core.ToneProfessional
	if arg != "" {
		parsed, err := core.ParseTone(arg)
		if err != nil {
			return err
		}
		tone = parsed
	}

	c.printf("Generating a %s response...\n", tone)
	next, err := c.assistant.GenerateResponse(ctx, c.sess, tone)
	if err != nil {
		return err
	}
	c.sess = next
	c.section("Draft response", c.sess.Draft.Text)
	c.printf("Type \"customize\" to edit it, or \"generate <tone>\" for another draft.\n")
	return nil
}

func (c *Console) customize() error {
	next, err := c.assistant.Customize(c.sess)
	if err != nil {
		return err
	}
	c.sess = next
	c.section("Working text", c.sess.Customized)
	c.printf("Use \"edit\" to replace it, \"use <signature>\" and then \"finalize\".\n")
	return nil
}

func (c *Console) edit(ctx context.Context) error {
	// Check the state before asking for a block of input
	if _, err := c.assistant.EditDraft(c.sess, c.sess.Customized); err != nil {
		return err
	}
	c.printf("Enter the new text, then a line with a single \".\":\n")
	text, ok := c.readBlock(ctx)
	if !ok {
		return errors.New("input ended before the text was complete")
	}
	next, err := c.assistant.EditDraft(c.sess, text)
	if err != nil {
		return err
	}
	c.sess = next
	c.success("Working text updated")
	return nil
}

func (c *Console) use(name string) error {
	if name == "-" {
		name = ""
	}
	next, err := c.assistant.SelectSignature(c.sess, name)
	if err != nil {
		return err
	}
	c.sess = next
	if name == "" {
		c.success("Signature cleared")
	} else {
		c.success("Using signature '%s'", name)
	}
	return nil
}

func (c *Console) saveSignature(ctx context.Context, name string) error {
	if name == "" {
		return errors.New("usage: save-signature <name>")
	}
	c.printf("Enter the signature, then a line with a single \".\":\n")
	body, ok := c.readBlock(ctx)
	if !ok {
		return errors.New("input ended before the signature was complete")
	}
	next, err := c.assistant.SaveSignature(ctx, c.sess, name, body)
	if err != nil {
		return err
	}
	c.sess = next
	c.success("Signature '%s' added/updated successfully.", strings.TrimSpace(name))
	return nil
}

func (c *Console) deleteSignature(ctx context.Context, name string) error {
	if name == "" {
		name = c.sess.SignatureName
	}
	if name == "" {
		return errors.New("usage: delete-signature <name>")
	}
	next, err := c.assistant.DeleteSignature(ctx, c.sess, name)
	if err != nil {
		return err
	}
	c.sess = next
	c.success("Signature '%s' has been successfully deleted.", name)
	return nil
}

func (c *Console) finalize() error {
	next, err := c.assistant.Finalize(c.sess)
	if err != nil {
		return err
	}
	c.sess = next
	c.section("Final email", c.sess.Finalized)
	c.printf("Type \"export\" to send it to %s.\n", c.assistant.ExportTarget())
	return nil
}

func (c *Console) export(ctx context.Context) error {
	if err := c.assistant.Export(ctx, c.sess); err != nil {
		return err
	}
	c.success("Email exported to %s", c.assistant.ExportTarget())
	return nil
}

func (c *Console) show() {
	c.printf("Session %s (%s)\n", c.sess.ID, c.sess.State)
	if c.sess.Analysis != nil {
		c.showAnalysis()
	}
	if c.sess.Draft != nil {
		c.section(fmt.Sprintf("Draft response (%s)", c.sess.Tone), c.sess.Draft.Text)
	}
	if c.sess.State >= core.StateCustomizing {
		c.section("Working text", c.sess.Customized)
	}
	if c.sess.SignatureName != "" {
		c.printf("Signature: %s\n", c.sess.SignatureName)
	}
	if c.sess.State == core.StateFinalized {
		c.section("Final email", c.sess.Finalized)
	}
}

func (c *Console) showAnalysis() {
	result := c.sess.Analysis
	if result == nil {
		return
	}
	if result.Sentiment != nil {
		c.printf("Sentiment: %s\n", result.Sentiment.Label)
	}
	c.section("Analysis", result.AnalysisText)
}

func (c *Console) listSignatures() {
	store := c.assistant.Signatures()
	names := store.Names()
	if len(names) == 0 {
		c.printf("No saved signatures. Use \"save-signature <name>\" to add one.\n")
		return
	}
	for _, name := range names {
		body, ok := store.Get(name)
		if !ok {
			continue
		}
		marker := " "
		if name == c.sess.SignatureName {
			marker = "*"
		}
		c.printf("%s %s\n", marker, name)
		for _, line := range strings.Split(body, "\n") {
			c.printf("      %s\n", line)
		}
	}
}

// report prints err the way the user needs to see it
func (c *Console) report(err error) {
	var (
		analysisErr   *core.AnalysisError
		generationErr *core.GenerationError
		transitionErr *core.TransitionError
	)
	switch {
	case errors.As(err, &analysisErr):
		c.warn("%s: %v", core.AnalysisFallbackText, analysisErr.Err)
	case errors.As(err, &generationErr):
		c.warn("%s: %v", core.GenerationFallbackText, generationErr.Err)
	case errors.As(err, &transitionErr):
		c.warn("%v", err)
	case core.IsDegrading(err):
		c.warn("%v (signature changes are disabled until the store can be read)", err)
	default:
		c.warn("%v", err)
	}
	if core.IsRetryable(err) {
		c.printf("You can try again.\n")
	}
	c.logger.Debug("Command failed", zap.Error(err))
}

func (c *Console) section(title, body string) {
	c.printf("=== %s ===\n%s\n", title, body)
}

func (c *Console) success(format string, args ...interface{}) {
	c.printf("OK: "+format+"\n", args...)
}

func (c *Console) warn(format string, args ...interface{}) {
	c.printf("Warning: "+format+"\n", args...)
}

func (c *Console) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format, args...)
}

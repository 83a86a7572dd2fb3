package core

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Assistant drives a Session through analyze, generate, customize and
// finalize. It holds no session state itself.
type Assistant struct {
	analyzer   EmailAnalyzer
	generator  ResponseGenerator
	signatures *SignatureStore
	exporter   Exporter
	logger     *zap.Logger
}

// NewAssistant creates a new assistant
func NewAssistant(
	analyzer EmailAnalyzer,
	generator ResponseGenerator,
	signatures *SignatureStore,
	exporter Exporter,
	logger *zap.Logger,
) *Assistant {
	return &Assistant{
		analyzer:   analyzer,
		generator:  generator,
		signatures: signatures,
		exporter:   exporter,
		logger:     logger,
	}
}

// Signatures returns the store backing signature selection
func (a *Assistant) Signatures() *SignatureStore {
	return a.signatures
}

// Analyze analyzes emailText. New text discards any draft built on the
// previous email; re-analyzing the same text keeps it.
func (a *Assistant) Analyze(ctx context.Context, sess Session, emailText string) (Session, error) {
	if strings.TrimSpace(emailText) == "" {
		return sess, &ValidationError{Field: "email text", Reason: "cannot be empty"}
	}

	result, err := a.analyzer.Analyze(ctx, emailText)
	if err != nil {
		return sess, err
	}

	next := sess
	if emailText != sess.EmailText {
		next = next.resetForward()
		next.State = StateAnalyzed
	}
	next.EmailText = emailText
	next.Analysis = result

	a.logger.Info("Email analyzed",
		zap.String("session_id", sess.ID),
		zap.Stringer("state", next.State))
	return next, nil
}

// GenerateResponse drafts a reply to the analyzed email in tone
func (a *Assistant) GenerateResponse(ctx context.Context, sess Session, tone Tone) (Session, error) {
	if sess.State < StateAnalyzed || sess.Analysis == nil {
		return sess, &TransitionError{Action: "generate a response", From: sess.State}
	}

	draft, err := a.generator.Generate(ctx, sess.Analysis.AnalysisText, tone)
	if err != nil {
		return sess, err
	}

	next := sess
	next.Tone = draft.Tone
	next.Draft = draft
	next.Customized = ""
	next.Finalized = ""
	next.State = StateResponseGenerated

	a.logger.Info("Response generated",
		zap.String("session_id", sess.ID),
		zap.String("tone", string(draft.Tone)))
	return next, nil
}

// Customize starts editing a copy of the generated draft
func (a *Assistant) Customize(sess Session) (Session, error) {
	if sess.State < StateResponseGenerated || sess.Draft == nil {
		return sess, &TransitionError{Action: "customize the email", From: sess.State}
	}

	next := sess
	next.Customized = sess.Draft.Text
	next.Finalized = ""
	next.State = StateCustomizing
	return next, nil
}

// EditDraft replaces the customized text. The state does not change.
func (a *Assistant) EditDraft(sess Session, text string) (Session, error) {
	if !sess.canEdit() {
		return sess, &TransitionError{Action: "edit the draft", From: sess.State}
	}

	next := sess
	next.Customized = text
	return next, nil
}

// SelectSignature picks the signature used by Finalize. An empty name clears
// the selection.
func (a *Assistant) SelectSignature(sess Session, name string) (Session, error) {
	if !sess.canEdit() {
		return sess, &TransitionError{Action: "select a signature", From: sess.State}
	}
	if name != "" {
		if _, ok := a.signatures.Get(name); !ok {
			return sess, &NotFoundError{Name: name}
		}
	}

	next := sess
	next.SignatureName = name
	return next, nil
}

// SaveSignature adds or updates a signature in the store
func (a *Assistant) SaveSignature(ctx context.Context, sess Session, name, body string) (Session, error) {
	if _, err := a.signatures.Upsert(ctx, name, body); err != nil {
		return sess, err
	}
	return sess, nil
}

// DeleteSignature removes a signature from the store and drops it from the
// session's selection
func (a *Assistant) DeleteSignature(ctx context.Context, sess Session, name string) (Session, error) {
	if _, err := a.signatures.Delete(ctx, name); err != nil {
		return sess, err
	}

	next := sess
	if next.SignatureName == name {
		next.SignatureName = ""
	}
	return next, nil
}

// Finalize assembles the customized text and the selected signature
func (a *Assistant) Finalize(sess Session) (Session, error) {
	if !sess.canEdit() {
		return sess, &TransitionError{Action: "finalize the email", From: sess.State}
	}

	signature := ""
	if sess.SignatureName != "" {
		body, ok := a.signatures.Get(sess.SignatureName)
		if !ok {
			return sess, &NotFoundError{Name: sess.SignatureName}
		}
		signature = body
	}

	next := sess
	next.Finalized = Finalize(sess.Customized, signature)
	next.State = StateFinalized

	a.logger.Info("Email finalized",
		zap.String("session_id", sess.ID),
		zap.String("signature", sess.SignatureName))
	return next, nil
}

// Export hands the finalized email to the configured exporter
func (a *Assistant) Export(ctx context.Context, sess Session) error {
	if sess.State != StateFinalized {
		return &TransitionError{Action: "export the email", From: sess.State}
	}

	email := &OutgoingEmail{
		SessionID:     sess.ID,
		Subject:       sess.Subject,
		Tone:          sess.Tone,
		SignatureName: sess.SignatureName,
		Text:          sess.Finalized,
	}
	if err := a.exporter.Export(ctx, email); err != nil {
		a.logger.Error("Failed to export email",
			zap.String("session_id", sess.ID),
			zap.String("target", a.exporter.Name()),
			zap.Error(err))
		return &ExportError{Target: a.exporter.Name(), Err: err}
	}

	a.logger.Info("Email exported",
		zap.String("session_id", sess.ID),
		zap.String("target", a.exporter.Name()))
	return nil
}

// ExportTarget names where Export sends finalized emails
func (a *Assistant) ExportTarget() string {
	return a.exporter.Name()
}

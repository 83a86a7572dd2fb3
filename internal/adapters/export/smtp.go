package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/mikey/llm-email-assistant/internal/config"
	"github.com/mikey/llm-email-assistant/internal/core"
	"go.uber.org/zap"
)

// SMTPExporter relays the finalized reply through an SMTP server
type SMTPExporter struct {
	cfg    config.SMTPConfig
	logger *zap.Logger
}

// NewSMTPExporter creates a new SMTP exporter
func NewSMTPExporter(cfg config.SMTPConfig, logger *zap.Logger) (*SMTPExporter, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("smtp address is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("smtp sender address is required")
	}
	if len(cfg.To) == 0 {
		return nil, fmt.Errorf("at least one smtp recipient is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &SMTPExporter{cfg: cfg, logger: logger}, nil
}

// Name implements core.Exporter
func (e *SMTPExporter) Name() string {
	return "smtp " + e.cfg.Address
}

// Export implements core.Exporter
func (e *SMTPExporter) Export(ctx context.Context, email *core.OutgoingEmail) error {
	var msg bytes.Buffer
	if err := e.writeMessage(&msg, email, time.Now()); err != nil {
		return err
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	dialer := net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", e.cfg.Address)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}

	deadline := time.Now().Add(e.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}

	if e.cfg.Username != "" {
		if err := c.Auth(sasl.NewPlainClient("", e.cfg.Username, e.cfg.Password)); err != nil {
			return fmt.Errorf("AUTH failed: %w", err)
		}
	}

	if err := c.Mail(e.cfg.From, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range e.cfg.To {
		if err := c.Rcpt(recipient, nil); err != nil {
			e.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
		} else {
			recipientOK = true
		}
	}
	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(msg.Bytes()); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		// Already delivered
		e.logger.Warn("QUIT command failed", zap.Error(err))
	}

	e.logger.Info("Finalized email sent",
		zap.String("server", e.cfg.Address),
		zap.Strings("to", e.cfg.To),
		zap.String("session_id", email.SessionID))
	return nil
}

// writeMessage renders a single-part text/plain message
func (e *SMTPExporter) writeMessage(w io.Writer, email *core.OutgoingEmail, date time.Time) error {
	var h mail.Header
	h.SetDate(date)
	h.SetAddressList("From", []*mail.Address{{Address: e.cfg.From}})

	to := make([]*mail.Address, 0, len(e.cfg.To))
	for _, addr := range e.cfg.To {
		to = append(to, &mail.Address{Address: addr})
	}
	h.SetAddressList("To", to)
	h.SetSubject(replySubject(email.Subject))
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	h.Set("Content-Transfer-Encoding", "quoted-printable")
	if email.SessionID != "" {
		h.Set("X-Assistant-Session", email.SessionID)
	}

	body, err := mail.CreateSingleInlineWriter(w, h)
	if err != nil {
		return fmt.Errorf("failed to create message writer: %w", err)
	}
	if _, err := io.WriteString(body, email.Text); err != nil {
		body.Close()
		return fmt.Errorf("failed to write message body: %w", err)
	}
	if err := body.Close(); err != nil {
		return fmt.Errorf("failed to finish message: %w", err)
	}
	return nil
}

func replySubject(subject string) string {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "Re: your email"
	}
	if strings.HasPrefix(strings.ToLower(subject), "re:") {
		return subject
	}
	return "Re: " + subject
}

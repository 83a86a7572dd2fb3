package source

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/mikey/llm-email-assistant/internal/core"
	"go.uber.org/zap"
)

// maxInputSize bounds how much of a pasted or loaded email is buffered
const maxInputSize = 5 * 1024 * 1024

var (
	headerLine = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9-]*:\s`)
	htmlTag    = regexp.MustCompile(`(?s)<[^>]*>`)
	blankLines = regexp.MustCompile(`\n{3,}`)
)

// knownHeaders must appear in a header block before it is treated as RFC 5322
var knownHeaders = map[string]bool{
	"from":         true,
	"to":           true,
	"subject":      true,
	"date":         true,
	"message-id":   true,
	"mime-version": true,
	"content-type": true,
}

// Parser turns pasted text or .eml files into emails
type Parser struct {
	logger *zap.Logger
}

// NewParser creates a new email parser
func NewParser(logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{logger: logger}
}

// ParseFile reads and parses the email stored at path
func (p *Parser) ParseFile(path string) (*core.Email, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open email file: %w", err)
	}
	defer f.Close()
	return p.Parse(f)
}

// Parse reads an email. Input that starts with a recognisable header block is
// parsed as a MIME message; anything else is taken as a plain text body.
func (p *Parser) Parse(r io.Reader) (*core.Email, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxInputSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read email: %w", err)
	}

	if !looksLikeMessage(raw) {
		return &core.Email{Body: string(raw)}, nil
	}

	email, err := p.parseMessage(raw)
	if err != nil {
		p.logger.Debug("Falling back to plain text", zap.Error(err))
		return &core.Email{Body: string(raw)}, nil
	}
	return email, nil
}

// looksLikeMessage checks the leading lines for a header block that contains
// at least one well known header
func looksLikeMessage(raw []byte) bool {
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	known := false
	lines := 0
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			return lines > 0 && known
		}
		lines++
		if line[0] == ' ' || line[0] == '\t' {
			if lines == 1 {
				return false
			}
			continue
		}
		if !headerLine.MatchString(line) {
			return false
		}
		name := strings.ToLower(line[:strings.Index(line, ":")])
		if knownHeaders[name] {
			known = true
		}
	}
	return false
}

func (p *Parser) parseMessage(raw []byte) (*core.Email, error) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil && !message.IsUnknownCharset(err) {
		return nil, fmt.Errorf("create mail reader: %w", err)
	}
	if mr == nil {
		return nil, fmt.Errorf("create mail reader returned nil")
	}
	if err != nil {
		p.logger.Debug("Mail reader created with charset warning", zap.Error(err))
	}
	defer mr.Close()

	email := &core.Email{}
	if subject, err := mr.Header.Subject(); err == nil {
		email.Subject = subject
	}
	if from, err := mr.Header.AddressList("From"); err == nil && len(from) > 0 {
		email.From = from[0].String()
	} else {
		email.From = mr.Header.Get("From")
	}
	if to, err := mr.Header.AddressList("To"); err == nil {
		for _, addr := range to {
			email.To = append(email.To, addr.Address)
		}
	}

	var plain, html string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil && !message.IsUnknownCharset(err) {
			if plain != "" || html != "" {
				break
			}
			return nil, fmt.Errorf("next part: %w", err)
		}
		if part == nil {
			continue
		}

		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := h.ContentType()
		if contentType == "" {
			contentType = "text/plain"
		}

		switch {
		case contentType == "text/plain" && plain == "":
			body, err := io.ReadAll(part.Body)
			if err != nil {
				p.logger.Debug("Error reading text/plain part", zap.Error(err))
				continue
			}
			plain = string(body)
		case contentType == "text/html" && html == "":
			body, err := io.ReadAll(part.Body)
			if err != nil {
				p.logger.Debug("Error reading text/html part", zap.Error(err))
				continue
			}
			html = string(body)
		}
	}

	switch {
	case strings.TrimSpace(plain) != "":
		email.Body = plain
	case html != "":
		email.Body = stripHTML(html)
	}
	return email, nil
}

// stripHTML reduces an HTML body to readable text
func stripHTML(html string) string {
	replacer := strings.NewReplacer(
		"<br>", "\n", "<br/>", "\n", "<br />", "\n",
		"</p>", "\n\n", "</div>", "\n", "</li>", "\n",
	)
	text := htmlTag.ReplaceAllString(replacer.Replace(html), "")
	text = strings.NewReplacer(
		"&nbsp;", " ", "&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&#39;", "'",
	).Replace(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.TrimSpace(blankLines.ReplaceAllString(text, "\n\n"))
}

// Text renders the email as the text handed to analysis, keeping the
// subject and sender when they are known
func Text(email *core.Email) string {
	var sb strings.Builder
	if email.From != "" {
		sb.WriteString("From: " + email.From + "\n")
	}
	if email.Subject != "" {
		sb.WriteString("Subject: " + email.Subject + "\n")
	}
	if sb.Len() > 0 {
		sb.WriteString("\n")
	}
	sb.WriteString(email.Body)
	return sb.String()
}

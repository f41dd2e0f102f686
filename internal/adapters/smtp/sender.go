package smtp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	gosmtp "github.com/emersion/go-smtp"
	"github.com/mikey/email-triage/internal/config"
	"go.uber.org/zap"
)

// Sender delivers reply emails over SMTP with STARTTLS and PLAIN auth
type Sender struct {
	cfg    *config.SMTPConfig
	logger *zap.Logger
}

// NewSender creates a new SMTP sender
func NewSender(cfg *config.SMTPConfig, logger *zap.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendReply sends a plain-text reply to the given recipient. The subject
// is prefixed with "Re: " unless it already carries one.
func (s *Sender) SendReply(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Server, s.cfg.Port)
	auth := sasl.NewPlainClient("", s.cfg.Address, s.cfg.Password)

	msg := s.buildMessage(to, subject, body)

	if err := gosmtp.SendMail(addr, auth, s.cfg.Address, []string{to}, strings.NewReader(msg)); err != nil {
		return fmt.Errorf("failed to send reply to %s: %w", to, err)
	}

	s.logger.Info("Sent reply",
		zap.String("to", to),
		zap.String("subject", subject))

	return nil
}

// buildMessage assembles an RFC 5322 message with CRLF line endings
func (s *Sender) buildMessage(to, subject, body string) string {
	if !strings.HasPrefix(strings.ToLower(subject), "re:") {
		subject = "Re: " + subject
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.cfg.Address)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	b.WriteString("\r\n")

	return b.String()
}

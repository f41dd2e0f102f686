package imap

import (
	"fmt"
	"io"
	"strings"
	"time"

	"context"

	goimap "github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/utils"
	"go.uber.org/zap"
)

// Fetcher pulls support emails from an IMAP mailbox.
//
// Each fetch dials a fresh connection and logs out when done, so the
// fetcher holds no long-lived IMAP state between polls.
type Fetcher struct {
	cfg           *config.MailboxConfig
	textProcessor *utils.TextProcessor
	logger        *zap.Logger
}

// NewFetcher creates a new IMAP fetcher
func NewFetcher(cfg *config.MailboxConfig, textProcessor *utils.TextProcessor, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		cfg:           cfg,
		textProcessor: textProcessor,
		logger:        logger,
	}
}

// FetchSupportEmails retrieves emails from the last daysBack days whose
// subject contains one of the configured support keywords.
func (f *Fetcher) FetchSupportEmails(ctx context.Context, daysBack int) ([]core.Email, error) {
	addr := fmt.Sprintf("%s:%d", f.cfg.Server, f.cfg.Port)

	f.logger.Debug("Connecting to IMAP server", zap.String("addr", addr))

	c, err := client.DialTLS(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to IMAP server: %w", err)
	}
	defer c.Logout()

	if err := c.Login(f.cfg.Address, f.cfg.Password); err != nil {
		return nil, fmt.Errorf("failed to login: %w", err)
	}

	mbox, err := c.Select(f.cfg.Folder, true)
	if err != nil {
		return nil, fmt.Errorf("failed to select mailbox %s: %w", f.cfg.Folder, err)
	}

	if mbox.Messages == 0 {
		return nil, nil
	}

	since := time.Now().AddDate(0, 0, -daysBack)
	criteria := goimap.NewSearchCriteria()
	criteria.Since = since

	uids, err := c.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to search emails: %w", err)
	}

	f.logger.Debug("IMAP search complete",
		zap.Int("matches", len(uids)),
		zap.String("since", since.Format("2006-01-02")))

	if len(uids) == 0 {
		return nil, nil
	}

	if f.cfg.FetchLimit > 0 && len(uids) > f.cfg.FetchLimit {
		// Keep the newest messages, UIDs are assigned in ascending order
		uids = uids[len(uids)-f.cfg.FetchLimit:]
	}

	seqSet := new(goimap.SeqSet)
	seqSet.AddNum(uids...)

	section := &goimap.BodySectionName{Peek: true}
	items := []goimap.FetchItem{goimap.FetchEnvelope, goimap.FetchUid, section.FetchItem()}

	messages := make(chan *goimap.Message, len(uids))
	done := make(chan error, 1)
	go func() {
		done <- c.UidFetch(seqSet, items, messages)
	}()

	var emails []core.Email
	for msg := range messages {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		email, ok := f.parseMessage(msg, section)
		if !ok {
			continue
		}
		if !f.isSupportEmail(email.Subject) {
			continue
		}
		emails = append(emails, email)
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	f.logger.Info("Fetched support emails",
		zap.Int("support", len(emails)),
		zap.Int("scanned", len(uids)))

	return emails, nil
}

// isSupportEmail checks the subject against the configured keywords. An
// empty keyword list accepts everything.
func (f *Fetcher) isSupportEmail(subject string) bool {
	if len(f.cfg.SupportKeywords) == 0 {
		return true
	}
	lowered := strings.ToLower(subject)
	for _, keyword := range f.cfg.SupportKeywords {
		if strings.Contains(lowered, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

// parseMessage converts a raw IMAP message into a core email
func (f *Fetcher) parseMessage(msg *goimap.Message, section *goimap.BodySectionName) (core.Email, bool) {
	if msg == nil || msg.Envelope == nil {
		return core.Email{}, false
	}

	email := core.Email{
		Subject:    msg.Envelope.Subject,
		ReceivedAt: msg.Envelope.Date.UTC(),
	}

	if len(msg.Envelope.From) > 0 {
		email.SenderEmail = msg.Envelope.From[0].Address()
	}
	if email.SenderEmail == "" {
		return core.Email{}, false
	}

	r := msg.GetBody(section)
	if r == nil {
		return email, true
	}

	mr, err := mail.CreateReader(r)
	if err != nil {
		f.logger.Warn("Failed to parse message body",
			zap.String("sender", email.SenderEmail),
			zap.Error(err))
		return email, true
	}

	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		switch h := p.Header.(type) {
		case *mail.InlineHeader:
			ct, _, _ := h.ContentType()
			if strings.HasPrefix(ct, "text/plain") && email.Body == "" {
				body, _ := io.ReadAll(p.Body)
				email.Body = f.textProcessor.CleanEmailBody(string(body))
			}
		}
	}

	return email, true
}

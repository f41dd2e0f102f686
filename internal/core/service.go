package core

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// TriageService glues the analyzer and response generator to the mailbox and
// repository adapters. It is the entry point the HTTP layer and the CLI
// tools call into.
type TriageService struct {
	analyzer  *EmailAnalyzer
	responder *ResponseGenerator
	repo      EmailRepository
	fetcher   MailFetcher // nil when mailbox polling is not configured
	sender    MailSender  // nil when outbound mail is not configured
	logger    *zap.Logger
}

// NewTriageService creates a new triage service
func NewTriageService(
	analyzer *EmailAnalyzer,
	responder *ResponseGenerator,
	repo EmailRepository,
	fetcher MailFetcher,
	sender MailSender,
	logger *zap.Logger,
) *TriageService {
	return &TriageService{
		analyzer:  analyzer,
		responder: responder,
		repo:      repo,
		fetcher:   fetcher,
		sender:    sender,
		logger:    logger,
	}
}

// Ingest analyzes a raw email and persists the record. Emails already stored
// (same sender, subject and received time) are skipped; the second return
// value reports whether a new record was created.
func (s *TriageService) Ingest(ctx context.Context, email *Email) (*EmailRecord, bool, error) {
	exists, err := s.repo.Exists(ctx, email.SenderEmail, email.Subject, email.ReceivedAt)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check for duplicate email: %w", err)
	}
	if exists {
		s.logger.Debug("Skipping duplicate email",
			zap.String("sender", email.SenderEmail),
			zap.String("subject", email.Subject))
		return nil, false, nil
	}

	analysis := s.analyzer.Analyze(email)
	rec := NewEmailRecord(email, analysis)

	id, err := s.repo.Save(ctx, rec)
	if err != nil {
		return nil, false, fmt.Errorf("failed to save email: %w", err)
	}
	rec.ID = id

	s.logger.Info("Ingested email",
		zap.Int64("id", id),
		zap.String("sender", email.SenderEmail),
		zap.String("priority", analysis.Priority),
		zap.String("category", analysis.Category))

	return rec, true, nil
}

// FetchAndIngest pulls support emails from the configured mailbox and
// ingests each one. It returns the number of newly stored emails.
func (s *TriageService) FetchAndIngest(ctx context.Context, daysBack int) (int, error) {
	if s.fetcher == nil {
		return 0, fmt.Errorf("no mailbox configured")
	}

	emails, err := s.fetcher.FetchSupportEmails(ctx, daysBack)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch emails: %w", err)
	}

	stored := 0
	for i := range emails {
		if _, created, err := s.Ingest(ctx, &emails[i]); err != nil {
			s.logger.Error("Failed to ingest fetched email",
				zap.String("sender", emails[i].SenderEmail),
				zap.Error(err))
		} else if created {
			stored++
		}
	}

	s.logger.Info("Mailbox fetch complete",
		zap.Int("fetched", len(emails)),
		zap.Int("stored", stored))
	return stored, nil
}

// GenerateDraft produces a reply draft for a stored email and persists it on
// the record.
func (s *TriageService) GenerateDraft(ctx context.Context, id int64, customContext string) (*EmailRecord, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	email, analysis := rec.Restore()
	draft := s.responder.Generate(ctx, email, analysis, customContext)

	rec.DraftResponse = draft
	rec.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to store draft: %w", err)
	}

	return rec, nil
}

// SendReply sends the drafted (or caller-supplied) response to the email's
// sender and marks the record processed.
func (s *TriageService) SendReply(ctx context.Context, id int64, customResponse string) error {
	if s.sender == nil {
		return fmt.Errorf("no outbound mail configured")
	}

	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if rec.ResponseSent {
		return ErrResponseAlreadySent
	}

	body := customResponse
	if body == "" {
		body = rec.DraftResponse
	}
	if body == "" {
		return ErrNoResponseDraft
	}

	if err := s.sender.SendReply(ctx, rec.SenderEmail, rec.Subject, body); err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}

	now := time.Now()
	rec.ResponseSent = true
	rec.ResponseSentAt = &now
	rec.Processed = true
	if customResponse != "" {
		rec.DraftResponse = customResponse
	}
	rec.UpdatedAt = now
	if err := s.repo.Update(ctx, rec); err != nil {
		return fmt.Errorf("failed to record sent reply: %w", err)
	}

	s.logger.Info("Sent reply",
		zap.Int64("id", id),
		zap.String("to", rec.SenderEmail))
	return nil
}

// MarkProcessed flags a record as handled without sending a reply
func (s *TriageService) MarkProcessed(ctx context.Context, id int64) error {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	rec.Processed = true
	rec.UpdatedAt = time.Now()
	return s.repo.Update(ctx, rec)
}

// Stats aggregates dashboard statistics for the last 24 hours
func (s *TriageService) Stats(ctx context.Context) (*DashboardStats, error) {
	return s.repo.Stats(ctx, time.Now().Add(-24*time.Hour))
}

// NewEmailRecord builds a persistable record from an email and its analysis.
// The structured analysis fields are serialized to JSON text so storage
// treats them as opaque strings.
func NewEmailRecord(email *Email, analysis *EmailAnalysis) *EmailRecord {
	now := time.Now()
	return &EmailRecord{
		SenderEmail:         email.SenderEmail,
		Subject:             email.Subject,
		Body:                email.Body,
		ReceivedAt:          email.ReceivedAt,
		Sentiment:           analysis.Sentiment,
		SentimentScore:      analysis.SentimentScore,
		Priority:            analysis.Priority,
		Category:            analysis.Category,
		ContactDetails:      marshalJSON(analysis.ContactDetails),
		Requirements:        marshalJSON(analysis.Requirements),
		SentimentIndicators: marshalJSON(analysis.SentimentIndicators),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// Restore rebuilds the email and analysis views of a stored record. Corrupt
// JSON in the structured fields degrades to empty values rather than failing.
func (r *EmailRecord) Restore() (*Email, *EmailAnalysis) {
	email := &Email{
		SenderEmail: r.SenderEmail,
		Subject:     r.Subject,
		Body:        r.Body,
		ReceivedAt:  r.ReceivedAt,
	}

	analysis := &EmailAnalysis{
		Sentiment:           r.Sentiment,
		SentimentScore:      r.SentimentScore,
		Priority:            r.Priority,
		Category:            r.Category,
		Requirements:        []string{},
		SentimentIndicators: []string{},
		ContactDetails:      ContactDetails{PrimaryEmail: r.SenderEmail},
	}
	if r.Requirements != "" {
		_ = json.Unmarshal([]byte(r.Requirements), &analysis.Requirements)
	}
	if r.SentimentIndicators != "" {
		_ = json.Unmarshal([]byte(r.SentimentIndicators), &analysis.SentimentIndicators)
	}
	if r.ContactDetails != "" {
		_ = json.Unmarshal([]byte(r.ContactDetails), &analysis.ContactDetails)
	}

	return email, analysis
}

func marshalJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

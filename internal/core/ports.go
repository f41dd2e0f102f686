package core

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrEmailNotFound is returned when an email record does not exist
	ErrEmailNotFound = errors.New("email not found")
	// ErrResponseAlreadySent is returned when a reply was already sent
	ErrResponseAlreadySent = errors.New("response already sent")
	// ErrNoResponseDraft is returned when there is nothing to send
	ErrNoResponseDraft = errors.New("no response available to send")
)

// ResponseBackend defines the interface for external generative response
// drafting. Implementations make one bounded outbound request; all of their
// failures are absorbed by the ResponseGenerator's template fallback.
type ResponseBackend interface {
	// DraftResponse produces a reply body for the analyzed email
	DraftResponse(ctx context.Context, email *Email, analysis *EmailAnalysis, customContext string) (string, error)
}

// ListFilter narrows a repository listing
type ListFilter struct {
	Priority  string
	Sentiment string
	Processed *bool
	Offset    int
	Limit     int
}

// EmailRepository defines the interface for persisting triaged emails
type EmailRepository interface {
	// Save stores a new record and returns its assigned ID
	Save(ctx context.Context, rec *EmailRecord) (int64, error)

	// Get retrieves a record by ID
	Get(ctx context.Context, id int64) (*EmailRecord, error)

	// List retrieves records matching the filter, urgent first then newest
	List(ctx context.Context, filter ListFilter) ([]*EmailRecord, error)

	// Exists reports whether a record with the same sender, subject and
	// received time is already stored
	Exists(ctx context.Context, senderEmail, subject string, receivedAt time.Time) (bool, error)

	// Update overwrites the mutable fields of an existing record
	Update(ctx context.Context, rec *EmailRecord) error

	// Delete removes a record
	Delete(ctx context.Context, id int64) error

	// Stats aggregates dashboard statistics for records received since the
	// given time
	Stats(ctx context.Context, since time.Time) (*DashboardStats, error)
}

// MailFetcher defines the interface for pulling support emails from a mailbox
type MailFetcher interface {
	// FetchSupportEmails returns support emails received in the last daysBack days
	FetchSupportEmails(ctx context.Context, daysBack int) ([]Email, error)
}

// MailSender defines the interface for sending reply emails
type MailSender interface {
	// SendReply sends a plain-text reply to the given recipient
	SendReply(ctx context.Context, to, subject, body string) error
}

package core

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeRepo struct {
	records map[int64]*EmailRecord
	nextID  int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: make(map[int64]*EmailRecord), nextID: 1}
}

func (r *fakeRepo) Save(ctx context.Context, rec *EmailRecord) (int64, error) {
	stored := *rec
	stored.ID = r.nextID
	r.nextID++
	r.records[stored.ID] = &stored
	return stored.ID, nil
}

func (r *fakeRepo) Get(ctx context.Context, id int64) (*EmailRecord, error) {
	rec, ok := r.records[id]
	if !ok {
		return nil, ErrEmailNotFound
	}
	copied := *rec
	return &copied, nil
}

func (r *fakeRepo) List(ctx context.Context, filter ListFilter) ([]*EmailRecord, error) {
	out := []*EmailRecord{}
	for _, rec := range r.records {
		copied := *rec
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeRepo) Exists(ctx context.Context, senderEmail, subject string, receivedAt time.Time) (bool, error) {
	for _, rec := range r.records {
		if rec.SenderEmail == senderEmail && rec.Subject == subject && rec.ReceivedAt.Equal(receivedAt) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) Update(ctx context.Context, rec *EmailRecord) error {
	if _, ok := r.records[rec.ID]; !ok {
		return ErrEmailNotFound
	}
	stored := *rec
	r.records[rec.ID] = &stored
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.records[id]; !ok {
		return ErrEmailNotFound
	}
	delete(r.records, id)
	return nil
}

func (r *fakeRepo) Stats(ctx context.Context, since time.Time) (*DashboardStats, error) {
	return &DashboardStats{TotalEmails: len(r.records)}, nil
}

type fakeSender struct {
	to      string
	subject string
	body    string
	err     error
	calls   int
}

func (s *fakeSender) SendReply(ctx context.Context, to, subject, body string) error {
	s.calls++
	s.to = to
	s.subject = subject
	s.body = body
	return s.err
}

type fakeFetcher struct {
	emails []Email
	err    error
}

func (f *fakeFetcher) FetchSupportEmails(ctx context.Context, daysBack int) ([]Email, error) {
	return f.emails, f.err
}

func newTestService(repo EmailRepository, fetcher MailFetcher, sender MailSender) *TriageService {
	logger := zap.NewNop()
	kb := DefaultKnowledgeBase()
	analyzer := NewEmailAnalyzer(kb, logger)
	responder := NewResponseGenerator(nil, kb, logger)
	return NewTriageService(analyzer, responder, repo, fetcher, sender, logger)
}

func testEmail() *Email {
	return &Email{
		SenderEmail: "customer@example.com",
		Subject:     "Billing problem",
		Body:        "I need to dispute a charge on my invoice.",
		ReceivedAt:  time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC),
	}
}

func TestIngestAnalyzesAndStores(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil, nil)

	rec, created, err := svc.Ingest(context.Background(), testEmail())
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if !created {
		t.Fatal("Ingest() created = false, want true")
	}
	if rec.ID == 0 {
		t.Error("record was not assigned an ID")
	}
	if rec.Category != CategoryBillingInquiry {
		t.Errorf("Category = %q, want %q", rec.Category, CategoryBillingInquiry)
	}
	if rec.Processed {
		t.Error("new records must start unprocessed")
	}
}

func TestIngestSkipsDuplicates(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil, nil)

	if _, created, err := svc.Ingest(context.Background(), testEmail()); err != nil || !created {
		t.Fatalf("first Ingest() = created %v, err %v", created, err)
	}
	rec, created, err := svc.Ingest(context.Background(), testEmail())
	if err != nil {
		t.Fatalf("second Ingest() error = %v", err)
	}
	if created || rec != nil {
		t.Errorf("second Ingest() = (%v, %v), want (nil, false)", rec, created)
	}
	if len(repo.records) != 1 {
		t.Errorf("stored %d records, want 1", len(repo.records))
	}
}

func TestFetchAndIngest(t *testing.T) {
	repo := newFakeRepo()
	fetcher := &fakeFetcher{emails: []Email{*testEmail(), *testEmail()}}
	svc := newTestService(repo, fetcher, nil)

	stored, err := svc.FetchAndIngest(context.Background(), 1)
	if err != nil {
		t.Fatalf("FetchAndIngest() error = %v", err)
	}
	if stored != 1 {
		t.Errorf("stored = %d, want 1 (second fetch result is a duplicate)", stored)
	}
}

func TestFetchAndIngestWithoutMailbox(t *testing.T) {
	svc := newTestService(newFakeRepo(), nil, nil)

	if _, err := svc.FetchAndIngest(context.Background(), 1); err == nil {
		t.Error("FetchAndIngest() without a fetcher should fail")
	}
}

func TestGenerateDraftPersists(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil, nil)

	rec, _, err := svc.Ingest(context.Background(), testEmail())
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	updated, err := svc.GenerateDraft(context.Background(), rec.ID, "")
	if err != nil {
		t.Fatalf("GenerateDraft() error = %v", err)
	}
	if !strings.Contains(updated.DraftResponse, "Customer Support Team") {
		t.Errorf("DraftResponse = %q, want template reply", updated.DraftResponse)
	}

	stored, err := repo.Get(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored.DraftResponse != updated.DraftResponse {
		t.Error("draft was not persisted")
	}
}

func TestGenerateDraftUnknownID(t *testing.T) {
	svc := newTestService(newFakeRepo(), nil, nil)

	if _, err := svc.GenerateDraft(context.Background(), 42, ""); !errors.Is(err, ErrEmailNotFound) {
		t.Errorf("GenerateDraft() error = %v, want ErrEmailNotFound", err)
	}
}

func TestSendReply(t *testing.T) {
	repo := newFakeRepo()
	sender := &fakeSender{}
	svc := newTestService(repo, nil, sender)

	rec, _, err := svc.Ingest(context.Background(), testEmail())
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if _, err := svc.GenerateDraft(context.Background(), rec.ID, ""); err != nil {
		t.Fatalf("GenerateDraft() error = %v", err)
	}

	if err := svc.SendReply(context.Background(), rec.ID, ""); err != nil {
		t.Fatalf("SendReply() error = %v", err)
	}
	if sender.calls != 1 || sender.to != "customer@example.com" {
		t.Errorf("sender called %d times for %q, want once for customer@example.com", sender.calls, sender.to)
	}

	stored, _ := repo.Get(context.Background(), rec.ID)
	if !stored.ResponseSent || stored.ResponseSentAt == nil || !stored.Processed {
		t.Errorf("record not marked sent/processed: %+v", stored)
	}

	if err := svc.SendReply(context.Background(), rec.ID, ""); !errors.Is(err, ErrResponseAlreadySent) {
		t.Errorf("second SendReply() error = %v, want ErrResponseAlreadySent", err)
	}
}

func TestSendReplyCustomResponse(t *testing.T) {
	repo := newFakeRepo()
	sender := &fakeSender{}
	svc := newTestService(repo, nil, sender)

	rec, _, err := svc.Ingest(context.Background(), testEmail())
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if err := svc.SendReply(context.Background(), rec.ID, "Here is a manual reply."); err != nil {
		t.Fatalf("SendReply() error = %v", err)
	}
	if sender.body != "Here is a manual reply." {
		t.Errorf("sent body = %q, want custom response", sender.body)
	}

	stored, _ := repo.Get(context.Background(), rec.ID)
	if stored.DraftResponse != "Here is a manual reply." {
		t.Errorf("DraftResponse = %q, want the custom response recorded", stored.DraftResponse)
	}
}

func TestSendReplyWithoutDraft(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil, &fakeSender{})

	rec, _, err := svc.Ingest(context.Background(), testEmail())
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if err := svc.SendReply(context.Background(), rec.ID, ""); !errors.Is(err, ErrNoResponseDraft) {
		t.Errorf("SendReply() error = %v, want ErrNoResponseDraft", err)
	}
}

func TestMarkProcessed(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil, nil)

	rec, _, err := svc.Ingest(context.Background(), testEmail())
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if err := svc.MarkProcessed(context.Background(), rec.ID); err != nil {
		t.Fatalf("MarkProcessed() error = %v", err)
	}
	stored, _ := repo.Get(context.Background(), rec.ID)
	if !stored.Processed {
		t.Error("record not marked processed")
	}
}

func TestEmailRecordRoundTrip(t *testing.T) {
	email := testEmail()
	analyzer := NewEmailAnalyzer(DefaultKnowledgeBase(), zap.NewNop())
	analysis := analyzer.Analyze(email)

	rec := NewEmailRecord(email, analysis)
	gotEmail, gotAnalysis := rec.Restore()

	if gotEmail.SenderEmail != email.SenderEmail || gotEmail.Subject != email.Subject {
		t.Errorf("restored email = %+v, want %+v", gotEmail, email)
	}
	if !reflect.DeepEqual(gotAnalysis, analysis) {
		t.Errorf("restored analysis = %+v, want %+v", gotAnalysis, analysis)
	}
}

func TestEmailRecordRestoreCorruptJSON(t *testing.T) {
	rec := &EmailRecord{
		SenderEmail:         "a@example.com",
		Requirements:        "{not json",
		SentimentIndicators: "also not json",
		ContactDetails:      "nope",
	}

	_, analysis := rec.Restore()
	if analysis.Requirements == nil || len(analysis.Requirements) != 0 {
		t.Errorf("Requirements = %v, want empty non-nil slice", analysis.Requirements)
	}
	if analysis.ContactDetails.PrimaryEmail != "a@example.com" {
		t.Errorf("PrimaryEmail = %q, want sender fallback", analysis.ContactDetails.PrimaryEmail)
	}
}

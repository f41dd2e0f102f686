package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mikey/email-triage/internal/core"
	"go.uber.org/zap"
)

func testRecord(sender string, receivedAt time.Time, priority string) *core.EmailRecord {
	return &core.EmailRecord{
		SenderEmail:         sender,
		Subject:             "Subject for " + sender,
		Body:                "body",
		ReceivedAt:          receivedAt,
		Sentiment:           core.SentimentNeutral,
		SentimentScore:      0.5,
		Priority:            priority,
		Category:            core.CategoryGeneralInquiry,
		ContactDetails:      "{}",
		Requirements:        "[]",
		SentimentIndicators: "[]",
		CreatedAt:           receivedAt,
		UpdatedAt:           receivedAt,
	}
}

func TestMemoryStoreSaveAndGet(t *testing.T) {
	s := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	rec := testRecord("a@example.com", time.Now().UTC(), core.PriorityNotUrgent)
	id, err := s.Save(ctx, rec)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if id == 0 {
		t.Fatal("Save() assigned no ID")
	}

	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.SenderEmail != rec.SenderEmail || got.Subject != rec.Subject {
		t.Errorf("Get() = %+v, want saved record", got)
	}

	if _, err := s.Get(ctx, id+100); !errors.Is(err, core.ErrEmailNotFound) {
		t.Errorf("Get(unknown) error = %v, want ErrEmailNotFound", err)
	}
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	s := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	id, _ := s.Save(ctx, testRecord("a@example.com", time.Now().UTC(), core.PriorityNotUrgent))

	first, _ := s.Get(ctx, id)
	first.Subject = "mutated"

	second, _ := s.Get(ctx, id)
	if second.Subject == "mutated" {
		t.Error("Get() must return a copy, not shared state")
	}
}

func TestMemoryStoreExists(t *testing.T) {
	s := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	receivedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rec := testRecord("a@example.com", receivedAt, core.PriorityNotUrgent)
	if _, err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	exists, err := s.Exists(ctx, "a@example.com", rec.Subject, receivedAt)
	if err != nil || !exists {
		t.Errorf("Exists(saved) = %v, %v, want true, nil", exists, err)
	}

	exists, err = s.Exists(ctx, "a@example.com", rec.Subject, receivedAt.Add(time.Minute))
	if err != nil || exists {
		t.Errorf("Exists(different time) = %v, %v, want false, nil", exists, err)
	}
}

func TestMemoryStoreListOrderingAndFilters(t *testing.T) {
	s := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	oldUrgent := testRecord("old-urgent@example.com", base, core.PriorityUrgent)
	newCalm := testRecord("new-calm@example.com", base.Add(2*time.Hour), core.PriorityNotUrgent)
	newUrgent := testRecord("new-urgent@example.com", base.Add(time.Hour), core.PriorityUrgent)
	newUrgent.Processed = true

	for _, rec := range []*core.EmailRecord{oldUrgent, newCalm, newUrgent} {
		if _, err := s.Save(ctx, rec); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	all, err := s.List(ctx, core.ListFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	wantOrder := []string{"new-urgent@example.com", "old-urgent@example.com", "new-calm@example.com"}
	if len(all) != len(wantOrder) {
		t.Fatalf("List() returned %d records, want %d", len(all), len(wantOrder))
	}
	for i, sender := range wantOrder {
		if all[i].SenderEmail != sender {
			t.Errorf("List()[%d] = %q, want %q", i, all[i].SenderEmail, sender)
		}
	}

	urgent, err := s.List(ctx, core.ListFilter{Priority: core.PriorityUrgent})
	if err != nil {
		t.Fatalf("List(urgent) error = %v", err)
	}
	if len(urgent) != 2 {
		t.Errorf("List(urgent) returned %d records, want 2", len(urgent))
	}

	processed := false
	unprocessed, err := s.List(ctx, core.ListFilter{Processed: &processed})
	if err != nil {
		t.Fatalf("List(unprocessed) error = %v", err)
	}
	if len(unprocessed) != 2 {
		t.Errorf("List(unprocessed) returned %d records, want 2", len(unprocessed))
	}

	paged, err := s.List(ctx, core.ListFilter{Offset: 1, Limit: 1})
	if err != nil {
		t.Fatalf("List(paged) error = %v", err)
	}
	if len(paged) != 1 || paged[0].SenderEmail != "old-urgent@example.com" {
		t.Errorf("List(offset 1, limit 1) = %v, want the second record", paged)
	}

	empty, err := s.List(ctx, core.ListFilter{Offset: 10})
	if err != nil {
		t.Fatalf("List(large offset) error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("List(large offset) returned %d records, want 0", len(empty))
	}
}

func TestMemoryStoreUpdateAndDelete(t *testing.T) {
	s := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	rec := testRecord("a@example.com", time.Now().UTC(), core.PriorityNotUrgent)
	id, _ := s.Save(ctx, rec)

	stored, _ := s.Get(ctx, id)
	stored.DraftResponse = "drafted"
	stored.Processed = true
	if err := s.Update(ctx, stored); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, _ := s.Get(ctx, id)
	if got.DraftResponse != "drafted" || !got.Processed {
		t.Errorf("Update() not applied: %+v", got)
	}

	missing := testRecord("b@example.com", time.Now().UTC(), core.PriorityNotUrgent)
	missing.ID = id + 100
	if err := s.Update(ctx, missing); !errors.Is(err, core.ErrEmailNotFound) {
		t.Errorf("Update(unknown) error = %v, want ErrEmailNotFound", err)
	}

	if err := s.Delete(ctx, id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete(ctx, id); !errors.Is(err, core.ErrEmailNotFound) {
		t.Errorf("second Delete() error = %v, want ErrEmailNotFound", err)
	}
}

func TestMemoryStoreStats(t *testing.T) {
	s := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	since := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	inWindow := testRecord("in@example.com", since.Add(time.Hour), core.PriorityUrgent)
	inWindow.Sentiment = core.SentimentNegative
	inWindow.Processed = true

	alsoIn := testRecord("also@example.com", since.Add(time.Hour+10*time.Minute), core.PriorityNotUrgent)
	alsoIn.Sentiment = core.SentimentPositive

	before := testRecord("before@example.com", since.Add(-time.Hour), core.PriorityUrgent)

	for _, rec := range []*core.EmailRecord{inWindow, alsoIn, before} {
		if _, err := s.Save(ctx, rec); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	stats, err := s.Stats(ctx, since)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}

	if stats.TotalEmails != 2 {
		t.Errorf("TotalEmails = %d, want 2", stats.TotalEmails)
	}
	if stats.ProcessedEmails != 1 || stats.PendingEmails != 1 {
		t.Errorf("Processed/Pending = %d/%d, want 1/1", stats.ProcessedEmails, stats.PendingEmails)
	}
	if stats.UrgentEmails != 1 {
		t.Errorf("UrgentEmails = %d, want 1", stats.UrgentEmails)
	}
	if stats.Sentiment.Negative != 1 || stats.Sentiment.Positive != 1 || stats.Sentiment.Neutral != 0 {
		t.Errorf("Sentiment breakdown = %+v, want 1 negative, 1 positive", stats.Sentiment)
	}
	if stats.Priority.Urgent != 1 || stats.Priority.NotUrgent != 1 {
		t.Errorf("Priority breakdown = %+v, want 1/1", stats.Priority)
	}

	if len(stats.Hourly) != 24 {
		t.Fatalf("Hourly has %d buckets, want 24", len(stats.Hourly))
	}
	if stats.Hourly[0].Hour != "2025-06-01 00:00" {
		t.Errorf("first bucket = %q, want %q", stats.Hourly[0].Hour, "2025-06-01 00:00")
	}
	if stats.Hourly[1].Count != 2 {
		t.Errorf("01:00 bucket count = %d, want 2", stats.Hourly[1].Count)
	}
}

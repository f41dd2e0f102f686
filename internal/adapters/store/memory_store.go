package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mikey/email-triage/internal/core"
	"go.uber.org/zap"
)

// MemoryStore is an in-memory implementation of the EmailRepository
// interface, used by the CLI tools and in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[int64]*core.EmailRecord
	nextID  int64
	logger  *zap.Logger
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		records: make(map[int64]*core.EmailRecord),
		nextID:  1,
		logger:  logger,
	}
}

// Save stores a new record and returns its assigned ID
func (s *MemoryStore) Save(ctx context.Context, rec *core.EmailRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *rec
	stored.ID = s.nextID
	s.nextID++
	s.records[stored.ID] = &stored

	return stored.ID, nil
}

// Get retrieves a record by ID
func (s *MemoryStore) Get(ctx context.Context, id int64) (*core.EmailRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, core.ErrEmailNotFound
	}
	copied := *rec
	return &copied, nil
}

// List retrieves records matching the filter, urgent first then newest
func (s *MemoryStore) List(ctx context.Context, filter core.ListFilter) ([]*core.EmailRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*core.EmailRecord, 0, len(s.records))
	for _, rec := range s.records {
		if filter.Priority != "" && rec.Priority != filter.Priority {
			continue
		}
		if filter.Sentiment != "" && rec.Sentiment != filter.Sentiment {
			continue
		}
		if filter.Processed != nil && rec.Processed != *filter.Processed {
			continue
		}
		copied := *rec
		matched = append(matched, &copied)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Priority != matched[j].Priority {
			return matched[i].Priority == core.PriorityUrgent
		}
		return matched[i].ReceivedAt.After(matched[j].ReceivedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return []*core.EmailRecord{}, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}

	return matched, nil
}

// Exists reports whether a matching record is already stored
func (s *MemoryStore) Exists(ctx context.Context, senderEmail, subject string, receivedAt time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.records {
		if rec.SenderEmail == senderEmail && rec.Subject == subject && rec.ReceivedAt.Equal(receivedAt) {
			return true, nil
		}
	}
	return false, nil
}

// Update overwrites an existing record
func (s *MemoryStore) Update(ctx context.Context, rec *core.EmailRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[rec.ID]; !ok {
		return core.ErrEmailNotFound
	}
	stored := *rec
	s.records[rec.ID] = &stored
	return nil
}

// Delete removes a record
func (s *MemoryStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return core.ErrEmailNotFound
	}
	delete(s.records, id)
	return nil
}

// Stats aggregates dashboard statistics for records received since the given
// time
func (s *MemoryStore) Stats(ctx context.Context, since time.Time) (*core.DashboardStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &core.DashboardStats{}
	buckets := make(map[string]int)

	for _, rec := range s.records {
		if rec.ReceivedAt.Before(since) {
			continue
		}
		stats.TotalEmails++
		if rec.Processed {
			stats.ProcessedEmails++
		}
		if rec.Priority == core.PriorityUrgent {
			stats.UrgentEmails++
		}
		switch rec.Sentiment {
		case core.SentimentPositive:
			stats.Sentiment.Positive++
		case core.SentimentNegative:
			stats.Sentiment.Negative++
		case core.SentimentNeutral:
			stats.Sentiment.Neutral++
		}
		switch rec.Priority {
		case core.PriorityUrgent:
			stats.Priority.Urgent++
		case core.PriorityNotUrgent:
			stats.Priority.NotUrgent++
		}
		buckets[rec.ReceivedAt.UTC().Format(hourBucketFormat)]++
	}

	stats.PendingEmails = stats.TotalEmails - stats.ProcessedEmails
	stats.Hourly = hourlyBuckets(since, buckets)
	return stats, nil
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikey/email-triage/internal/core"
	"go.uber.org/zap"
)

// SQLiteStore is a SQLite implementation of the EmailRepository interface
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore creates a new SQLite store
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS emails (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sender_email TEXT NOT NULL,
			subject TEXT NOT NULL,
			body TEXT NOT NULL,
			received_at TIMESTAMP,
			sentiment TEXT,
			sentiment_score REAL,
			priority TEXT,
			category TEXT,
			contact_details TEXT,
			requirements TEXT,
			sentiment_indicators TEXT,
			draft_response TEXT,
			response_sent BOOLEAN DEFAULT 0,
			response_sent_at TIMESTAMP,
			processed BOOLEAN DEFAULT 0,
			created_at TIMESTAMP,
			updated_at TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	// Index on received_at for listings and dashboard windows
	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_emails_received_at ON emails(received_at)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger,
	}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const emailColumns = `id, sender_email, subject, body, received_at, sentiment, sentiment_score,
	priority, category, contact_details, requirements, sentiment_indicators,
	draft_response, response_sent, response_sent_at, processed, created_at, updated_at`

// Save stores a new record and returns its assigned ID
func (s *SQLiteStore) Save(ctx context.Context, rec *core.EmailRecord) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO emails (
			sender_email, subject, body, received_at, sentiment, sentiment_score,
			priority, category, contact_details, requirements, sentiment_indicators,
			draft_response, response_sent, response_sent_at, processed, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.SenderEmail, rec.Subject, rec.Body, formatTime(rec.ReceivedAt),
		rec.Sentiment, rec.SentimentScore, rec.Priority, rec.Category,
		rec.ContactDetails, rec.Requirements, rec.SentimentIndicators,
		rec.DraftResponse, rec.ResponseSent, formatNullableTime(rec.ResponseSentAt),
		rec.Processed, formatTime(rec.CreatedAt), formatTime(rec.UpdatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert email: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted id: %w", err)
	}
	return id, nil
}

// Get retrieves a record by ID
func (s *SQLiteStore) Get(ctx context.Context, id int64) (*core.EmailRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+emailColumns+` FROM emails WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, core.ErrEmailNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query email: %w", err)
	}
	return rec, nil
}

// List retrieves records matching the filter, urgent first then newest
func (s *SQLiteStore) List(ctx context.Context, filter core.ListFilter) ([]*core.EmailRecord, error) {
	var conditions []string
	var args []interface{}

	if filter.Priority != "" {
		conditions = append(conditions, "priority = ?")
		args = append(args, filter.Priority)
	}
	if filter.Sentiment != "" {
		conditions = append(conditions, "sentiment = ?")
		args = append(args, filter.Sentiment)
	}
	if filter.Processed != nil {
		conditions = append(conditions, "processed = ?")
		args = append(args, *filter.Processed)
	}

	query := `SELECT ` + emailColumns + ` FROM emails`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY CASE priority WHEN 'urgent' THEN 0 ELSE 1 END, received_at DESC`

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list emails: %w", err)
	}
	defer rows.Close()

	records := []*core.EmailRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan email: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Exists reports whether a matching record is already stored
func (s *SQLiteStore) Exists(ctx context.Context, senderEmail, subject string, receivedAt time.Time) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM emails
		WHERE sender_email = ? AND subject = ? AND received_at = ?
	`, senderEmail, subject, formatTime(receivedAt)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check for duplicate: %w", err)
	}
	return count > 0, nil
}

// Update overwrites the mutable fields of an existing record
func (s *SQLiteStore) Update(ctx context.Context, rec *core.EmailRecord) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE emails SET
			draft_response = ?, response_sent = ?, response_sent_at = ?,
			processed = ?, updated_at = ?
		WHERE id = ?
	`,
		rec.DraftResponse, rec.ResponseSent, formatNullableTime(rec.ResponseSentAt),
		rec.Processed, formatTime(rec.UpdatedAt), rec.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update email: %w", err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return core.ErrEmailNotFound
	}
	return nil
}

// Delete removes a record
func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM emails WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete email: %w", err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return core.ErrEmailNotFound
	}
	return nil
}

// Stats aggregates dashboard statistics for records received since the given
// time
func (s *SQLiteStore) Stats(ctx context.Context, since time.Time) (*core.DashboardStats, error) {
	stats := &core.DashboardStats{}
	cutoff := formatTime(since)

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(1),
			COALESCE(SUM(CASE WHEN processed THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN priority = 'urgent' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN sentiment = 'positive' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN sentiment = 'negative' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN sentiment = 'neutral' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN priority = 'not_urgent' THEN 1 ELSE 0 END), 0)
		FROM emails WHERE received_at >= ?
	`, cutoff).Scan(
		&stats.TotalEmails, &stats.ProcessedEmails, &stats.UrgentEmails,
		&stats.Sentiment.Positive, &stats.Sentiment.Negative, &stats.Sentiment.Neutral,
		&stats.Priority.NotUrgent,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate stats: %w", err)
	}
	stats.PendingEmails = stats.TotalEmails - stats.ProcessedEmails
	stats.Priority.Urgent = stats.UrgentEmails

	rows, err := s.db.QueryContext(ctx, `
		SELECT strftime('%Y-%m-%d %H:00', received_at), COUNT(1)
		FROM emails WHERE received_at >= ?
		GROUP BY 1
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate hourly stats: %w", err)
	}
	defer rows.Close()

	buckets := make(map[string]int)
	for rows.Next() {
		var hour string
		var count int
		if err := rows.Scan(&hour, &count); err != nil {
			return nil, fmt.Errorf("failed to scan hourly bucket: %w", err)
		}
		buckets[hour] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats.Hourly = hourlyBuckets(since, buckets)
	return stats, nil
}

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*core.EmailRecord, error) {
	var rec core.EmailRecord
	var receivedAt, createdAt, updatedAt string
	var responseSentAt sql.NullString

	err := row.Scan(
		&rec.ID, &rec.SenderEmail, &rec.Subject, &rec.Body, &receivedAt,
		&rec.Sentiment, &rec.SentimentScore, &rec.Priority, &rec.Category,
		&rec.ContactDetails, &rec.Requirements, &rec.SentimentIndicators,
		&rec.DraftResponse, &rec.ResponseSent, &responseSentAt,
		&rec.Processed, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.ReceivedAt = parseTime(receivedAt)
	rec.CreatedAt = parseTime(createdAt)
	rec.UpdatedAt = parseTime(updatedAt)
	if responseSentAt.Valid && responseSentAt.String != "" {
		t := parseTime(responseSentAt.String)
		rec.ResponseSentAt = &t
	}
	return &rec, nil
}

// Timestamps are stored as RFC 3339 UTC strings so lexical comparison in SQL
// matches chronological order.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatNullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

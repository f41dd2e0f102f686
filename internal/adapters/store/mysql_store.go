package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/mikey/email-triage/internal/core"
	"go.uber.org/zap"
)

// MySQLStore is a MySQL implementation of the EmailRepository interface
type MySQLStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMySQLStore creates a new MySQL store
func NewMySQLStore(dsn string, logger *zap.Logger) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS emails (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			sender_email VARCHAR(255) NOT NULL,
			subject VARCHAR(500) NOT NULL,
			body TEXT NOT NULL,
			received_at VARCHAR(32),
			sentiment VARCHAR(20),
			sentiment_score DOUBLE,
			priority VARCHAR(20),
			category VARCHAR(50),
			contact_details TEXT,
			requirements TEXT,
			sentiment_indicators TEXT,
			draft_response TEXT,
			response_sent BOOLEAN DEFAULT FALSE,
			response_sent_at VARCHAR(32),
			processed BOOLEAN DEFAULT FALSE,
			created_at VARCHAR(32),
			updated_at VARCHAR(32),
			INDEX idx_emails_received_at (received_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &MySQLStore{
		db:     db,
		logger: logger,
	}, nil
}

// Close closes the database connection
func (s *MySQLStore) Close() error {
	return s.db.Close()
}

// Save stores a new record and returns its assigned ID
func (s *MySQLStore) Save(ctx context.Context, rec *core.EmailRecord) (int64, error) {
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
func (s *MySQLStore) Get(ctx context.Context, id int64) (*core.EmailRecord, error) {
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
func (s *MySQLStore) List(ctx context.Context, filter core.ListFilter) ([]*core.EmailRecord, error) {
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
func (s *MySQLStore) Exists(ctx context.Context, senderEmail, subject string, receivedAt time.Time) (bool, error) {
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
func (s *MySQLStore) Update(ctx context.Context, rec *core.EmailRecord) error {
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
func (s *MySQLStore) Delete(ctx context.Context, id int64) error {
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
func (s *MySQLStore) Stats(ctx context.Context, since time.Time) (*core.DashboardStats, error) {
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

	// Timestamps are RFC 3339 strings; the hour bucket is their prefix with
	// the minute zeroed.
	rows, err := s.db.QueryContext(ctx, `
		SELECT CONCAT(REPLACE(SUBSTRING(received_at, 1, 13), 'T', ' '), ':00'), COUNT(1)
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

package core

import (
	"time"
)

// Sentiment labels produced by the sentiment classifier.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Priority values produced by the priority classifier.
const (
	PriorityUrgent    = "urgent"
	PriorityNotUrgent = "not_urgent"
)

// Email categories. CategoryGeneralInquiry is the fallback when no knowledge
// base keywords match.
const (
	CategoryAccountIssues    = "account_issues"
	CategoryTechnicalSupport = "technical_support"
	CategoryBillingInquiry   = "billing_inquiry"
	CategoryProductInquiry   = "product_inquiry"
	CategoryGeneralInquiry   = "general_inquiry"
)

// Email represents an incoming support email
type Email struct {
	SenderEmail string    `json:"sender_email"`
	Subject     string    `json:"subject"`
	Body        string    `json:"body"`
	ReceivedAt  time.Time `json:"received_at"`
}

// ContactDetails holds contact information gathered from an email
type ContactDetails struct {
	PrimaryEmail    string   `json:"primary_email"`
	PhoneNumbers    []string `json:"phone_numbers"`
	AlternateEmails []string `json:"alternate_emails"`
}

// EmailAnalysis represents the result of analyzing a support email
type EmailAnalysis struct {
	Sentiment           string         `json:"sentiment"`
	SentimentScore      float64        `json:"sentiment_score"`
	Priority            string         `json:"priority"`
	Category            string         `json:"category"`
	Requirements        []string       `json:"requirements"`
	SentimentIndicators []string       `json:"sentiment_indicators"`
	ContactDetails      ContactDetails `json:"contact_details"`
}

// EmailRecord is a persisted email together with its analysis and response
// state. The structured analysis fields are stored as opaque JSON text.
type EmailRecord struct {
	ID                  int64      `json:"id"`
	SenderEmail         string     `json:"sender_email"`
	Subject             string     `json:"subject"`
	Body                string     `json:"body"`
	ReceivedAt          time.Time  `json:"received_at"`
	Sentiment           string     `json:"sentiment"`
	SentimentScore      float64    `json:"sentiment_score"`
	Priority            string     `json:"priority"`
	Category            string     `json:"category"`
	ContactDetails      string     `json:"contact_details"`
	Requirements        string     `json:"requirements"`
	SentimentIndicators string     `json:"sentiment_indicators"`
	DraftResponse       string     `json:"draft_response"`
	ResponseSent        bool       `json:"response_sent"`
	ResponseSentAt      *time.Time `json:"response_sent_at,omitempty"`
	Processed           bool       `json:"processed"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// SentimentBreakdown counts emails per sentiment label
type SentimentBreakdown struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// PriorityBreakdown counts emails per priority value
type PriorityBreakdown struct {
	Urgent    int `json:"urgent"`
	NotUrgent int `json:"not_urgent"`
}

// HourlyCount is the number of emails received in a single hour bucket
type HourlyCount struct {
	Hour  string `json:"hour"`
	Count int    `json:"count"`
}

// DashboardStats summarizes triage activity over a reporting window
type DashboardStats struct {
	TotalEmails     int                `json:"total_emails_24h"`
	ProcessedEmails int                `json:"processed_emails"`
	PendingEmails   int                `json:"pending_emails"`
	UrgentEmails    int                `json:"urgent_emails"`
	Sentiment       SentimentBreakdown `json:"sentiment_breakdown"`
	Priority        PriorityBreakdown  `json:"priority_breakdown"`
	Hourly          []HourlyCount      `json:"hourly_stats"`
}

package core

import (
	"math"
	"testing"
)

func TestPriorityClassify(t *testing.T) {
	classifier := NewPriorityClassifier()

	tests := []struct {
		name    string
		subject string
		body    string
		want    string
	}{
		{
			name:    "two urgent keywords",
			subject: "URGENT: Cannot access my account",
			body:    "Please help me get back in.",
			want:    PriorityUrgent,
		},
		{
			name:    "polite question",
			subject: "Question about pricing",
			body:    "Could you tell me more about your plans?",
			want:    PriorityNotUrgent,
		},
		{
			name:    "four exclamations reach the threshold",
			subject: "",
			body:    "aaaa!!!!",
			want:    PriorityUrgent,
		},
		{
			name:    "three exclamations fall short",
			subject: "",
			body:    "aaaa!!!",
			want:    PriorityNotUrgent,
		},
		{
			name:    "single keyword alone is not enough",
			subject: "deadline next month",
			body:    "just planning ahead",
			want:    PriorityNotUrgent,
		},
		{
			name:    "empty email",
			subject: "",
			body:    "",
			want:    PriorityNotUrgent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifier.Classify(tt.subject, tt.body)
			if got != tt.want {
				t.Errorf("Classify(%q, %q) = %q, want %q", tt.subject, tt.body, got, tt.want)
			}
		})
	}
}

func TestUrgencyScore(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		body    string
		want    float64
	}{
		{
			name:    "keywords count once each",
			subject: "urgent",
			body:    "asap",
			// 2 keywords, no exclamations, no uppercase
			want: 2.0,
		},
		{
			name:    "exclamations weigh half",
			subject: "",
			body:    "ok!!",
			want: 1.0,
		},
		{
			name:    "all caps text",
			subject: "HELP",
			body:    "",
			// 4 of 5 runes uppercase, no keywords
			want: 1.6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := urgencyScore(tt.subject, tt.body)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("urgencyScore(%q, %q) = %v, want %v", tt.subject, tt.body, got, tt.want)
			}
		})
	}
}

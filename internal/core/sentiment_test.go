package core

import (
	"testing"

	"go.uber.org/zap"
)

func TestSentimentClassify(t *testing.T) {
	classifier := NewSentimentClassifier(zap.NewNop())

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "clearly positive",
			text: "Thank you so much, this is excellent and wonderful!",
			want: SentimentPositive,
		},
		{
			name: "clearly negative",
			text: "This is terrible, awful and horrible. I hate it.",
			want: SentimentNegative,
		},
		{
			name: "factual statement",
			text: "The report is attached.",
			want: SentimentNeutral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label, score := classifier.Classify(tt.text)
			if label != tt.want {
				t.Errorf("Classify(%q) label = %q, want %q", tt.text, label, tt.want)
			}
			if score < 0 || score > 1 {
				t.Errorf("Classify(%q) score = %v, want value in [0,1]", tt.text, score)
			}
			switch tt.want {
			case SentimentPositive:
				if score <= 0.5 {
					t.Errorf("positive text scored %v, want > 0.5", score)
				}
			case SentimentNegative:
				if score >= 0.5 {
					t.Errorf("negative text scored %v, want < 0.5", score)
				}
			}
		})
	}
}

func TestSentimentClassifyEmptyText(t *testing.T) {
	classifier := NewSentimentClassifier(zap.NewNop())

	for _, text := range []string{"", "   ", "\n\t"} {
		label, score := classifier.Classify(text)
		if label != SentimentNeutral {
			t.Errorf("Classify(%q) label = %q, want %q", text, label, SentimentNeutral)
		}
		if score != 0.5 {
			t.Errorf("Classify(%q) score = %v, want 0.5", text, score)
		}
	}
}

package core

import (
	"strings"
	"unicode"
)

// PriorityClassifier decides between urgent and not_urgent using weighted
// keyword, punctuation and capitalization signals.
type PriorityClassifier struct{}

// NewPriorityClassifier creates a new priority classifier
func NewPriorityClassifier() *PriorityClassifier {
	return &PriorityClassifier{}
}

// Classify returns PriorityUrgent when the urgency score reaches 2.0,
// otherwise PriorityNotUrgent.
func (c *PriorityClassifier) Classify(subject, body string) string {
	if urgencyScore(subject, body) >= 2.0 {
		return PriorityUrgent
	}
	return PriorityNotUrgent
}

// urgencyScore is the weighted sum of urgent-keyword presence, exclamation
// marks and the uppercase ratio. The weights and the 2.0 threshold in
// Classify are tuned constants; they are preserved as-is for behavioral
// parity with historical triage decisions.
func urgencyScore(subject, body string) float64 {
	original := subject + " " + body
	text := strings.ToLower(original)

	keywordCount := 0
	for _, keyword := range urgentKeywords {
		if strings.Contains(text, keyword) {
			keywordCount++
		}
	}

	exclamationCount := strings.Count(text, "!")

	// Uppercase ratio is measured on the original-case text; the lowercased
	// copy would always score zero.
	upper, total := 0, 0
	for _, r := range original {
		total++
		if unicode.IsUpper(r) {
			upper++
		}
	}
	capsRatio := 0.0
	if total > 0 {
		capsRatio = float64(upper) / float64(total)
	}

	return float64(keywordCount) + float64(exclamationCount)*0.5 + capsRatio*2
}

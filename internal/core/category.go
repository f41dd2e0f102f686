package core

import (
	"strings"
)

// CategoryClassifier assigns an email to one of the knowledge base categories
// by keyword overlap.
type CategoryClassifier struct {
	kb KnowledgeBase
}

// NewCategoryClassifier creates a new category classifier
func NewCategoryClassifier(kb KnowledgeBase) *CategoryClassifier {
	return &CategoryClassifier{kb: kb}
}

// Classify scores each category by the number of its keywords present in the
// subject and body and returns the best match. Ties keep the first-seen
// category in knowledge base order; when nothing matches, the result is
// CategoryGeneralInquiry.
func (c *CategoryClassifier) Classify(subject, body string) string {
	text := strings.ToLower(subject + " " + body)

	bestCategory := CategoryGeneralInquiry
	bestScore := 0

	for _, cat := range c.kb {
		score := 0
		for _, keyword := range cat.Keywords {
			if strings.Contains(text, keyword) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			bestCategory = cat.Name
		}
	}

	return bestCategory
}

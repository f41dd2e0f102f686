package core

import (
	"strings"

	"github.com/grassmudhorses/vader-go/lexicon"
	"github.com/grassmudhorses/vader-go/sentitext"
	"go.uber.org/zap"
)

// SentimentClassifier maps text to a discrete sentiment label and a score in
// [0,1] using VADER lexicon polarity.
type SentimentClassifier struct {
	logger *zap.Logger
}

// NewSentimentClassifier creates a new sentiment classifier
func NewSentimentClassifier(logger *zap.Logger) *SentimentClassifier {
	return &SentimentClassifier{logger: logger}
}

// Classify returns the sentiment label and normalized score for the given
// text. Polarity above 0.1 is positive, below -0.1 negative, otherwise
// neutral. Any failure during scoring yields the neutral baseline (0.5); the
// method never propagates an error.
func (c *SentimentClassifier) Classify(text string) (label string, score float64) {
	defer func() {
		if r := recover(); r != nil {
			if c.logger != nil {
				c.logger.Warn("Sentiment scoring failed, using neutral baseline", zap.Any("reason", r))
			}
			label = SentimentNeutral
			score = 0.5
		}
	}()

	if strings.TrimSpace(text) == "" {
		return SentimentNeutral, 0.5
	}

	parsed := sentitext.Parse(text, lexicon.DefaultLexicon)
	polarity := sentitext.PolarityScore(parsed).Compound

	switch {
	case polarity > 0.1:
		label = SentimentPositive
	case polarity < -0.1:
		label = SentimentNegative
	default:
		label = SentimentNeutral
	}

	// Normalize the signed polarity to the 0-1 range
	score = (polarity + 1) / 2
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	return label, score
}

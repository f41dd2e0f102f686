package core

import (
	"go.uber.org/zap"
)

// EmailAnalyzer is the single entry point for email analysis. It composes
// the sentiment, priority and category classifiers with the signal
// extractors into one EmailAnalysis record.
type EmailAnalyzer struct {
	sentiment *SentimentClassifier
	priority  *PriorityClassifier
	category  *CategoryClassifier
	logger    *zap.Logger
}

// NewEmailAnalyzer creates a new email analyzer over the given knowledge base
func NewEmailAnalyzer(kb KnowledgeBase, logger *zap.Logger) *EmailAnalyzer {
	return &EmailAnalyzer{
		sentiment: NewSentimentClassifier(logger),
		priority:  NewPriorityClassifier(),
		category:  NewCategoryClassifier(kb),
		logger:    logger,
	}
}

// Analyze produces the full analysis for an email. It never fails: every
// component substitutes its documented default on bad input, so empty
// subjects and bodies degrade to neutral/not_urgent/general_inquiry. The
// returned record is owned by the caller.
func (a *EmailAnalyzer) Analyze(email *Email) *EmailAnalysis {
	fullText := email.Subject + " " + email.Body

	sentiment, score := a.sentiment.Classify(fullText)

	analysis := &EmailAnalysis{
		Sentiment:           sentiment,
		SentimentScore:      score,
		Priority:            a.priority.Classify(email.Subject, email.Body),
		Category:            a.category.Classify(email.Subject, email.Body),
		Requirements:        ExtractRequirements(email.Body),
		SentimentIndicators: ExtractSentimentIndicators(fullText),
		ContactDetails:      ExtractContactDetails(email.Body, email.SenderEmail),
	}

	if a.logger != nil {
		a.logger.Debug("Analyzed email",
			zap.String("sender", email.SenderEmail),
			zap.String("sentiment", analysis.Sentiment),
			zap.String("priority", analysis.Priority),
			zap.String("category", analysis.Category),
			zap.Int("requirements", len(analysis.Requirements)))
	}

	return analysis
}

package core

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ResponseSystemPrompt is the system instruction shared by all generation
// backends.
const ResponseSystemPrompt = "You are a professional customer service representative. Generate helpful, empathetic, and professional email responses."

const genericAcknowledgment = "Thank you for contacting us. We've received your inquiry and will respond promptly."

// ResponseGenerator drafts reply bodies for analyzed emails. When a
// generation backend is configured it is tried first; the deterministic
// template assembly covers the disabled case and every backend failure, so
// Generate always returns a usable response.
type ResponseGenerator struct {
	backend ResponseBackend // nil when the generative path is disabled
	kb      KnowledgeBase
	logger  *zap.Logger
}

// NewResponseGenerator creates a new response generator. A nil backend
// disables the generative path and forces template responses.
func NewResponseGenerator(backend ResponseBackend, kb KnowledgeBase, logger *zap.Logger) *ResponseGenerator {
	return &ResponseGenerator{
		backend: backend,
		kb:      kb,
		logger:  logger,
	}
}

// Generate returns a reply body for the email. Backend errors are logged and
// absorbed; the caller cannot distinguish a generated draft from a template
// one.
func (g *ResponseGenerator) Generate(ctx context.Context, email *Email, analysis *EmailAnalysis, customContext string) string {
	if g.backend != nil {
		draft, err := g.backend.DraftResponse(ctx, email, analysis, customContext)
		if err == nil && strings.TrimSpace(draft) != "" {
			return strings.TrimSpace(draft)
		}
		if err != nil && g.logger != nil {
			g.logger.Warn("Response backend failed, falling back to template", zap.Error(err))
		}
	}
	return g.templateResponse(analysis)
}

// BuildResponsePrompt renders the drafting prompt sent to a generation
// backend.
func BuildResponsePrompt(email *Email, analysis *EmailAnalysis, customContext string) string {
	requirements := "None identified"
	if len(analysis.Requirements) > 0 {
		requirements = strings.Join(analysis.Requirements, ", ")
	}
	indicators := "None"
	if len(analysis.SentimentIndicators) > 0 {
		indicators = strings.Join(analysis.SentimentIndicators, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Generate a professional email response for the following customer inquiry:\n\n")
	fmt.Fprintf(&b, "Customer Email Subject: %s\n", email.Subject)
	fmt.Fprintf(&b, "Customer Email Body: %s\n", email.Body)
	fmt.Fprintf(&b, "Customer Email Address: %s\n\n", email.SenderEmail)
	fmt.Fprintf(&b, "Analysis Context:\n")
	fmt.Fprintf(&b, "- Sentiment: %s\n", analysis.Sentiment)
	fmt.Fprintf(&b, "- Priority: %s\n", analysis.Priority)
	fmt.Fprintf(&b, "- Category: %s\n", analysis.Category)
	fmt.Fprintf(&b, "- Customer Requirements: %s\n", requirements)
	fmt.Fprintf(&b, "- Sentiment Indicators: %s\n", indicators)
	if customContext != "" {
		fmt.Fprintf(&b, "- Additional Context: %s\n", customContext)
	}
	fmt.Fprintf(&b, "\nInstructions:\n")
	fmt.Fprintf(&b, "1. Maintain a professional and friendly tone\n")
	fmt.Fprintf(&b, "2. Acknowledge the customer's %s sentiment appropriately\n", analysis.Sentiment)
	fmt.Fprintf(&b, "3. If priority is urgent, emphasize quick resolution\n")
	fmt.Fprintf(&b, "4. Address the specific category: %s\n", analysis.Category)
	fmt.Fprintf(&b, "5. Reference specific requirements mentioned by the customer\n")
	fmt.Fprintf(&b, "6. Include next steps or resolution timeline\n")
	fmt.Fprintf(&b, "7. Keep response concise but comprehensive\n")
	fmt.Fprintf(&b, "8. Sign off professionally\n\n")
	fmt.Fprintf(&b, "Generate only the email response body, no subject line needed:")
	return b.String()
}

// templateResponse assembles the deterministic fallback reply in fixed
// section order: opening, category template, requirements, timeline
// commitment, closing, signature.
func (g *ResponseGenerator) templateResponse(analysis *EmailAnalysis) string {
	template := genericAcknowledgment
	if cat, ok := g.kb.Lookup(analysis.Category); ok {
		template = cat.ResponseTemplate
	}

	var parts []string

	if analysis.Sentiment == SentimentNegative {
		parts = append(parts, "Thank you for reaching out to us, and I apologize for any inconvenience you've experienced.")
	} else {
		parts = append(parts, "Thank you for contacting us.")
	}

	parts = append(parts, template)

	if len(analysis.Requirements) > 0 {
		referenced := analysis.Requirements
		if len(referenced) > 2 {
			referenced = referenced[:2]
		}
		parts = append(parts, fmt.Sprintf("Regarding your request for %s, I'll make sure this is addressed appropriately.", strings.Join(referenced, ", ")))
	}

	if analysis.Priority == PriorityUrgent {
		parts = append(parts, "I understand this is urgent, and I'll prioritize your request for immediate attention.")
		parts = append(parts, "You can expect a follow-up within 2-4 hours.")
	} else {
		parts = append(parts, "We typically respond to inquiries within 24-48 hours.")
	}

	parts = append(parts, "If you have any immediate questions, please don't hesitate to reach out.")
	parts = append(parts, "\nBest regards,")
	parts = append(parts, "Customer Support Team")

	return strings.Join(parts, "\n\n")
}

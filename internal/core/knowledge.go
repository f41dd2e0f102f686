package core

// KnowledgeCategory pairs a category's matching keywords with its default
// response template.
type KnowledgeCategory struct {
	Name             string
	Keywords         []string
	ResponseTemplate string
}

// KnowledgeBase is the ordered set of known categories. Order matters: ties
// during categorization keep the first-seen category, so the base is a slice,
// not a map. It is constructed once at startup and never mutated, which makes
// it safe to share across concurrent analyses.
type KnowledgeBase []KnowledgeCategory

// Lookup returns the category with the given name
func (kb KnowledgeBase) Lookup(name string) (KnowledgeCategory, bool) {
	for _, cat := range kb {
		if cat.Name == name {
			return cat, true
		}
	}
	return KnowledgeCategory{}, false
}

// DefaultKnowledgeBase returns the built-in support categories
func DefaultKnowledgeBase() KnowledgeBase {
	return KnowledgeBase{
		{
			Name:             CategoryAccountIssues,
			Keywords:         []string{"account", "login", "password", "access", "locked"},
			ResponseTemplate: "I understand you're having trouble with your account access. Let me help you resolve this issue.",
		},
		{
			Name:             CategoryTechnicalSupport,
			Keywords:         []string{"error", "bug", "not working", "broken", "issue", "problem"},
			ResponseTemplate: "I see you're experiencing a technical issue. I'll make sure our technical team addresses this promptly.",
		},
		{
			Name:             CategoryBillingInquiry,
			Keywords:         []string{"billing", "payment", "invoice", "charge", "refund", "subscription"},
			ResponseTemplate: "Thank you for reaching out about your billing inquiry. I'll help clarify any questions you have about your account.",
		},
		{
			Name:             CategoryProductInquiry,
			Keywords:         []string{"product", "feature", "how to", "tutorial", "guide"},
			ResponseTemplate: "I'd be happy to help you learn more about our product features and how to use them effectively.",
		},
	}
}

// urgentKeywords is the fixed vocabulary scanned by the priority classifier.
var urgentKeywords = []string{
	"urgent", "emergency", "critical", "immediate", "asap", "urgent help",
	"cannot access", "down", "not working", "broken", "error", "issue",
	"problem", "stuck", "deadline", "important", "priority", "escalate",
}

package core

import (
	"regexp"
	"strings"
)

// requirementPatterns capture the phrase following a request trigger up to
// the next sentence-ending punctuation.
var requirementPatterns = []*regexp.Regexp{
	regexp.MustCompile(`need\s+to\s+([^.!?]+)`),
	regexp.MustCompile(`want\s+to\s+([^.!?]+)`),
	regexp.MustCompile(`looking\s+for\s+([^.!?]+)`),
	regexp.MustCompile(`require\s+([^.!?]+)`),
	regexp.MustCompile(`request\s+([^.!?]+)`),
	regexp.MustCompile(`help\s+with\s+([^.!?]+)`),
	regexp.MustCompile(`can\s+you\s+([^.!?]+)`),
	regexp.MustCompile(`could\s+you\s+([^.!?]+)`),
}

// Indicator vocabularies scanned in definition order.
var positiveIndicators = []string{
	"thank you", "thanks", "appreciate", "grateful", "excellent", "great",
	"wonderful", "amazing", "perfect", "love", "satisfied", "happy",
}

var negativeIndicators = []string{
	"frustrated", "angry", "upset", "disappointed", "terrible", "awful",
	"horrible", "hate", "disgusted", "annoyed", "irritated", "furious",
	"dissatisfied", "unhappy", "concerned", "worried",
}

var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`),
	regexp.MustCompile(`\(\d{3}\)\s*\d{3}[-.]?\d{4}`),
	regexp.MustCompile(`\+\d{1,3}[-.\s]?\d{3}[-.\s]?\d{3}[-.\s]?\d{4}`),
}

var emailAddressPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

// ExtractRequirements pulls request phrases out of the email body. Matches
// are deduplicated in first-occurrence order, phrases of three characters or
// fewer are dropped, and at most five entries are returned. Overlapping
// matches from different patterns collapse to one entry.
func ExtractRequirements(body string) []string {
	lowered := strings.ToLower(body)

	seen := make(map[string]struct{})
	requirements := []string{}

	for _, pattern := range requirementPatterns {
		for _, match := range pattern.FindAllStringSubmatch(lowered, -1) {
			req := strings.TrimSpace(match[1])
			if len(req) <= 3 {
				continue
			}
			if _, ok := seen[req]; ok {
				continue
			}
			seen[req] = struct{}{}
			requirements = append(requirements, req)
		}
	}

	if len(requirements) > 5 {
		requirements = requirements[:5]
	}
	return requirements
}

// ExtractSentimentIndicators returns every vocabulary term present in the
// text, positives first, each in vocabulary-definition order.
func ExtractSentimentIndicators(text string) []string {
	lowered := strings.ToLower(text)

	indicators := []string{}
	for _, vocabulary := range [][]string{positiveIndicators, negativeIndicators} {
		for _, term := range vocabulary {
			if strings.Contains(lowered, term) {
				indicators = append(indicators, term)
			}
		}
	}
	return indicators
}

// ExtractContactDetails gathers phone numbers and alternate email addresses
// mentioned in the body. The sender is always the primary email and is
// excluded from the alternates.
func ExtractContactDetails(body, senderEmail string) ContactDetails {
	details := ContactDetails{
		PrimaryEmail:    senderEmail,
		PhoneNumbers:    []string{},
		AlternateEmails: []string{},
	}

	seenPhones := make(map[string]struct{})
	for _, pattern := range phonePatterns {
		for _, phone := range pattern.FindAllString(body, -1) {
			if _, ok := seenPhones[phone]; ok {
				continue
			}
			seenPhones[phone] = struct{}{}
			details.PhoneNumbers = append(details.PhoneNumbers, phone)
		}
	}

	seenEmails := make(map[string]struct{})
	for _, addr := range emailAddressPattern.FindAllString(body, -1) {
		if addr == senderEmail {
			continue
		}
		if _, ok := seenEmails[addr]; ok {
			continue
		}
		seenEmails[addr] = struct{}{}
		details.AlternateEmails = append(details.AlternateEmails, addr)
	}

	return details
}

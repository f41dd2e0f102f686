package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

var (
	blankRunPattern  = regexp.MustCompile(`\n\s*\n`)
	spaceRunPattern  = regexp.MustCompile(`[ \t]+`)
	signaturePattern = regexp.MustCompile(`(?s)\n--\n.*$`)
)

// TextProcessor provides utilities for processing email text
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	return &TextProcessor{
		logger: logger,
	}
}

// CleanEmailBody normalizes whitespace and strips signature blocks and
// quoted replies from an email body before analysis.
func (tp *TextProcessor) CleanEmailBody(body string) string {
	body = blankRunPattern.ReplaceAllString(body, "\n\n")
	body = spaceRunPattern.ReplaceAllString(body, " ")
	body = signaturePattern.ReplaceAllString(body, "")

	lines := strings.Split(body, "\n")
	cleaned := make([]string, 0, len(lines))
	inQuote := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, ">") ||
			(strings.HasPrefix(trimmed, "On ") && strings.Contains(trimmed, " wrote:")) {
			inQuote = true
			continue
		}
		if inQuote && trimmed == "" {
			continue
		}
		inQuote = false
		cleaned = append(cleaned, line)
	}

	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}

// TruncateText safely truncates text to the specified maximum size
// and ensures the result is valid UTF-8
func (tp *TextProcessor) TruncateText(text string, maxSize int) string {
	// If no limit or text is already within limits, return as is
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	// First truncate to the byte limit
	truncated := text[:maxSize]

	// Ensure the truncated text ends with a valid UTF-8 sequence
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		// Remove bytes until we have valid UTF-8
		truncated = truncated[:len(truncated)-1]
	}

	if tp.logger != nil {
		tp.logger.Debug("Text truncated",
			zap.Int("original_size", len(text)),
			zap.Int("truncated_size", len(truncated)),
			zap.Int("max_size", maxSize))
	}

	return truncated + "\n[... Content truncated due to size limits ...]"
}

// SanitizeUTF8 ensures the string contains only valid UTF-8 characters
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}

	// Replace invalid UTF-8 sequences with the Unicode replacement character
	result := make([]rune, 0, len(text))
	for i, r := range text {
		if r == utf8.RuneError {
			_, size := utf8.DecodeRuneInString(text[i:])
			if size == 1 {
				// Skip invalid UTF-8 sequences
				continue
			}
		}
		result = append(result, r)
	}

	return string(result)
}

// ProcessText truncates and sanitizes text in one operation
func (tp *TextProcessor) ProcessText(text string, maxSize int) string {
	truncated := tp.TruncateText(text, maxSize)
	return tp.SanitizeUTF8(truncated)
}

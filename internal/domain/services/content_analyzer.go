package services

// ContentAnalyzer derives the stored mirrors of a note's HTML content.
type ContentAnalyzer interface {
	// Sanitize strips disallowed markup from editor HTML
	Sanitize(html string) string

	// PlainText extracts the text content of sanitized HTML
	PlainText(html string) string

	// CountWords counts words in plain text
	CountWords(text string) int
}

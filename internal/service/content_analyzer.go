package service

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"inkwell/internal/domain/services"
)

// contentAnalyzer derives the stored mirrors of a note's HTML content.
// Thread-safe for concurrent use; bluemonday policies are immutable
// after construction.
type contentAnalyzer struct {
	sanitizePolicy *bluemonday.Policy
	stripPolicy    *bluemonday.Policy
}

// NewContentAnalyzer creates a content analyzer. Sanitization uses a UGC
// (User Generated Content) policy that keeps common editor formatting
// while stripping scripts, event handlers and javascript: URLs; the
// plain-text mirror uses the strict policy that strips all markup.
func NewContentAnalyzer() services.ContentAnalyzer {
	sanitize := bluemonday.UGCPolicy()
	sanitize.AllowDataURIImages()

	return &contentAnalyzer{
		sanitizePolicy: sanitize,
		stripPolicy:    bluemonday.StrictPolicy(),
	}
}

// Sanitize strips disallowed markup from editor HTML
func (a *contentAnalyzer) Sanitize(htmlContent string) string {
	return a.sanitizePolicy.Sanitize(htmlContent)
}

// PlainText extracts the text content of sanitized HTML. Block-level
// boundaries become whitespace so adjacent paragraphs don't merge into
// a single word.
func (a *contentAnalyzer) PlainText(htmlContent string) string {
	// Keep paragraph/line boundaries as separators before stripping
	spaced := blockBoundary.Replace(htmlContent)

	text := a.stripPolicy.Sanitize(spaced)
	text = html.UnescapeString(text)

	// Collapse runs of whitespace left behind by removed markup
	return strings.Join(strings.Fields(text), " ")
}

// CountWords counts words in plain text
func (a *contentAnalyzer) CountWords(text string) int {
	return len(strings.Fields(text))
}

var blockBoundary = strings.NewReplacer(
	"</p>", "</p> ",
	"</div>", "</div> ",
	"</li>", "</li> ",
	"</h1>", "</h1> ",
	"</h2>", "</h2> ",
	"</h3>", "</h3> ",
	"<br>", "<br> ",
	"<br/>", "<br/> ",
	"<br />", "<br /> ",
)

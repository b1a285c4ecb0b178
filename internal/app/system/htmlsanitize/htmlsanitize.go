// internal/app/system/htmlsanitize/htmlsanitize.go
//
// Package htmlsanitize strips dangerous markup from user-entered review
// comments before they are stored or rendered.
package htmlsanitize

import (
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// policy allows the formatting reviewers actually use: paragraphs,
// emphasis, lists, links, code. Scripts, frames, forms, and event
// handlers are stripped.
var policy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("style").OnElements("table", "tr", "td", "th")
	return p
}()

// Sanitize returns s with disallowed markup removed.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(policy.Sanitize(s))
}

// SanitizeToHTML sanitizes s and marks the result safe for templates.
func SanitizeToHTML(s string) template.HTML {
	return template.HTML(Sanitize(s))
}

// IsPlainText reports whether s contains no HTML tags. A lone < or >
// (as in "5 < 10") does not count as markup.
func IsPlainText(s string) bool {
	lt := strings.Index(s, "<")
	if lt < 0 {
		return true
	}
	return !strings.Contains(s[lt:], ">")
}

// PlainTextToHTML escapes s and converts it to a single paragraph with
// newlines as line breaks.
func PlainTextToHTML(s string) string {
	if s == "" {
		return ""
	}
	escaped := template.HTMLEscapeString(s)
	return "<p>" + strings.ReplaceAll(escaped, "\n", "<br>") + "</p>"
}

// PrepareForDisplay renders a stored comment: plain text is escaped and
// paragraphed, anything with markup goes through the sanitizer.
func PrepareForDisplay(s string) template.HTML {
	if s == "" {
		return ""
	}
	if IsPlainText(s) {
		return template.HTML(PlainTextToHTML(s))
	}
	return SanitizeToHTML(s)
}

package validation

import (
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// Removes all HTML tags
	strictHTMLPolicy = bluemonday.StrictPolicy()
	// Keeps formatting tags for generated commentary
	ugcHTMLPolicy = bluemonday.UGCPolicy()
)

// SanitizeText removes all HTML tags and attributes from an input string,
// preventing XSS before saving.
func SanitizeText(s string) string {
	return strictHTMLPolicy.Sanitize(s)
}

// SanitizeHTML keeps safe formatting markup and drops scripts, handlers and
// unsafe URLs.
func SanitizeHTML(s string) string {
	return ugcHTMLPolicy.Sanitize(s)
}

// StripUnprintable removes non-printable characters, allowing common whitespace
// like space, tab, newline, and carriage return.
func StripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1 // Drop the rune
	}, s)
}

// Package htmlsanitize cleans instructor-supplied rich text (course
// descriptions and learning outcomes) before it is stored.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	rich   = richPolicy()
	strict = bluemonday.StrictPolicy()
)

func richPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("u", "s", "sub", "sup", "mark")
	p.AllowAttrs("class").OnElements("table", "tr", "td", "th", "code", "pre")
	return p
}

// Sanitize keeps basic formatting (paragraphs, emphasis, lists, links,
// headings, tables, code) and strips scripts, frames and event handlers.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(rich.Sanitize(s))
}

// Text prepares a field that may hold either plain text or markup. Input
// with no markup is returned trimmed and otherwise unchanged, so "Tips &
// tricks" is not stored as "Tips &amp; tricks". Anything else goes through
// Sanitize. The result can be empty when the input was nothing but
// disallowed markup.
func Text(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if html.UnescapeString(strict.Sanitize(s)) == s {
		return s
	}
	return Sanitize(s)
}

package textutil

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gosimple/slug"
	"github.com/microcosm-cc/bluemonday"
)

// strictPolicy removes every tag; it is safe for concurrent use
var strictPolicy = bluemonday.StrictPolicy()

// whitespaceRegex matches runs of whitespace, including newlines
var whitespaceRegex = regexp.MustCompile(`\s+`)

// PlainText strips HTML from server-provided text (FAQ answers, notification bodies)
// and collapses whitespace, so it can be printed to a terminal as-is
func PlainText(s string) string {
	// Keep block boundaries as spaces before the tags go away
	s = strings.NewReplacer("<br>", " ", "<br/>", " ", "<br />", " ", "</p>", " ", "</li>", " ").Replace(s)
	s = html.UnescapeString(strictPolicy.Sanitize(s))
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

// Truncate shortens s to at most max runes, ending with "..." when cut.
// When max is too small to hold the ellipsis the runes are cut without it.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// Slug makes a file-name safe identifier, e.g. for per-context state files
func Slug(s string) string {
	out := slug.Make(s)
	if out == "" {
		return "default"
	}
	return out
}

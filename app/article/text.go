package article

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const SnippetLength = 300

var ugcPolicy = bluemonday.UGCPolicy()

// CleanHTML strips markup, decodes entities and collapses whitespace.
func CleanHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return collapseSpace(s)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return collapseSpace(s)
	}

	return collapseSpace(doc.Text())
}

// SanitizeHTML keeps safe markup from article bodies.
func SanitizeHTML(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(ugcPolicy.Sanitize(s))
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// Fold returns a normalized, case-folded form of s for case-insensitive comparison.
// A Caser is not safe for concurrent use, so one is created per call.
func Fold(s string) string {
	return cases.Fold().String(norm.NFKC.String(s))
}

func ContainsFold(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	return strings.Contains(Fold(haystack), Fold(needle))
}

// ParseDate parses a provider date leniently and returns fallback when the
// value is empty or unparsable.
func ParseDate(value string, fallback time.Time) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}

	parsed, err := dateparse.ParseAny(value)
	if err != nil {
		return fallback
	}

	return parsed.UTC()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

package feed

import (
	"strings"

	"github.com/lysyi3m/news-watch/app/article"
)

// Filterer does case-insensitive substring matching of terms against article text.
type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run keeps articles whose title or snippet contains any of terms.
// With no terms every article is kept.
func (f *Filterer) Run(articles []article.Article, terms []string) []article.Article {
	terms = cleanTerms(terms)
	if len(terms) == 0 {
		return articles
	}

	filtered := make([]article.Article, 0, len(articles))
	for _, a := range articles {
		if _, ok := f.MatchAny(a.Title+" "+a.Snippet, terms); ok {
			filtered = append(filtered, a)
		}
	}

	return filtered
}

// MatchAny returns the first term found in text.
func (f *Filterer) MatchAny(text string, terms []string) (string, bool) {
	folded := article.Fold(text)

	for _, term := range terms {
		if f.matchesFilter(folded, term) {
			return term, true
		}
	}

	return "", false
}

func (f *Filterer) matchesFilter(foldedValue, pattern string) bool {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return false
	}
	return strings.Contains(foldedValue, article.Fold(pattern))
}

// SplitTerms splits a comma-separated list, dropping blanks.
func SplitTerms(s string) []string {
	return cleanTerms(strings.Split(s, ","))
}

func cleanTerms(terms []string) []string {
	cleaned := make([]string, 0, len(terms))
	for _, term := range terms {
		if term = strings.TrimSpace(term); term != "" {
			cleaned = append(cleaned, term)
		}
	}
	return cleaned
}

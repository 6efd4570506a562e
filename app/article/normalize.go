package article

import (
	"strings"
	"time"
)

// DefaultRSSSource is used when a Google News item carries no outlet name.
const DefaultRSSSource = "Google News"

// Raw is one decoded article object from a provider response.
type Raw map[string]any

type fields struct {
	title   string
	source  string
	date    string
	snippet string
	url     string
	content string
}

type normalizer func(raw Raw) fields

var normalizers = map[Provider]normalizer{
	ProviderNewsAPI:  normalizeSearchAPI,
	ProviderGNews:    normalizeSearchAPI,
	ProviderNewsData: normalizeNewsData,
	ProviderRSS:      normalizeRSS,
}

// Normalize maps a raw provider payload into an Article. Missing or mistyped
// fields become empty strings and a missing or unparsable date becomes now.
func Normalize(provider Provider, raw Raw, now time.Time) Article {
	normalize, ok := normalizers[provider]
	if !ok {
		normalize = normalizeGeneric
	}

	f := normalize(raw)

	a := Article{
		Title:       CleanHTML(f.title),
		Source:      strings.TrimSpace(f.source),
		Date:        ParseDate(f.date, now),
		Snippet:     Truncate(CleanHTML(f.snippet), SnippetLength),
		URL:         strings.TrimSpace(f.url),
		FullContent: SanitizeHTML(f.content),
		Provider:    provider,
	}
	a.SourceType = ClassifySource(a.Source)

	return a
}

// newsapi and gnews share the same article shape.
func normalizeSearchAPI(raw Raw) fields {
	return fields{
		title:   raw.str("title"),
		source:  raw.nested("source", "name"),
		date:    raw.str("publishedAt"),
		snippet: raw.str("description"),
		url:     raw.str("url"),
		content: raw.str("content"),
	}
}

func normalizeNewsData(raw Raw) fields {
	return fields{
		title:   raw.str("title"),
		source:  raw.str("source_id"),
		date:    raw.str("pubDate"),
		snippet: raw.str("description"),
		url:     raw.str("link"),
		content: raw.str("content"),
	}
}

// Google News titles look like "Headline - Outlet".
func normalizeRSS(raw Raw) fields {
	title := raw.str("title")
	source := strings.TrimSpace(raw.str("source"))

	if source == "" {
		if idx := strings.LastIndex(title, " - "); idx >= 0 {
			source = strings.TrimSpace(title[idx+3:])
			title = title[:idx]
		} else {
			source = DefaultRSSSource
		}
	} else {
		title = strings.TrimSuffix(strings.TrimSpace(title), " - "+source)
	}

	return fields{
		title:   title,
		source:  source,
		date:    raw.str("pubDate"),
		snippet: raw.str("description"),
		url:     raw.str("link"),
	}
}

func normalizeGeneric(raw Raw) fields {
	return fields{
		title:   raw.str("title"),
		source:  raw.first("source", "source_name", "source_id"),
		date:    raw.first("publishedAt", "pubDate", "date", "published"),
		snippet: raw.first("description", "snippet", "summary"),
		url:     raw.first("url", "link"),
		content: raw.str("content"),
	}
}

func (r Raw) str(key string) string {
	if value, ok := r[key].(string); ok {
		return value
	}
	return ""
}

func (r Raw) nested(key, field string) string {
	switch value := r[key].(type) {
	case map[string]any:
		return Raw(value).str(field)
	case Raw:
		return value.str(field)
	case string:
		return value
	}
	return ""
}

func (r Raw) first(keys ...string) string {
	for _, key := range keys {
		if value := r.str(key); value != "" {
			return value
		}
	}
	return ""
}

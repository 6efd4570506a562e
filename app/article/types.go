package article

import (
	"time"
)

type SourceType string

const (
	SourceWire       SourceType = "wire"
	SourceNational   SourceType = "national"
	SourceLocal      SourceType = "local"
	SourceBroadcast  SourceType = "broadcast"
	SourceRegional   SourceType = "regional"
	SourceTrade      SourceType = "trade"
	SourceOpinion    SourceType = "opinion"
	SourceGovernment SourceType = "government"
	SourceUnknown    SourceType = "unknown"
)

var SourceTypes = []SourceType{
	SourceWire, SourceNational, SourceLocal, SourceBroadcast, SourceRegional,
	SourceTrade, SourceOpinion, SourceGovernment, SourceUnknown,
}

func (t SourceType) Valid() bool {
	for _, known := range SourceTypes {
		if t == known {
			return true
		}
	}
	return false
}

type Provider string

const (
	ProviderNewsAPI  Provider = "newsapi"
	ProviderGNews    Provider = "gnews"
	ProviderNewsData Provider = "newsdata"
	ProviderRSS      Provider = "rss"
	ProviderGov      Provider = "gov"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Rank orders confidence bands for sorting: high=3, medium=2, low=1.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

// Article is the canonical record every provider payload is normalized into.
type Article struct {
	Title       string     `json:"title"`
	Source      string     `json:"source"`
	SourceType  SourceType `json:"sourceType"`
	Date        time.Time  `json:"date"`
	Snippet     string     `json:"snippet"`
	URL         string     `json:"url"`
	FullContent string     `json:"fullContent,omitempty"`
	Provider    Provider   `json:"provider"`

	// Government feed tags
	GovCategory  string `json:"govCategory,omitempty"`
	GovLevel     string `json:"govLevel,omitempty"`
	GovWatcherID string `json:"govWatcherId,omitempty"`
	GovFeedID    string `json:"govFeedId,omitempty"`
}

// Key is the identity used to collapse duplicates across watchers and feeds:
// the URL, or the title when the URL is empty.
func (a Article) Key() string {
	if a.URL != "" {
		return a.URL
	}
	return a.Title
}

// FetchKey is the identity used inside a single provider fetch: the URL, or
// title and source when the URL is empty.
func (a Article) FetchKey() string {
	if a.URL != "" {
		return a.URL
	}
	return a.Title + "-" + a.Source
}

// Scored is an Article that passed a watcher's filters.
type Scored struct {
	Article
	MatchedWatcherID   string     `json:"matchedWatcherId,omitempty"`
	MatchedWatcherName string     `json:"matchedWatcherName,omitempty"`
	GeoScore           float64    `json:"geoScore"`
	GeoConfidence      Confidence `json:"geoConfidence"`
	MatchedLocations   []string   `json:"matchedLocations"`
	KeywordMatch       bool       `json:"keywordMatch"`
	EntityMatch        bool       `json:"entityMatch"`
}

// Excluded is an Article that matched a watcher but hit an exclusion keyword.
type Excluded struct {
	Article
	MatchedWatcherID string `json:"matchedWatcherId,omitempty"`
	Reason           string `json:"excludeReason"`
}

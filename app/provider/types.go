package provider

import (
	"context"
	"time"

	"github.com/lysyi3m/news-watch/app/article"
)

// Options bounds a search by publication date. Zero values leave a bound open.
type Options struct {
	From time.Time
	To   time.Time
}

type Provider interface {
	Name() article.Provider
	Fetch(ctx context.Context, query string, opts Options) ([]article.Article, error)
}

// QuotaTracker is the part of quota.Tracker the selector and orchestrator use.
type QuotaTracker interface {
	HasQuota(provider article.Provider) bool
	RecordUsage(provider article.Provider) error
}

// RotationOrder is the order paid providers are rotated through.
var RotationOrder = []article.Provider{
	article.ProviderNewsAPI,
	article.ProviderGNews,
	article.ProviderNewsData,
}

// normalizeAll keeps articles with a title.
func normalizeAll(provider article.Provider, raws []article.Raw, now time.Time) []article.Article {
	articles := make([]article.Article, 0, len(raws))
	for _, raw := range raws {
		a := article.Normalize(provider, raw, now)
		if a.Title == "" {
			continue
		}
		articles = append(articles, a)
	}
	return articles
}

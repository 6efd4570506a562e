package provider

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/lysyi3m/news-watch/app/article"
	"github.com/lysyi3m/news-watch/app/feed"
	"github.com/lysyi3m/news-watch/app/httpclient"
)

const enrichConcurrency = 4

// Enricher fills empty FullContent by fetching the article page and keeping
// its readable text.
type Enricher struct {
	client    *httpclient.Client
	extractor *feed.ContentExtractor
}

func NewEnricher(client *httpclient.Client, extractor *feed.ContentExtractor) *Enricher {
	return &Enricher{
		client:    client,
		extractor: extractor,
	}
}

// Run updates articles in place. Failures leave FullContent empty.
func (e *Enricher) Run(ctx context.Context, articles []article.Article) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichConcurrency)

	for i := range articles {
		if articles[i].FullContent != "" || articles[i].URL == "" {
			continue
		}

		g.Go(func() error {
			content, err := e.extract(gctx, articles[i].URL)
			if err != nil {
				slog.Debug("Content extraction failed", "url", articles[i].URL, "error", err)
				return nil
			}
			articles[i].FullContent = content
			return nil
		})
	}

	g.Wait()
}

func (e *Enricher) extract(ctx context.Context, pageURL string) (string, error) {
	data, err := e.client.Get(ctx, pageURL, "text/html")
	if err != nil {
		return "", err
	}
	return e.extractor.Run(data, pageURL)
}

package gov

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lysyi3m/news-watch/app/article"
	"github.com/lysyi3m/news-watch/app/feed"
	"github.com/lysyi3m/news-watch/app/httpclient"
	"github.com/lysyi3m/news-watch/app/metrics"
)

const maxConcurrentFeeds = 8

var ErrAllFeedsFailed = errors.New("all feeds failed")

// Fetcher downloads government feeds and turns their items into articles.
type Fetcher struct {
	client   *httpclient.Client
	parser   *feed.Parser
	filterer *feed.Filterer
	proxyURL string
	now      func() time.Time
}

func NewFetcher(client *httpclient.Client, parser *feed.Parser, proxyURL string) *Fetcher {
	return &Fetcher{
		client:   client,
		parser:   parser,
		filterer: feed.NewFilterer(),
		proxyURL: strings.TrimRight(proxyURL, "/"),
		now:      time.Now,
	}
}

// Fetch downloads every source concurrently. A failing feed contributes no
// articles unless every feed fails, which returns ErrAllFeedsFailed. The
// result is deduplicated, newest first, and narrowed to articles matching
// any comma-separated term in filter when it is set.
func (f *Fetcher) Fetch(ctx context.Context, sources []Source, filter string) ([]article.Article, error) {
	results := make([][]article.Article, len(sources))
	errs := make([]error, len(sources))

	var g errgroup.Group
	g.SetLimit(maxConcurrentFeeds)

	for i, src := range sources {
		g.Go(func() error {
			articles, err := f.fetchFeed(ctx, src)
			metrics.GovFeedFetchesTotal.WithLabelValues(metrics.StatusLabel(err)).Inc()
			if err != nil {
				slog.Warn("Gov feed fetch failed", "feed", src.ID, "url", src.URL, "error", err)
				errs[i] = fmt.Errorf("%s: %w", src.ID, err)
				return nil
			}

			slog.Debug("Gov feed fetched", "feed", src.ID, "items", len(articles))
			results[i] = articles
			return nil
		})
	}
	_ = g.Wait()

	if failed := collectErrors(errs); len(sources) > 0 && len(failed) == len(sources) {
		return nil, fmt.Errorf("%w: %w", ErrAllFeedsFailed, errors.Join(failed...))
	}

	seen := make(map[string]bool)
	var articles []article.Article
	for _, batch := range results {
		for _, a := range batch {
			key := a.Key()
			if seen[key] {
				continue
			}
			seen[key] = true
			articles = append(articles, a)
		}
	}

	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].Date.After(articles[j].Date)
	})

	articles = f.filterer.Run(articles, feed.SplitTerms(filter))
	if articles == nil {
		articles = []article.Article{}
	}
	return articles, nil
}

func collectErrors(errs []error) []error {
	var failed []error
	for _, err := range errs {
		if err != nil {
			failed = append(failed, err)
		}
	}
	return failed
}

func (f *Fetcher) fetchFeed(ctx context.Context, src Source) ([]article.Article, error) {
	body, err := f.client.Get(ctx, f.requestURL(src.URL), "application/rss+xml, application/atom+xml, application/xml, text/xml")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	items, _, err := f.parser.Run(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	now := f.now()
	articles := make([]article.Article, 0, len(items))
	for _, item := range items {
		title := article.CleanHTML(item.Title)
		if title == "" {
			continue
		}

		description := item.Description
		if description == "" {
			description = item.Content
		}

		date := article.ParseDate(item.Published, now)
		if item.PublishedAt != nil {
			date = item.PublishedAt.UTC()
		}

		articles = append(articles, article.Article{
			Title:        title,
			Source:       src.Name,
			SourceType:   article.SourceGovernment,
			Date:         date,
			Snippet:      article.Truncate(article.CleanHTML(description), article.SnippetLength),
			URL:          strings.TrimSpace(item.Link),
			Provider:     article.ProviderGov,
			GovCategory:  src.Category,
			GovLevel:     src.Level,
			GovWatcherID: src.WatcherID,
			GovFeedID:    src.ID,
		})
	}

	return articles, nil
}

func (f *Fetcher) requestURL(feedURL string) string {
	if f.proxyURL == "" {
		return feedURL
	}
	return fmt.Sprintf("%s/api/news/gov?url=%s", f.proxyURL, url.QueryEscape(feedURL))
}

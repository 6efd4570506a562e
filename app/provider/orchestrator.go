package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/lysyi3m/news-watch/app/article"
	"github.com/lysyi3m/news-watch/app/metrics"
)

var ErrAllProvidersFailed = errors.New("all providers failed")

// Orchestrator fans a query out to the selected providers and merges the
// results.
type Orchestrator struct {
	providers map[article.Provider]Provider
	selector  *Selector
	quota     QuotaTracker
	enricher  *Enricher
}

// NewOrchestrator registers providers by name. The RSS provider must be
// among them to serve as the fallback. enricher may be nil.
func NewOrchestrator(providers []Provider, selector *Selector, quota QuotaTracker, enricher *Enricher) *Orchestrator {
	byName := make(map[article.Provider]Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}

	return &Orchestrator{
		providers: byName,
		selector:  selector,
		quota:     quota,
		enricher:  enricher,
	}
}

type fetchResult struct {
	articles []article.Article
	err      error
}

// Fetch queries the selected providers concurrently. A failing provider
// contributes nothing; an error is returned only when every queried provider
// failed. When the combined result is empty the RSS provider is tried once
// if it was not already queried. Duplicates collapse to the first seen.
func (o *Orchestrator) Fetch(ctx context.Context, query string, opts Options, turbo bool) ([]article.Article, error) {
	selected := o.selector.Select(turbo)

	slog.Debug("Fetching articles", "providers", selected, "query", query)

	results := o.fetchAll(ctx, selected, query, opts)

	var combined []article.Article
	failures := 0
	var errs []string
	for i, result := range results {
		if result.err != nil {
			failures++
			errs = append(errs, fmt.Sprintf("%s: %v", selected[i], result.err))
			continue
		}
		combined = append(combined, result.articles...)
	}

	attempted := len(selected)
	if len(combined) == 0 && !slices.Contains(selected, article.ProviderRSS) {
		slog.Info("No results from paid providers, falling back to RSS", "query", query)

		attempted++
		fallback := o.fetchAll(ctx, []article.Provider{article.ProviderRSS}, query, opts)[0]
		if fallback.err != nil {
			failures++
			errs = append(errs, fmt.Sprintf("%s: %v", article.ProviderRSS, fallback.err))
		} else {
			combined = fallback.articles
		}
	}

	if failures == attempted {
		return nil, fmt.Errorf("%w: %s", ErrAllProvidersFailed, strings.Join(errs, "; "))
	}

	articles := dedupFirstSeen(combined)

	if o.enricher != nil {
		o.enricher.Run(ctx, articles)
	}

	return articles, nil
}

// fetchAll runs each provider with its own deadline and returns results in
// the order of names.
func (o *Orchestrator) fetchAll(ctx context.Context, names []article.Provider, query string, opts Options) []fetchResult {
	results := make([]fetchResult, len(names))

	var g errgroup.Group
	for i, name := range names {
		g.Go(func() error {
			results[i] = o.fetchOne(ctx, name, query, opts)
			return nil
		})
	}
	g.Wait()

	return results
}

func (o *Orchestrator) fetchOne(ctx context.Context, name article.Provider, query string, opts Options) fetchResult {
	p, ok := o.providers[name]
	if !ok {
		return fetchResult{err: fmt.Errorf("provider %s is not registered", name)}
	}

	articles, err := p.Fetch(ctx, query, opts)
	metrics.ProviderRequestsTotal.WithLabelValues(string(name), metrics.StatusLabel(err)).Inc()
	if err != nil {
		slog.Warn("Provider fetch failed", "provider", name, "error", err)
		return fetchResult{err: err}
	}

	if err := o.quota.RecordUsage(name); err != nil {
		slog.Warn("Failed to record quota usage", "provider", name, "error", err)
	}

	metrics.ProviderArticlesTotal.WithLabelValues(string(name)).Add(float64(len(articles)))
	slog.Debug("Provider fetch completed", "provider", name, "articles", len(articles))

	return fetchResult{articles: articles}
}

func dedupFirstSeen(articles []article.Article) []article.Article {
	seen := make(map[string]struct{}, len(articles))
	unique := make([]article.Article, 0, len(articles))

	for _, a := range articles {
		key := a.FetchKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, a)
	}

	return unique
}

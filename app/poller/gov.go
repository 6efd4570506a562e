package poller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/news-watch/app/article"
	"github.com/lysyi3m/news-watch/app/database"
	"github.com/lysyi3m/news-watch/app/gov"
	"github.com/lysyi3m/news-watch/app/metrics"
)

const keyGovResult = "poll.gov"

type GovFetcher interface {
	Fetch(ctx context.Context, sources []gov.Source, filter string) ([]article.Article, error)
}

type GovResult struct {
	Articles []article.Article `json:"articles"`
	Feeds    int               `json:"feeds"`
	LastPoll time.Time         `json:"lastPoll"`
}

// GovPoller fetches the government feeds selected by gov watchers and the
// auto-watch settings.
type GovPoller struct {
	repo     Repository
	store    database.Store
	registry *gov.Registry
	fetcher  GovFetcher
	now      func() time.Time
	loop     *runner

	mu     sync.RWMutex
	result GovResult
}

func NewGovPoller(repo Repository, store database.Store, registry *gov.Registry, fetcher GovFetcher, now func() time.Time) *GovPoller {
	if now == nil {
		now = time.Now
	}

	p := &GovPoller{
		repo:     repo,
		store:    store,
		registry: registry,
		fetcher:  fetcher,
		now:      now,
		result:   GovResult{Articles: []article.Article{}},
	}
	p.loop = newRunner("gov", p.cycle, pollInterval(repo), now)

	var saved GovResult
	if ok, err := store.Get(keyGovResult, &saved); err != nil {
		slog.Warn("Failed to load last gov poll", "error", err)
	} else if ok {
		p.result = saved
		if !saved.LastPoll.IsZero() {
			p.loop.lastPoll = &saved.LastPoll
		}
	}

	return p
}

func (p *GovPoller) Start(ctx context.Context) { p.loop.start(ctx) }
func (p *GovPoller) Stop() { p.loop.stop() }
func (p *GovPoller) Poll(ctx context.Context) error { return p.loop.pollNow(ctx) }
func (p *GovPoller) Trigger(ctx context.Context) error { return p.loop.trigger(ctx) }
func (p *GovPoller) Status() Status { return p.loop.status() }

func (p *GovPoller) Result() GovResult {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return GovResult{
		Articles: append([]article.Article{}, p.result.Articles...),
		Feeds:    p.result.Feeds,
		LastPoll: p.result.LastPoll,
	}
}

func (p *GovPoller) cycle(ctx context.Context) error {
	start := time.Now()

	settings, err := p.repo.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	govWatchers, err := p.repo.ListGovWatchers()
	if err != nil {
		return fmt.Errorf("failed to load gov watchers: %w", err)
	}

	sources := p.registry.Sources(govWatchers, settings)

	articles := []article.Article{}
	if len(sources) > 0 {
		// A failed fetch keeps the previous result in memory and in the store.
		articles, err = p.fetcher.Fetch(ctx, sources, settings.GovFilter)
		if err != nil {
			return fmt.Errorf("failed to fetch gov feeds: %w", err)
		}
	}

	next := GovResult{
		Articles: articles,
		Feeds:    len(sources),
		LastPoll: p.now().UTC(),
	}

	p.mu.Lock()
	p.result = next
	p.mu.Unlock()

	if err := p.store.Set(keyGovResult, next); err != nil {
		slog.Error("Failed to save gov poll result", "error", err)
	}

	metrics.MatchedArticles.WithLabelValues("gov").Set(float64(len(articles)))

	slog.Info("Gov poll completed", "feeds", len(sources), "articles", len(articles), "duration", time.Since(start).String())
	return nil
}

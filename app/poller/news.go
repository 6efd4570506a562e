package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lysyi3m/news-watch/app/article"
	"github.com/lysyi3m/news-watch/app/database"
	"github.com/lysyi3m/news-watch/app/matcher"
	"github.com/lysyi3m/news-watch/app/metrics"
	"github.com/lysyi3m/news-watch/app/notify"
	"github.com/lysyi3m/news-watch/app/provider"
	"github.com/lysyi3m/news-watch/app/tasks"
	"github.com/lysyi3m/news-watch/app/watch"
)

const (
	keyNewsResult = "poll.news"

	// MaxNotificationsPerPoll caps new-article notifications per cycle.
	MaxNotificationsPerPoll = 5
)

type Fetcher interface {
	Fetch(ctx context.Context, query string, opts provider.Options, turbo bool) ([]article.Article, error)
}

type Refiner interface {
	Refine(ctx context.Context, matched []article.Scored, target string) []article.Scored
}

// Repository is the part of watch.Repository the pollers use.
type Repository interface {
	ActiveWatchers() ([]watch.Watcher, error)
	ListGovWatchers() ([]watch.GovWatcher, error)
	GetSettings() (watch.Settings, error)
	AddNotifications(records []watch.Notification) error
}

// NewsResult is the outcome of the last news poll.
type NewsResult struct {
	Articles []article.Scored   `json:"articles"`
	Excluded []article.Excluded `json:"excluded"`
	LastPoll time.Time          `json:"lastPoll"`
	Error    string             `json:"error,omitempty"`
}

// NewsPoller runs every active watcher through fetch and match, merges the
// matches and raises notifications for articles not seen in the last poll.
type NewsPoller struct {
	repo       Repository
	store      database.Store
	fetcher    Fetcher
	engine     *matcher.Engine
	refiner    Refiner
	queue      tasks.TaskSchedulerInterface
	dispatcher tasks.AlertDispatcher
	now        func() time.Time
	loop       *runner

	mu      sync.RWMutex
	result  NewsResult
	hasPrev bool
}

func NewNewsPoller(repo Repository, store database.Store, fetcher Fetcher, engine *matcher.Engine, refiner Refiner,
	queue tasks.TaskSchedulerInterface, dispatcher tasks.AlertDispatcher, now func() time.Time) *NewsPoller {
	if now == nil {
		now = time.Now
	}

	p := &NewsPoller{
		repo:       repo,
		store:      store,
		fetcher:    fetcher,
		engine:     engine,
		refiner:    refiner,
		queue:      queue,
		dispatcher: dispatcher,
		now:        now,
		result:     NewsResult{Articles: []article.Scored{}, Excluded: []article.Excluded{}},
	}
	p.loop = newRunner("news", p.cycle, pollInterval(repo), now)

	var saved NewsResult
	if ok, err := store.Get(keyNewsResult, &saved); err != nil {
		slog.Warn("Failed to load last news poll", "error", err)
	} else if ok {
		p.result = saved
		p.hasPrev = true
		if !saved.LastPoll.IsZero() {
			p.loop.lastPoll = &saved.LastPoll
		}
		p.loop.lastErr = saved.Error
	}

	return p
}

func (p *NewsPoller) Start(ctx context.Context) { p.loop.start(ctx) }
func (p *NewsPoller) Stop() { p.loop.stop() }

// Poll runs one cycle synchronously. It returns ErrPollInProgress when a
// cycle is already running.
func (p *NewsPoller) Poll(ctx context.Context) error { return p.loop.pollNow(ctx) }

// Trigger starts a cycle in the background.
func (p *NewsPoller) Trigger(ctx context.Context) error { return p.loop.trigger(ctx) }

func (p *NewsPoller) Status() Status { return p.loop.status() }

func (p *NewsPoller) Result() NewsResult {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return NewsResult{
		Articles: append([]article.Scored{}, p.result.Articles...),
		Excluded: append([]article.Excluded{}, p.result.Excluded...),
		LastPoll: p.result.LastPoll,
		Error:    p.result.Error,
	}
}

func (p *NewsPoller) cycle(ctx context.Context) error {
	start := time.Now()

	settings, err := p.repo.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	watchers, err := p.repo.ActiveWatchers()
	if err != nil {
		return fmt.Errorf("failed to load watchers: %w", err)
	}

	previous := p.Result()

	var matched []article.Scored
	var excluded []article.Excluded
	var failures []error

	for _, w := range watchers {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		query := matcher.BuildQuery(w)
		if query == "" {
			slog.Debug("Watcher has no keywords, skipping", "watcher", w.ID)
			continue
		}

		window := matcher.QueryWindow(w, p.now())
		articles, err := p.fetcher.Fetch(ctx, query, provider.Options{From: window.From, To: window.To}, settings.TurboMode)
		if err != nil {
			slog.Warn("Watcher fetch failed, keeping previous matches", "watcher", w.ID, "error", err)
			failures = append(failures, fmt.Errorf("watcher %s: %w", w.Name, err))
			matched = append(matched, previousMatches(previous, w.ID)...)
			excluded = append(excluded, previousExclusions(previous, w.ID)...)
			continue
		}

		result := p.engine.Match(articles, w)
		refined := p.refiner.Refine(ctx, result.Matched, refineTarget(w))
		for i := range refined {
			refined[i].MatchedWatcherID = w.ID
			refined[i].MatchedWatcherName = w.Name
		}

		slog.Debug("Watcher polled", "watcher", w.ID, "fetched", len(articles), "matched", len(refined), "excluded", len(result.Excluded))

		matched = append(matched, refined...)
		excluded = append(excluded, result.Excluded...)
	}

	merged := MergeByGeoScore(matched)
	finished := p.now().UTC()

	next := NewsResult{
		Articles: merged,
		Excluded: dedupExcluded(excluded),
		LastPoll: finished,
	}
	pollErr := errors.Join(failures...)
	if pollErr != nil {
		next.Error = pollErr.Error()
	}

	p.mu.Lock()
	hadPrev := p.hasPrev
	p.result = next
	p.hasPrev = true
	p.mu.Unlock()

	if err := p.store.Set(keyNewsResult, next); err != nil {
		slog.Error("Failed to save news poll result", "error", err)
	}

	metrics.MatchedArticles.WithLabelValues("news").Set(float64(len(merged)))

	if hadPrev {
		p.recordNotifications(watchers, previous.Articles, merged, finished)
	}

	slog.Info("News poll completed", "watchers", len(watchers), "articles", len(merged), "excluded", len(next.Excluded), "failures", len(failures), "duration", time.Since(start).String())

	return pollErr
}

// recordNotifications records up to MaxNotificationsPerPoll articles whose key was absent
// from the previous result and queues dispatch for instant watchers.
func (p *NewsPoller) recordNotifications(watchers []watch.Watcher, previous, current []article.Scored, now time.Time) {
	seen := make(map[string]bool, len(previous))
	for _, a := range previous {
		seen[a.Key()] = true
	}

	byID := make(map[string]watch.Watcher, len(watchers))
	for _, w := range watchers {
		byID[w.ID] = w
	}

	var records []watch.Notification
	for _, a := range current {
		if len(records) == MaxNotificationsPerPoll {
			break
		}
		if seen[a.Key()] {
			continue
		}

		w := byID[a.MatchedWatcherID]
		records = append(records, watch.Notification{
			ID:            uuid.NewString(),
			WatcherID:     a.MatchedWatcherID,
			WatcherName:   a.MatchedWatcherName,
			ArticleID:     a.Key(),
			ArticleTitle:  a.Title,
			ArticleSource: a.Source,
			ArticleURL:    a.URL,
			Timestamp:     now,
			AlertMode:     w.AlertMode,
		})
	}

	if len(records) == 0 {
		return
	}

	if err := p.repo.AddNotifications(records); err != nil {
		slog.Error("Failed to save notifications", "error", err)
	}

	for _, n := range records {
		w := byID[n.WatcherID]
		if w.AlertMode != watch.AlertInstant || p.queue == nil || p.dispatcher == nil {
			continue
		}

		task := tasks.NewDispatchAlertTask(p.dispatcher, notify.Alert{Notification: n, Channels: w.Channels})
		if err := p.queue.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue DispatchAlertTask", "watcher", n.WatcherID, "error", err)
		}
	}
}

// MergeByGeoScore collapses articles sharing a key, keeping the higher
// geoScore. Ties keep the first seen. The result is sorted by confidence
// then date.
func MergeByGeoScore(scored []article.Scored) []article.Scored {
	index := make(map[string]int, len(scored))
	merged := make([]article.Scored, 0, len(scored))

	for _, a := range scored {
		key := a.Key()
		if i, ok := index[key]; ok {
			if a.GeoScore > merged[i].GeoScore {
				merged[i] = a
			}
			continue
		}
		index[key] = len(merged)
		merged = append(merged, a)
	}

	matcher.SortScored(merged)
	return merged
}

func dedupExcluded(excluded []article.Excluded) []article.Excluded {
	seen := make(map[string]bool, len(excluded))
	result := make([]article.Excluded, 0, len(excluded))
	for _, e := range excluded {
		if seen[e.Key()] {
			continue
		}
		seen[e.Key()] = true
		result = append(result, e)
	}
	return result
}

func previousMatches(previous NewsResult, watcherID string) []article.Scored {
	var kept []article.Scored
	for _, a := range previous.Articles {
		if a.MatchedWatcherID == watcherID {
			kept = append(kept, a)
		}
	}
	return kept
}

func previousExclusions(previous NewsResult, watcherID string) []article.Excluded {
	var kept []article.Excluded
	for _, e := range previous.Excluded {
		if e.MatchedWatcherID == watcherID {
			kept = append(kept, e)
		}
	}
	return kept
}

func refineTarget(w watch.Watcher) string {
	parts := []string{}
	for _, part := range []string{w.GeoRegion, w.GeoState} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}

func pollInterval(repo Repository) func() time.Duration {
	return func() time.Duration {
		settings, err := repo.GetSettings()
		if err != nil || settings.PollingInterval <= 0 {
			return 5 * time.Minute
		}
		return time.Duration(settings.PollingInterval) * time.Minute
	}
}

package quota

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/news-watch/app/article"
	"github.com/lysyi3m/news-watch/app/database"
	"github.com/lysyi3m/news-watch/app/metrics"
)

const (
	storeKey   = "quota"
	dateLayout = "2006-01-02"

	// Unlimited marks a provider that never runs out of quota.
	Unlimited = -1
)

// DefaultLimits are the free-tier daily request limits per provider.
var DefaultLimits = map[article.Provider]int{
	article.ProviderNewsAPI:  100,
	article.ProviderGNews:    100,
	article.ProviderNewsData: 200,
	article.ProviderRSS:      Unlimited,
}

type Usage struct {
	Used  int `json:"used"`
	Limit int `json:"limit"`
}

func (u Usage) Unlimited() bool {
	return u.Limit == Unlimited
}

func (u Usage) Remaining() int {
	if u.Unlimited() {
		return Unlimited
	}
	return max(u.Limit-u.Used, 0)
}

type state struct {
	Date      string                   `json:"date"`
	Providers map[article.Provider]int `json:"providers"`
}

// Tracker counts daily requests per provider. The day is the UTC calendar
// date; usage resets when the stored date differs from today.
type Tracker struct {
	store  database.Store
	limits map[article.Provider]int
	now    func() time.Time

	mu    sync.Mutex
	state *state
}

func NewTracker(store database.Store, limits map[article.Provider]int, now func() time.Time) *Tracker {
	if limits == nil {
		limits = DefaultLimits
	}
	if now == nil {
		now = time.Now
	}

	return &Tracker{
		store:  store,
		limits: limits,
		now:    now,
	}
}

func (t *Tracker) HasQuota(provider article.Provider) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	limit, ok := t.limits[provider]
	if !ok || limit == Unlimited {
		return true
	}

	return t.current().Providers[provider] < limit
}

// RecordUsage increments today's usage for provider and persists it.
func (t *Tracker) RecordUsage(provider article.Provider) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.current()
	s.Providers[provider]++
	metrics.QuotaUsed.WithLabelValues(string(provider)).Set(float64(s.Providers[provider]))

	if err := t.store.Set(storeKey, s); err != nil {
		return fmt.Errorf("failed to persist quota: %w", err)
	}

	return nil
}

// Status returns a snapshot of today's usage for every known provider.
func (t *Tracker) Status() map[article.Provider]Usage {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.current()
	status := make(map[article.Provider]Usage, len(t.limits))
	for provider, limit := range t.limits {
		status[provider] = Usage{Used: s.Providers[provider], Limit: limit}
	}

	return status
}

// current returns today's state, loading it on first use and resetting it
// on a new day. Callers hold t.mu.
func (t *Tracker) current() *state {
	today := t.now().UTC().Format(dateLayout)

	if t.state == nil {
		loaded := &state{}
		found, err := t.store.Get(storeKey, loaded)
		if err != nil {
			slog.Warn("Failed to load quota state, starting fresh", "error", err)
		}
		if found && err == nil {
			t.state = loaded
		}
	}

	if t.state == nil || t.state.Date != today {
		t.state = &state{Date: today}
	}
	if t.state.Providers == nil {
		t.state.Providers = make(map[article.Provider]int)
	}

	return t.state
}

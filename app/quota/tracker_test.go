package quota

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lysyi3m/news-watch/app/article"
	"github.com/lysyi3m/news-watch/app/database"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 16, 15, 0, 0, 0, time.UTC)}
}

func TestHasQuotaUntilLimit(t *testing.T) {
	clock := newClock()
	tracker := NewTracker(database.NewMemoryStore(), map[article.Provider]int{article.ProviderNewsAPI: 2}, clock.Now)

	assert.True(t, tracker.HasQuota(article.ProviderNewsAPI))
	require.NoError(t, tracker.RecordUsage(article.ProviderNewsAPI))
	assert.True(t, tracker.HasQuota(article.ProviderNewsAPI))
	require.NoError(t, tracker.RecordUsage(article.ProviderNewsAPI))
	assert.False(t, tracker.HasQuota(article.ProviderNewsAPI))
}

func TestUnlimitedProviderNeverRunsOut(t *testing.T) {
	tracker := NewTracker(database.NewMemoryStore(), nil, newClock().Now)

	for range 500 {
		require.NoError(t, tracker.RecordUsage(article.ProviderRSS))
	}

	assert.True(t, tracker.HasQuota(article.ProviderRSS))
	status := tracker.Status()
	assert.Equal(t, 500, status[article.ProviderRSS].Used)
	assert.True(t, status[article.ProviderRSS].Unlimited())
	assert.Equal(t, Unlimited, status[article.ProviderRSS].Remaining())
}

func TestUnknownProviderHasQuota(t *testing.T) {
	tracker := NewTracker(database.NewMemoryStore(), nil, newClock().Now)

	assert.True(t, tracker.HasQuota(article.Provider("mystery")))
}

func TestQuotaRollsOverOnNewDay(t *testing.T) {
	clock := newClock()
	tracker := NewTracker(database.NewMemoryStore(), nil, clock.Now)

	for range 100 {
		require.NoError(t, tracker.RecordUsage(article.ProviderNewsAPI))
	}
	assert.False(t, tracker.HasQuota(article.ProviderNewsAPI))

	// Late the same day, still exhausted.
	clock.Set(time.Date(2026, 10, 16, 23, 59, 0, 0, time.UTC))
	assert.False(t, tracker.HasQuota(article.ProviderNewsAPI))

	clock.Set(time.Date(2026, 10, 17, 0, 1, 0, 0, time.UTC))
	assert.True(t, tracker.HasQuota(article.ProviderNewsAPI))
	assert.Equal(t, 0, tracker.Status()[article.ProviderNewsAPI].Used)
}

func TestQuotaPersistsAcrossTrackers(t *testing.T) {
	store := database.NewMemoryStore()
	clock := newClock()

	first := NewTracker(store, nil, clock.Now)
	for range 3 {
		require.NoError(t, first.RecordUsage(article.ProviderGNews))
	}

	second := NewTracker(store, nil, clock.Now)
	assert.Equal(t, 3, second.Status()[article.ProviderGNews].Used)
	assert.Equal(t, 97, second.Status()[article.ProviderGNews].Remaining())
}

func TestPersistedStateFromPreviousDayIsIgnored(t *testing.T) {
	store := database.NewMemoryStore()
	require.NoError(t, store.Set(storeKey, state{
		Date:      "2026-10-15",
		Providers: map[article.Provider]int{article.ProviderNewsAPI: 100},
	}))

	tracker := NewTracker(store, nil, newClock().Now)

	assert.True(t, tracker.HasQuota(article.ProviderNewsAPI))
}

func TestStatusListsAllProviders(t *testing.T) {
	tracker := NewTracker(database.NewMemoryStore(), nil, newClock().Now)

	status := tracker.Status()

	assert.Len(t, status, 4)
	assert.Equal(t, Usage{Used: 0, Limit: 100}, status[article.ProviderNewsAPI])
	assert.Equal(t, Usage{Used: 0, Limit: 100}, status[article.ProviderGNews])
	assert.Equal(t, Usage{Used: 0, Limit: 200}, status[article.ProviderNewsData])
	assert.Equal(t, Usage{Used: 0, Limit: Unlimited}, status[article.ProviderRSS])
}

func TestConcurrentRecordUsage(t *testing.T) {
	tracker := NewTracker(database.NewMemoryStore(), nil, newClock().Now)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = tracker.RecordUsage(article.ProviderNewsData)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, tracker.Status()[article.ProviderNewsData].Used)
}

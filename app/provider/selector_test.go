package provider

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lysyi3m/news-watch/app/article"
)

type fakeQuota struct {
	mu        sync.Mutex
	exhausted map[article.Provider]bool
	recorded  map[article.Provider]int
}

func newFakeQuota(exhausted ...article.Provider) *fakeQuota {
	q := &fakeQuota{
		exhausted: make(map[article.Provider]bool),
		recorded:  make(map[article.Provider]int),
	}
	for _, p := range exhausted {
		q.exhausted[p] = true
	}
	return q
}

func (q *fakeQuota) HasQuota(p article.Provider) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return !q.exhausted[p]
}

func (q *fakeQuota) RecordUsage(p article.Provider) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.recorded[p]++
	return nil
}

func (q *fakeQuota) count(p article.Provider) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.recorded[p]
}

func TestSelectorRotatesTwoAtATime(t *testing.T) {
	s := NewSelector(newFakeQuota(), RotationOrder)

	assert.Equal(t, []article.Provider{article.ProviderNewsAPI, article.ProviderGNews}, s.Select(false))
	assert.Equal(t, []article.Provider{article.ProviderGNews, article.ProviderNewsData}, s.Select(false))
	assert.Equal(t, []article.Provider{article.ProviderNewsData, article.ProviderNewsAPI}, s.Select(false))
	assert.Equal(t, []article.Provider{article.ProviderNewsAPI, article.ProviderGNews}, s.Select(false))
}

func TestSelectorEveryProviderAppears(t *testing.T) {
	s := NewSelector(newFakeQuota(), RotationOrder)

	seen := make(map[article.Provider]bool)
	for range len(RotationOrder) {
		for _, p := range s.Select(true) {
			seen[p] = true
		}
	}

	for _, p := range RotationOrder {
		assert.True(t, seen[p], "provider %s never selected", p)
	}
}

func TestSelectorTurboReturnsOne(t *testing.T) {
	s := NewSelector(newFakeQuota(), RotationOrder)

	assert.Equal(t, []article.Provider{article.ProviderNewsAPI}, s.Select(true))
	assert.Equal(t, []article.Provider{article.ProviderGNews}, s.Select(true))
}

func TestSelectorSkipsExhaustedAndUnconfigured(t *testing.T) {
	s := NewSelector(newFakeQuota(article.ProviderGNews), []article.Provider{article.ProviderNewsAPI, article.ProviderGNews})

	assert.Equal(t, []article.Provider{article.ProviderNewsAPI}, s.Select(false))
	assert.Equal(t, []article.Provider{article.ProviderNewsAPI}, s.Select(false))
}

func TestSelectorFallsBackToRSS(t *testing.T) {
	quota := newFakeQuota(article.ProviderNewsAPI, article.ProviderGNews, article.ProviderNewsData)

	assert.Equal(t, []article.Provider{article.ProviderRSS}, NewSelector(quota, RotationOrder).Select(false))
	assert.Equal(t, []article.Provider{article.ProviderRSS}, NewSelector(quota, RotationOrder).Select(true))
	assert.Equal(t, []article.Provider{article.ProviderRSS}, NewSelector(newFakeQuota(), nil).Select(false))
}

package provider

import (
	"sync"

	"github.com/lysyi3m/news-watch/app/article"
)

const maxProvidersPerPoll = 2

// Selector picks which providers to query for a fetch. It rotates a single
// cursor across calls so consecutive polls lead with different providers.
type Selector struct {
	quota      QuotaTracker
	configured []article.Provider

	mu     sync.Mutex
	cursor int
}

// NewSelector takes the paid providers that have credentials, in rotation order.
func NewSelector(quota QuotaTracker, configured []article.Provider) *Selector {
	return &Selector{
		quota:      quota,
		configured: configured,
	}
}

// Select returns up to two providers with quota left, or the RSS fallback
// alone when none remain. In turbo mode only the first pick is returned.
func (s *Selector) Select(turbo bool) []article.Provider {
	selected := s.next()
	if turbo {
		return selected[:1]
	}
	return selected
}

func (s *Selector) next() []article.Provider {
	available := make([]article.Provider, 0, len(s.configured))
	for _, p := range s.configured {
		if s.quota.HasQuota(p) {
			available = append(available, p)
		}
	}

	if len(available) == 0 {
		return []article.Provider{article.ProviderRSS}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	count := min(maxProvidersPerPoll, len(available))
	selected := make([]article.Provider, 0, count)
	for i := range count {
		selected = append(selected, available[(s.cursor+i)%len(available)])
	}
	s.cursor = (s.cursor + 1) % len(available)

	return selected
}

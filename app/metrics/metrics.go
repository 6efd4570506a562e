package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "news_watch"

var (
	ProviderRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Total number of news provider requests",
		},
		[]string{"provider", "status"},
	)

	ProviderArticlesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_articles_total",
			Help:      "Total number of articles returned by news providers",
		},
		[]string{"provider"},
	)

	PollDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "poll_duration_seconds",
			Help:      "Duration of poll cycles in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"kind"},
	)

	PollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_total",
			Help:      "Total number of poll cycles",
		},
		[]string{"kind", "status"},
	)

	MatchedArticles = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "matched_articles",
			Help:      "Number of articles in the latest poll result",
		},
		[]string{"kind"},
	)

	QuotaUsed = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "quota_used",
			Help:      "Requests used today per provider",
		},
		[]string{"provider"},
	)

	GovFeedFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gov_feed_fetches_total",
			Help:      "Total number of government feed fetches",
		},
		[]string{"status"},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Total number of notification deliveries by channel",
		},
		[]string{"channel", "status"},
	)

	TasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_total",
			Help:      "Total number of background task executions",
		},
		[]string{"type", "status"},
	)
)

func StatusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

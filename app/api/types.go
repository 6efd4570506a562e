package api

import (
	"context"

	"github.com/lysyi3m/news-watch/app/article"
	"github.com/lysyi3m/news-watch/app/feed"
	"github.com/lysyi3m/news-watch/app/gov"
	"github.com/lysyi3m/news-watch/app/poller"
	"github.com/lysyi3m/news-watch/app/quota"
	"github.com/lysyi3m/news-watch/app/watch"
)

type GeneratorInterface interface {
	Run(channel feed.Channel, articles []article.Scored) (string, error)
}

var _ GeneratorInterface = (*feed.Generator)(nil)

type NewsPollerInterface interface {
	Trigger(ctx context.Context) error
	Status() poller.Status
	Result() poller.NewsResult
}

type GovPollerInterface interface {
	Trigger(ctx context.Context) error
	Status() poller.Status
	Result() poller.GovResult
}

type QuotaReporter interface {
	Status() map[article.Provider]quota.Usage
}

var (
	_ NewsPollerInterface = (*poller.NewsPoller)(nil)
	_ GovPollerInterface  = (*poller.GovPoller)(nil)
	_ QuotaReporter       = (*quota.Tracker)(nil)
)

type Handler struct {
	repo      *watch.Repository
	news      NewsPollerInterface
	gov       GovPollerInterface
	quota     QuotaReporter
	registry  *gov.Registry
	generator GeneratorInterface
	baseURL   string
	version   string
}

// WatcherRequest is the body of create and update calls. GeoState is a
// pointer so an omitted field can be told apart from an explicit "".
type WatcherRequest struct {
	Name             string               `json:"name"`
	Keywords         []string             `json:"keywords"`
	ExcludeKeywords  []string             `json:"excludeKeywords"`
	TrackedEntities  []string             `json:"trackedEntities"`
	GeoState         *string              `json:"geoState"`
	GeoRegion        string               `json:"geoRegion"`
	GeoCustom        string               `json:"geoCustom"`
	DateMode         watch.DateMode       `json:"dateMode"`
	RollingDays      int                  `json:"rollingDays"`
	DateFrom         string               `json:"dateFrom"`
	DateTo           string               `json:"dateTo"`
	SourceTypeFilter []article.SourceType `json:"sourceTypeFilter"`
	Active           *bool                `json:"active"`
	AlertMode        watch.AlertMode      `json:"alertMode"`
	Channels         *watch.Channels      `json:"channels"`
}

func (r WatcherRequest) toWatcher() watch.Watcher {
	w := watch.Watcher{
		Name:             r.Name,
		Keywords:         r.Keywords,
		ExcludeKeywords:  r.ExcludeKeywords,
		TrackedEntities:  r.TrackedEntities,
		GeoState:         watch.DefaultGeoState,
		GeoRegion:        r.GeoRegion,
		GeoCustom:        r.GeoCustom,
		DateMode:         r.DateMode,
		RollingDays:      r.RollingDays,
		DateFrom:         r.DateFrom,
		DateTo:           r.DateTo,
		SourceTypeFilter: r.SourceTypeFilter,
		Active:           true,
		AlertMode:        r.AlertMode,
	}
	if r.GeoState != nil {
		w.GeoState = *r.GeoState
	}
	if r.Active != nil {
		w.Active = *r.Active
	}
	if r.Channels != nil {
		w.Channels = *r.Channels
	}
	return w
}

type GovWatcherRequest struct {
	FeedID string `json:"feedId" binding:"required"`
}

package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/news-watch/app/article"
	"github.com/lysyi3m/news-watch/app/feed"
	"github.com/lysyi3m/news-watch/app/gov"
	"github.com/lysyi3m/news-watch/app/poller"
	"github.com/lysyi3m/news-watch/app/watch"
)

const (
	feedAll = "all"
	feedGov = "gov"
)

func NewHandler(repo *watch.Repository, news NewsPollerInterface, govPoller GovPollerInterface,
	quota QuotaReporter, registry *gov.Registry, baseURL, version string) *Handler {
	return &Handler{
		repo:      repo,
		news:      news,
		gov:       govPoller,
		quota:     quota,
		registry:  registry,
		generator: feed.NewGenerator(),
		baseURL:   baseURL,
		version:   version,
	}
}

// GetFeed renders the current matches of one watcher as RSS. The ids
// "all" and "gov" select every watcher and the government feeds.
func (h *Handler) GetFeed(c *gin.Context) {
	id := c.Param("id")

	channel := feed.Channel{ID: id, BaseURL: h.baseURL, Version: h.version}
	var articles []article.Scored
	var updated time.Time

	switch id {
	case feedAll:
		result := h.news.Result()
		channel.Title = "News Watch: all watchers"
		articles = result.Articles
		updated = result.LastPoll
	case feedGov:
		result := h.gov.Result()
		channel.Title = "News Watch: government feeds"
		articles = make([]article.Scored, 0, len(result.Articles))
		for _, a := range result.Articles {
			articles = append(articles, article.Scored{Article: a})
		}
		updated = result.LastPoll
	default:
		w, err := h.repo.GetWatcher(id)
		if errors.Is(err, watch.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		if err != nil {
			slog.Error("Database error", "operation", "get_watcher", "watcher", id, "error", err)
			c.Status(http.StatusInternalServerError)
			return
		}

		result := h.news.Result()
		channel.Title = "News Watch: " + w.Name
		for _, a := range result.Articles {
			if a.MatchedWatcherID == w.ID {
				articles = append(articles, a)
			}
		}
		updated = result.LastPoll
	}

	rss, err := h.generator.Run(channel, articles)
	if err != nil {
		slog.Error("RSS generation error", "feed", id, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(articles)))
	c.Header("X-Feed-Name", id)
	if !updated.IsZero() {
		c.Header("X-Last-Updated", updated.Format(time.RFC3339))
	}

	c.String(http.StatusOK, rss)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if watchers, err := h.repo.ListWatchers(); err == nil {
		health["watchers"] = len(watchers)
	} else {
		health["status"] = "degraded"
		slog.Error("Database error", "operation", "list_watchers", "error", err)
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"news":  h.news.Status(),
		"gov":   h.gov.Status(),
		"quota": h.quota.Status(),
	})
}

func (h *Handler) TriggerPoll(c *gin.Context) {
	h.trigger(c, "news", h.news.Trigger)
}

func (h *Handler) TriggerGovPoll(c *gin.Context) {
	h.trigger(c, "gov", h.gov.Trigger)
}

func (h *Handler) trigger(c *gin.Context, kind string, start func(ctx context.Context) error) {
	err := start(c.Request.Context())
	if errors.Is(err, poller.ErrPollInProgress) {
		c.JSON(http.StatusConflict, gin.H{"error": "Poll already in progress", "kind": kind})
		return
	}
	if err != nil {
		slog.Error("Error starting poll", "kind", kind, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start poll"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"success": true, "kind": kind, "message": "Poll started"})
}

// ListArticles returns the merged matches, optionally narrowed by watcher,
// confidence and source_type query parameters.
func (h *Handler) ListArticles(c *gin.Context) {
	result := h.news.Result()

	watcherID := c.Query("watcher")
	confidence := article.Confidence(c.Query("confidence"))
	sourceType := article.SourceType(c.Query("source_type"))

	articles := make([]article.Scored, 0, len(result.Articles))
	for _, a := range result.Articles {
		if watcherID != "" && a.MatchedWatcherID != watcherID {
			continue
		}
		if confidence != "" && a.GeoConfidence != confidence {
			continue
		}
		if sourceType != "" && a.SourceType != sourceType {
			continue
		}
		articles = append(articles, a)
	}

	c.JSON(http.StatusOK, gin.H{
		"articles": articles,
		"total":    len(articles),
		"lastPoll": result.LastPoll,
		"error":    result.Error,
	})
}

func (h *Handler) ListExcluded(c *gin.Context) {
	result := h.news.Result()

	c.JSON(http.StatusOK, gin.H{
		"excluded": result.Excluded,
		"total":    len(result.Excluded),
	})
}

func (h *Handler) ListGovArticles(c *gin.Context) {
	result := h.gov.Result()

	c.JSON(http.StatusOK, gin.H{
		"articles": result.Articles,
		"total":    len(result.Articles),
		"feeds":    result.Feeds,
		"lastPoll": result.LastPoll,
	})
}

func (h *Handler) GetQuota(c *gin.Context) {
	providers := make(map[article.Provider]gin.H)
	for provider, usage := range h.quota.Status() {
		providers[provider] = gin.H{
			"used":      usage.Used,
			"limit":     usage.Limit,
			"remaining": usage.Remaining(),
			"unlimited": usage.Unlimited(),
		}
	}

	c.JSON(http.StatusOK, gin.H{"providers": providers})
}

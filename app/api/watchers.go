package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/news-watch/app/gov"
	"github.com/lysyi3m/news-watch/app/watch"
)

func (h *Handler) ListWatchers(c *gin.Context) {
	watchers, err := h.repo.ListWatchers()
	if err != nil {
		slog.Error("Database error", "operation", "list_watchers", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"watchers": watchers,
		"total":    len(watchers),
	})
}

func (h *Handler) GetWatcher(c *gin.Context) {
	w, err := h.repo.GetWatcher(c.Param("id"))
	if err != nil {
		respondError(c, "get_watcher", err)
		return
	}

	c.JSON(http.StatusOK, w)
}

func (h *Handler) CreateWatcher(c *gin.Context) {
	var req WatcherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	w, err := h.repo.CreateWatcher(req.toWatcher())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid watcher", "details": err.Error()})
		return
	}

	slog.Info("Watcher created", "watcher", w.ID, "name", w.Name)
	c.JSON(http.StatusCreated, w)
}

func (h *Handler) UpdateWatcher(c *gin.Context) {
	id := c.Param("id")

	existing, err := h.repo.GetWatcher(id)
	if err != nil {
		respondError(c, "get_watcher", err)
		return
	}

	var req WatcherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	next := req.toWatcher()
	if req.Active == nil {
		next.Active = existing.Active
	}

	w, err := h.repo.UpdateWatcher(id, next)
	if errors.Is(err, watch.ErrNotFound) {
		respondError(c, "update_watcher", err)
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid watcher", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, w)
}

func (h *Handler) DeleteWatcher(c *gin.Context) {
	id := c.Param("id")
	if err := h.repo.DeleteWatcher(id); err != nil {
		respondError(c, "delete_watcher", err)
		return
	}

	slog.Info("Watcher deleted", "watcher", id)
	c.Status(http.StatusNoContent)
}

func (h *Handler) ToggleWatcher(c *gin.Context) {
	w, err := h.repo.ToggleWatcher(c.Param("id"))
	if err != nil {
		respondError(c, "toggle_watcher", err)
		return
	}

	c.JSON(http.StatusOK, w)
}

// GetGovRegistry lists the federal feeds and either the feeds of the state
// given in the query or the names of every state in the registry.
func (h *Handler) GetGovRegistry(c *gin.Context) {
	response := gin.H{"federal": h.registry.Federal()}

	if state := c.Query("state"); state != "" {
		feeds := h.registry.State(state)
		if feeds == nil {
			feeds = []gov.Feed{}
		}
		response["state"] = state
		response["feeds"] = feeds
	} else {
		response["states"] = h.registry.States()
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) ListGovWatchers(c *gin.Context) {
	govWatchers, err := h.repo.ListGovWatchers()
	if err != nil {
		slog.Error("Database error", "operation", "list_gov_watchers", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"watchers": govWatchers,
		"total":    len(govWatchers),
	})
}

func (h *Handler) AddGovWatcher(c *gin.Context) {
	var req GovWatcherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	f, ok := h.registry.Find(req.FeedID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Feed not found in registry"})
		return
	}

	gw, err := h.repo.AddGovWatcher(watch.GovWatcher{
		FeedID:   f.ID,
		FeedURL:  f.URL,
		Name:     f.Name,
		Category: f.Category,
		Level:    f.Level,
	})
	if errors.Is(err, watch.ErrDuplicateFeed) {
		c.JSON(http.StatusConflict, gin.H{"error": "Feed already watched"})
		return
	}
	if err != nil {
		slog.Error("Database error", "operation", "add_gov_watcher", "feed", f.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusCreated, gw)
}

func (h *Handler) DeleteGovWatcher(c *gin.Context) {
	if err := h.repo.DeleteGovWatcher(c.Param("id")); err != nil {
		respondError(c, "delete_gov_watcher", err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ToggleGovWatcher(c *gin.Context) {
	gw, err := h.repo.ToggleGovWatcher(c.Param("id"))
	if err != nil {
		respondError(c, "toggle_gov_watcher", err)
		return
	}

	c.JSON(http.StatusOK, gw)
}

func respondError(c *gin.Context, operation string, err error) {
	if errors.Is(err, watch.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found", "details": err.Error()})
		return
	}

	slog.Error("Database error", "operation", operation, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
}

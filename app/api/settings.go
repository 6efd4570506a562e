package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetSettings(c *gin.Context) {
	settings, err := h.repo.GetSettings()
	if err != nil {
		slog.Error("Database error", "operation", "get_settings", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, settings)
}

// UpdateSettings merges the body over the stored settings, so a partial
// object changes only the fields it names.
func (h *Handler) UpdateSettings(c *gin.Context) {
	settings, err := h.repo.GetSettings()
	if err != nil {
		slog.Error("Database error", "operation", "get_settings", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.repo.SaveSettings(settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid settings", "details": err.Error()})
		return
	}

	slog.Info("Settings updated", "polling_interval", settings.PollingInterval, "turbo", settings.TurboMode)
	c.JSON(http.StatusOK, settings)
}

func (h *Handler) ListNotifications(c *gin.Context) {
	notifications, err := h.repo.ListNotifications()
	if err != nil {
		slog.Error("Database error", "operation", "list_notifications", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	unread := 0
	for _, n := range notifications {
		if !n.Read {
			unread++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"total":         len(notifications),
		"unread":        unread,
	})
}

func (h *Handler) MarkNotificationsRead(c *gin.Context) {
	if err := h.repo.MarkAllRead(); err != nil {
		slog.Error("Database error", "operation", "mark_all_read", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

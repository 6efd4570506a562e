package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, apiAccessKey string) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
		SkipPaths: []string{"/health", "/metrics"},
	}))

	r.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-API-Key"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	r.Use(cors.New(corsConfig))

	setupRoutes(r, handler, apiAccessKey)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	r.GET("/feeds/:id", handler.GetFeed)

	r.GET("/health", handler.GetHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	if apiAccessKey != "" {
		api.Use(authMiddleware(apiAccessKey))
		slog.Info("API endpoints require authentication")
	} else {
		slog.Warn("API endpoints are unauthenticated (API_ACCESS_KEY not set)")
	}
	{
		api.GET("/status", handler.GetStatus)
		api.POST("/poll", handler.TriggerPoll)
		api.GET("/articles", handler.ListArticles)
		api.GET("/excluded", handler.ListExcluded)
		api.GET("/quota", handler.GetQuota)

		api.GET("/watchers", handler.ListWatchers)
		api.POST("/watchers", handler.CreateWatcher)
		api.GET("/watchers/:id", handler.GetWatcher)
		api.PUT("/watchers/:id", handler.UpdateWatcher)
		api.DELETE("/watchers/:id", handler.DeleteWatcher)
		api.POST("/watchers/:id/toggle", handler.ToggleWatcher)

		api.GET("/gov/registry", handler.GetGovRegistry)
		api.GET("/gov/watchers", handler.ListGovWatchers)
		api.POST("/gov/watchers", handler.AddGovWatcher)
		api.DELETE("/gov/watchers/:id", handler.DeleteGovWatcher)
		api.POST("/gov/watchers/:id/toggle", handler.ToggleGovWatcher)
		api.GET("/gov/articles", handler.ListGovArticles)
		api.POST("/gov/poll", handler.TriggerGovPoll)

		api.GET("/settings", handler.GetSettings)
		api.PUT("/settings", handler.UpdateSettings)

		api.GET("/notifications", handler.ListNotifications)
		api.POST("/notifications/read", handler.MarkNotificationsRead)
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":     "News Watch",
			"version":     handler.version,
			"description": "Geo-targeted news watcher with multi-provider fetching and government feed monitoring",
			"endpoints": map[string]string{
				"feed":    "/feeds/<watcher id | all | gov>",
				"health":  "/health",
				"metrics": "/metrics",
				"api":     "/api/*",
			},
			"api_status": map[string]interface{}{
				"auth_required": apiAccessKey != "",
				"header":        "X-API-Key",
			},
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}

// authMiddleware accepts the key from X-API-Key or Authorization: Bearer.
func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-API-Key")

		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			c.Abort()
			return
		}

		if providedKey != apiAccessKey {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

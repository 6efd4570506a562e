package main

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/news-watch/app/api"
	"github.com/lysyi3m/news-watch/app/article"
	"github.com/lysyi3m/news-watch/app/cfg"
	"github.com/lysyi3m/news-watch/app/database"
	"github.com/lysyi3m/news-watch/app/feed"
	"github.com/lysyi3m/news-watch/app/geo"
	"github.com/lysyi3m/news-watch/app/gov"
	"github.com/lysyi3m/news-watch/app/httpclient"
	"github.com/lysyi3m/news-watch/app/matcher"
	"github.com/lysyi3m/news-watch/app/notify"
	"github.com/lysyi3m/news-watch/app/poller"
	"github.com/lysyi3m/news-watch/app/provider"
	"github.com/lysyi3m/news-watch/app/quota"
	"github.com/lysyi3m/news-watch/app/tasks"
	"github.com/lysyi3m/news-watch/app/watch"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting News Watch", "version", appCfg.Version, "timezone", time.Local.String())

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to connect to database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	store := database.NewKVStore(db)

	repo := watch.NewRepository(store, watch.DefaultSettings(appCfg.PollInterval, appCfg.TurboMode), time.Now)

	loader := watch.NewLoader(appCfg.WatchersDir)
	if err := loader.Run(); err != nil {
		slog.Error("Failed to load watcher definitions", "dir", appCfg.WatchersDir, "error", err)
		os.Exit(1)
	}
	if seeded, err := loader.Seed(repo); err != nil {
		slog.Error("Failed to seed watchers", "error", err)
		os.Exit(1)
	} else {
		slog.Info("Watcher definitions seeded", "dir", appCfg.WatchersDir, "count", seeded)
	}

	tracker := quota.NewTracker(store, quota.DefaultLimits, time.Now)

	client := httpclient.New(&http.Client{}, httpclient.NewHostRateLimiter(appCfg.HostRateIntervalDuration()),
		appCfg.UserAgent, appCfg.RequestTimeoutDuration())
	feedParser := feed.NewParser()

	providers, configured := buildProviders(appCfg, client, feedParser)
	selector := provider.NewSelector(tracker, configured)

	var enricher *provider.Enricher
	if appCfg.ExtractContent {
		enricher = provider.NewEnricher(client, feed.NewContentExtractor())
	}
	orchestrator := provider.NewOrchestrator(providers, selector, tracker, enricher)

	scorer := geo.NewScorer()
	engine := matcher.NewEngine(scorer, time.Now)

	registry, err := gov.NewRegistry()
	if err != nil {
		slog.Error("Failed to load government feed registry", "error", err)
		os.Exit(1)
	}
	govFetcher := gov.NewFetcher(client, feedParser, appCfg.ProxyURL)

	var publisher notify.Publisher
	if appCfg.NATSURL != "" {
		natsPublisher, err := notify.NewNATSPublisher(appCfg.NATSURL, appCfg.NATSSubject)
		if err != nil {
			slog.Warn("Push alerts disabled, NATS connection failed", "url", appCfg.NATSURL, "error", err)
		} else {
			defer natsPublisher.Close()
			publisher = natsPublisher
		}
	}
	dispatcher := notify.NewDispatcher(client, publisher, repo, appCfg.ProxyURL)

	slog.Info("Starting alert dispatch workers", "workers", appCfg.WorkerCount)
	taskScheduler := tasks.NewScheduler(appCfg.WorkerCount)
	taskScheduler.Start()
	defer taskScheduler.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	newsPoller := poller.NewNewsPoller(repo, store, orchestrator, engine, scorer, taskScheduler, dispatcher, time.Now)
	newsPoller.Start(ctx)
	defer newsPoller.Stop()

	govPoller := poller.NewGovPoller(repo, store, registry, govFetcher, time.Now)
	govPoller.Start(ctx)
	defer govPoller.Stop()

	baseURL := cmp.Or(appCfg.BaseUrl, "http://localhost:"+appCfg.Port)
	apiHandler := api.NewHandler(repo, newsPoller, govPoller, tracker, registry, baseURL, appCfg.Version)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port, "base_url", baseURL)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	cancel()
	slog.Info("News Watch shutdown complete")
}

// buildProviders returns every provider client plus the paid providers that
// can be queried, in rotation order. A paid provider is usable when it has a
// key or when requests go through the proxy, which holds the keys itself.
func buildProviders(appCfg *cfg.Cfg, client *httpclient.Client, parser *feed.Parser) ([]provider.Provider, []article.Provider) {
	keys := map[article.Provider]string{
		article.ProviderNewsAPI:  appCfg.NewsAPIKey,
		article.ProviderGNews:    appCfg.GNewsKey,
		article.ProviderNewsData: appCfg.NewsDataKey,
	}

	constructors := map[article.Provider]func(*httpclient.Client, string, string) *provider.SearchAPI{
		article.ProviderNewsAPI:  provider.NewNewsAPI,
		article.ProviderGNews:    provider.NewGNews,
		article.ProviderNewsData: provider.NewNewsData,
	}

	providers := []provider.Provider{provider.NewGoogleRSS(client, parser, appCfg.ProxyURL)}
	var configured []article.Provider

	for _, name := range provider.RotationOrder {
		if keys[name] == "" && appCfg.ProxyURL == "" {
			slog.Info("Provider disabled, no API key", "provider", name)
			continue
		}
		providers = append(providers, constructors[name](client, keys[name], appCfg.ProxyURL))
		configured = append(configured, name)
	}

	slog.Info("Providers configured", "paid", len(configured), "proxy", appCfg.ProxyURL != "")
	return providers, configured
}

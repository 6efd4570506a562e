package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage
	DBPath      string `long:"db-path" env:"DB_PATH" default:"./data/news-watch.db" description:"SQLite database file"`
	WatchersDir string `long:"watchers-dir" env:"WATCHERS_DIR" default:"./watchers" description:"Directory containing watcher definition files"`

	// HTTP server
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl      string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://watch.example.com)"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Polling
	PollInterval int  `long:"poll-interval" env:"POLL_INTERVAL" default:"5" description:"Default polling interval in minutes"`
	TurboMode    bool `long:"turbo" env:"TURBO_MODE" description:"Query a single provider per poll to save quota"`
	WorkerCount  int  `long:"worker-count" env:"WORKER_COUNT" default:"3" description:"Number of background workers for alert dispatch"`

	// Providers
	NewsAPIKey       string `long:"newsapi-key" env:"NEWSAPI_KEY" description:"NewsAPI.org API key"`
	GNewsKey         string `long:"gnews-key" env:"GNEWS_KEY" description:"GNews API key"`
	NewsDataKey      string `long:"newsdata-key" env:"NEWSDATA_KEY" description:"NewsData.io API key"`
	ProxyURL         string `long:"proxy-url" env:"PROXY_URL" description:"Forwarding proxy base URL (optional)"`
	RequestTimeout   int    `long:"request-timeout" env:"REQUEST_TIMEOUT" default:"10" description:"Timeout for a single upstream request in seconds"`
	HostRateInterval int    `long:"host-rate-interval" env:"HOST_RATE_INTERVAL" default:"250" description:"Minimum milliseconds between requests to the same host"`
	ExtractContent   bool   `long:"extract-content" env:"EXTRACT_CONTENT" description:"Fetch article pages to fill full content"`

	// Notifications
	NATSURL     string `long:"nats-url" env:"NATS_URL" description:"NATS server URL for push alerts (optional)"`
	NATSSubject string `long:"nats-subject" env:"NATS_SUBJECT" default:"news-watch.alerts" description:"NATS subject prefix for push alerts"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"NewsWatch/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps and quiet hours (e.g., UTC, America/Boise)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

func Load() (*Cfg, error) {
	return parse(nil)
}

func parse(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	var err error
	if args == nil {
		_, err = parser.Parse()
	} else {
		_, err = parser.ParseArgs(args)
	}
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:           raw.DBPath,
		WatchersDir:      raw.WatchersDir,
		Port:             raw.Port,
		BaseUrl:          raw.BaseUrl,
		APIAccessKey:     raw.APIAccessKey,
		PollInterval:     raw.PollInterval,
		TurboMode:        raw.TurboMode,
		WorkerCount:      raw.WorkerCount,
		NewsAPIKey:       raw.NewsAPIKey,
		GNewsKey:         raw.GNewsKey,
		NewsDataKey:      raw.NewsDataKey,
		ProxyURL:         raw.ProxyURL,
		RequestTimeout:   raw.RequestTimeout,
		HostRateInterval: raw.HostRateInterval,
		ExtractContent:   raw.ExtractContent,
		NATSURL:          raw.NATSURL,
		NATSSubject:      raw.NATSSubject,
		UserAgent:        raw.UserAgent,
		Timezone:         raw.Timezone,
		Debug:            raw.Debug,
		Version:          GetVersion(),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	return cfg, nil
}

func (c *Cfg) validate() error {
	positiveFields := map[string]int{
		"poll interval":   c.PollInterval,
		"worker count":    c.WorkerCount,
		"request timeout": c.RequestTimeout,
	}

	for fieldName, fieldValue := range positiveFields {
		if fieldValue <= 0 {
			return fmt.Errorf("%s must be positive", fieldName)
		}
	}

	if c.HostRateInterval < 0 {
		return fmt.Errorf("host rate interval must be non-negative")
	}

	return nil
}

func (c *Cfg) RequestTimeoutDuration() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

func (c *Cfg) HostRateIntervalDuration() time.Duration {
	return time.Duration(c.HostRateInterval) * time.Millisecond
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}

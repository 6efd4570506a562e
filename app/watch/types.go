package watch

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lysyi3m/news-watch/app/article"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateFeed = errors.New("feed already watched")
)

type DateMode string

const (
	DateModeRolling DateMode = "rolling"
	DateModeFixed   DateMode = "fixed"
)

type AlertMode string

const (
	AlertInstant  AlertMode = "instant"
	AlertDigest   AlertMode = "digest"
	AlertBreaking AlertMode = "breaking"
)

const (
	DefaultGeoState    = "Idaho"
	DefaultRollingDays = 7
)

type Channels struct {
	Push  bool `json:"push" yaml:"push"`
	Email bool `json:"email" yaml:"email"`
	Slack bool `json:"slack" yaml:"slack"`
}

type Watcher struct {
	ID               string               `json:"id"`
	Name             string               `json:"name"`
	Keywords         []string             `json:"keywords"`
	ExcludeKeywords  []string             `json:"excludeKeywords"`
	TrackedEntities  []string             `json:"trackedEntities"`
	GeoState         string               `json:"geoState"`
	GeoRegion        string               `json:"geoRegion"`
	GeoCustom        string               `json:"geoCustom"`
	DateMode         DateMode             `json:"dateMode"`
	RollingDays      int                  `json:"rollingDays"`
	DateFrom         string               `json:"dateFrom,omitempty"`
	DateTo           string               `json:"dateTo,omitempty"`
	SourceTypeFilter []article.SourceType `json:"sourceTypeFilter,omitempty"`
	Active           bool                 `json:"active"`
	AlertMode        AlertMode            `json:"alertMode"`
	Channels         Channels             `json:"channels"`
	CreatedAt        time.Time            `json:"createdAt"`
}

// ApplyDefaults fills unset fields for a new watcher.
func (w *Watcher) ApplyDefaults() {
	if w.DateMode == "" {
		w.DateMode = DateModeRolling
	}
	if w.DateMode == DateModeRolling && w.RollingDays == 0 {
		w.RollingDays = DefaultRollingDays
	}
	if w.AlertMode == "" {
		w.AlertMode = AlertInstant
	}
	if w.Channels == (Channels{}) {
		w.Channels = Channels{Push: true}
	}
	w.Keywords = cleanList(w.Keywords)
	w.ExcludeKeywords = cleanList(w.ExcludeKeywords)
	w.TrackedEntities = cleanList(w.TrackedEntities)
}

func (w *Watcher) Validate() error {
	if strings.TrimSpace(w.Name) == "" {
		return fmt.Errorf("name is required")
	}

	switch w.DateMode {
	case DateModeRolling, DateModeFixed:
	default:
		return fmt.Errorf("invalid date mode: %s", w.DateMode)
	}

	if w.RollingDays < 0 {
		return fmt.Errorf("rolling days must be non-negative")
	}

	switch w.AlertMode {
	case AlertInstant, AlertDigest, AlertBreaking:
	default:
		return fmt.Errorf("invalid alert mode: %s", w.AlertMode)
	}

	for i, sourceType := range w.SourceTypeFilter {
		if !sourceType.Valid() {
			return fmt.Errorf("invalid source type at index %d: %s", i, sourceType)
		}
	}

	return nil
}

// GovWatcher binds one registry feed to an active flag.
type GovWatcher struct {
	ID        string    `json:"id"`
	FeedID    string    `json:"feedId"`
	FeedURL   string    `json:"feedUrl"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Level     string    `json:"level"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

type Settings struct {
	PollingInterval   int    `json:"pollingInterval"`
	TurboMode         bool   `json:"turboMode"`
	QuietHoursEnabled bool   `json:"quietHoursEnabled"`
	QuietFrom         string `json:"quietFrom"`
	QuietTo           string `json:"quietTo"`
	DigestTime        string `json:"digestTime"`
	EmailAddress      string `json:"emailAddress"`
	SlackWebhook      string `json:"slackWebhook"`
	GovWatchEnabled   bool   `json:"govWatchEnabled"`
	GovFederal        bool   `json:"govFederal"`
	GovState          string `json:"govState"`
	GovFilter         string `json:"govFilter"`
}

func DefaultSettings(pollingInterval int, turbo bool) Settings {
	return Settings{
		PollingInterval: pollingInterval,
		TurboMode:       turbo,
		QuietFrom:       "22:00",
		QuietTo:         "07:00",
		DigestTime:      "07:00",
		GovFederal:      true,
	}
}

func (s *Settings) Validate() error {
	if s.PollingInterval <= 0 {
		return fmt.Errorf("polling interval must be positive")
	}

	for name, value := range map[string]string{"quiet from": s.QuietFrom, "quiet to": s.QuietTo, "digest time": s.DigestTime} {
		if _, err := time.Parse("15:04", value); err != nil {
			return fmt.Errorf("%s must be HH:MM: %s", name, value)
		}
	}

	return nil
}

type Notification struct {
	ID            string    `json:"id"`
	WatcherID     string    `json:"watcherId"`
	WatcherName   string    `json:"watcherName"`
	ArticleID     string    `json:"articleId"`
	ArticleTitle  string    `json:"articleTitle"`
	ArticleSource string    `json:"articleSource"`
	ArticleURL    string    `json:"articleUrl,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	Read          bool      `json:"read"`
	AlertMode     AlertMode `json:"alertMode"`
}

func cleanList(values []string) []string {
	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			cleaned = append(cleaned, v)
		}
	}
	return cleaned
}

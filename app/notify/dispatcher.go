package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lysyi3m/news-watch/app/httpclient"
	"github.com/lysyi3m/news-watch/app/metrics"
	"github.com/lysyi3m/news-watch/app/watch"
)

const (
	ChannelPush  = "push"
	ChannelEmail = "email"
	ChannelSlack = "slack"

	ReasonQuietHours = "quiet_hours"
)

// Publisher delivers push alerts.
type Publisher interface {
	Publish(msg PushMessage) error
}

type SettingsSource interface {
	GetSettings() (watch.Settings, error)
}

// Alert is one notification to deliver over the watcher's channels.
type Alert struct {
	Notification watch.Notification `json:"notification"`
	Channels     watch.Channels     `json:"channels"`
}

// Outcome records what Dispatch did. Suppressed is set when quiet hours held
// the alert back.
type Outcome struct {
	Suppressed string
	Delivered  []string
}

type emailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type slackPayload struct {
	Text string `json:"text"`
}

type Dispatcher struct {
	client    *httpclient.Client
	publisher Publisher
	settings  SettingsSource
	proxyURL  string
	now       func() time.Time
}

// NewDispatcher builds a dispatcher. publisher may be nil when no NATS
// server is configured.
func NewDispatcher(client *httpclient.Client, publisher Publisher, settings SettingsSource, proxyURL string) *Dispatcher {
	return &Dispatcher{
		client:    client,
		publisher: publisher,
		settings:  settings,
		proxyURL:  strings.TrimRight(proxyURL, "/"),
		now:       time.Now,
	}
}

// Dispatch sends alert over every enabled and configured channel. Channel
// failures are joined into the returned error so the caller can retry.
func (d *Dispatcher) Dispatch(ctx context.Context, alert Alert) (Outcome, error) {
	settings, err := d.settings.GetSettings()
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to load settings: %w", err)
	}

	n := alert.Notification

	if InQuietHours(settings, d.now()) {
		slog.Debug("Alert suppressed", "watcher", n.WatcherID, "article", n.ArticleID, "reason", ReasonQuietHours)
		metrics.NotificationsTotal.WithLabelValues("all", "suppressed").Inc()
		return Outcome{Suppressed: ReasonQuietHours}, nil
	}

	var outcome Outcome
	var errs []error

	send := func(channel string, fn func() error) {
		err := fn()
		metrics.NotificationsTotal.WithLabelValues(channel, metrics.StatusLabel(err)).Inc()
		if err != nil {
			slog.Warn("Alert delivery failed", "channel", channel, "watcher", n.WatcherID, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", channel, err))
			return
		}
		outcome.Delivered = append(outcome.Delivered, channel)
	}

	if alert.Channels.Push && d.publisher != nil {
		send(ChannelPush, func() error {
			return d.publisher.Publish(PushMessage{
				Title:        "News Watch: " + n.WatcherName,
				Body:         n.ArticleTitle,
				URL:          n.ArticleURL,
				Notification: n,
			})
		})
	}

	if alert.Channels.Email && d.proxyURL != "" && settings.EmailAddress != "" {
		send(ChannelEmail, func() error {
			return d.client.PostJSON(ctx, d.proxyURL+"/api/notify/email", emailPayload{
				To:      settings.EmailAddress,
				Subject: fmt.Sprintf("[News Watch] %s: %s", n.WatcherName, n.ArticleTitle),
				Body:    messageText(n),
			})
		})
	}

	if alert.Channels.Slack && settings.SlackWebhook != "" {
		send(ChannelSlack, func() error {
			return d.client.PostJSON(ctx, settings.SlackWebhook, slackPayload{Text: messageText(n)})
		})
	}

	return outcome, errors.Join(errs...)
}

func messageText(n watch.Notification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n%s", n.WatcherName, n.ArticleTitle)
	if n.ArticleSource != "" {
		fmt.Fprintf(&b, " (%s)", n.ArticleSource)
	}
	if n.ArticleURL != "" {
		fmt.Fprintf(&b, "\n%s", n.ArticleURL)
	}
	return b.String()
}

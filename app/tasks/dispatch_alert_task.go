package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/news-watch/app/notify"
)

type AlertDispatcher interface {
	Dispatch(ctx context.Context, alert notify.Alert) (notify.Outcome, error)
}

// DispatchAlertTask delivers one notification over its watcher's channels.
type DispatchAlertTask struct {
	Task
	Alert      notify.Alert
	dispatcher AlertDispatcher
}

func NewDispatchAlertTask(dispatcher AlertDispatcher, alert notify.Alert) *DispatchAlertTask {
	return &DispatchAlertTask{
		Task:       NewTask(TaskTypeDispatchAlert, alert.Notification.WatcherID),
		Alert:      alert,
		dispatcher: dispatcher,
	}
}

func (t *DispatchAlertTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	outcome, err := t.dispatcher.Dispatch(ctx, t.Alert)
	if err != nil {
		// A retry only repeats the channels that failed.
		for _, channel := range outcome.Delivered {
			switch channel {
			case notify.ChannelPush:
				t.Alert.Channels.Push = false
			case notify.ChannelEmail:
				t.Alert.Channels.Email = false
			case notify.ChannelSlack:
				t.Alert.Channels.Slack = false
			}
		}
		return fmt.Errorf("failed to dispatch alert: %w", err)
	}

	if outcome.Suppressed != "" {
		slog.Info("Alert suppressed", "watcher", t.WatcherID, "article", t.Alert.Notification.ArticleID, "reason", outcome.Suppressed)
		return nil
	}

	slog.Info("Alert dispatched", "watcher", t.WatcherID, "article", t.Alert.Notification.ArticleID, "channels", outcome.Delivered)
	return nil
}

package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go"

	"github.com/lysyi3m/news-watch/app/watch"
)

// PushMessage is the JSON body published for a push alert.
type PushMessage struct {
	Title        string             `json:"title"`
	Body         string             `json:"body"`
	URL          string             `json:"url,omitempty"`
	Notification watch.Notification `json:"notification"`
}

// NATSPublisher publishes push alerts to <prefix>.<watcherId>.
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
}

func NewNATSPublisher(url, prefix string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("news-watch"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			slog.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSPublisher{
		conn:   conn,
		prefix: strings.TrimSuffix(prefix, "."),
	}, nil
}

func (p *NATSPublisher) Subject(watcherID string) string {
	return p.prefix + "." + watcherID
}

func (p *NATSPublisher) Publish(msg PushMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode push message: %w", err)
	}

	if err := p.conn.Publish(p.Subject(msg.Notification.WatcherID), data); err != nil {
		return fmt.Errorf("failed to publish push message: %w", err)
	}
	return nil
}

func (p *NATSPublisher) Close() {
	if p.conn != nil {
		p.conn.Drain()
	}
}

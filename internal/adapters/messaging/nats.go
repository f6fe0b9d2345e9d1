// Package messaging publishes created notifications to NATS so connected
// services can push them to users.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/pkg/logger"
)

// DefaultSubject is the subject prefix notifications are published under;
// the recipient id is appended.
const DefaultSubject = "notifications"

// Config holds NATS connection settings.
type Config struct {
	URL           string        // nats://localhost:4222
	Name          string        // client name
	Subject       string        // subject prefix
	ReconnectWait time.Duration // time between reconnect attempts
	MaxReconnects int           // -1 for infinite
}

// DefaultConfig returns connection defaults for url.
func DefaultConfig(url string) Config {
	return Config{
		URL:           url,
		Name:          "skillmatch",
		Subject:       DefaultSubject,
		ReconnectWait: 2 * time.Second,
		MaxReconnects: -1,
	}
}

// Publisher publishes notifications.
type Publisher interface {
	PublishNotification(ctx context.Context, n model.Notification) error
}

// Conn is the part of a NATS connection the publisher uses.
type Conn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// NATSPublisher publishes notifications as JSON to <subject>.<recipient>.
type NATSPublisher struct {
	conn    Conn
	subject string
}

// Connect dials NATS with cfg.
func Connect(cfg Config) (*NATSPublisher, error) {
	log := logger.Get().Named("nats")
	ctx := context.Background()

	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn(ctx, "disconnected", logger.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info(ctx, "reconnected", logger.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Info(ctx, "connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	log.Info(ctx, "connected", logger.String("url", nc.ConnectedUrl()))
	return NewPublisher(nc, cfg.Subject), nil
}

// NewPublisher wraps an open connection.
func NewPublisher(conn Conn, subject string) *NATSPublisher {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSPublisher{conn: conn, subject: subject}
}

// Subject returns the subject notifications for recipient are published on.
func (p *NATSPublisher) Subject(recipient string) string {
	return p.subject + "." + recipient
}

// PublishNotification implements Publisher.
func (p *NATSPublisher) PublishNotification(ctx context.Context, n model.Notification) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := p.conn.Publish(p.Subject(n.Recipient), data); err != nil {
		return fmt.Errorf("nats publish %s: %w", p.Subject(n.Recipient), err)
	}
	return nil
}

// Close drains the connection.
func (p *NATSPublisher) Close() error {
	if err := p.conn.Drain(); err != nil {
		return fmt.Errorf("nats drain: %w", err)
	}
	return nil
}

// Package notification builds notifications from templates and hands them to
// a store.
package notification

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/okian/skillmatch/internal/domain/model"
)

// Sentinel errors.
var (
	// ErrSideEffect marks a failed best-effort notification. Callers log it
	// and carry on.
	ErrSideEffect = errors.New("non-fatal side effect failure")
	// ErrUnknownTemplate is returned for template names not in the catalogue.
	ErrUnknownTemplate = errors.New("unknown notification template")
	// ErrTooLong is returned when a rendered field exceeds its limit.
	ErrTooLong = errors.New("notification field too long")
)

// Sink persists notifications.
type Sink interface {
	CreateNotification(ctx context.Context, n model.Notification) error
}

// Options are the optional fields of a templated notification.
type Options struct {
	Sender    string
	Data      model.NotificationData
	ActionURL string
	Priority  string
}

// Option applies a configuration option to the Creator.
type Option func(*Creator)

// WithIDGenerator overrides notification id generation.
func WithIDGenerator(fn func() string) Option {
	return func(c *Creator) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// WithClock overrides the creation clock.
func WithClock(now func() time.Time) Option {
	return func(c *Creator) {
		if now != nil {
			c.now = now
		}
	}
}

// Creator renders templates into notifications and stores them.
type Creator struct {
	sink  Sink
	newID func() string
	now   func() time.Time
}

// NewCreator creates a Creator writing to sink.
func NewCreator(sink Sink, opts ...Option) *Creator {
	c := &Creator{
		sink:  sink,
		newID: uuid.NewString,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Build renders the named template for recipient without storing it.
func (c *Creator) Build(template, recipient string, vars map[string]string, opts Options) (model.Notification, error) {
	tpl, ok := Lookup(template)
	if !ok {
		return model.Notification{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, template)
	}

	title := Render(tpl.Title, vars)
	message := Render(tpl.Message, vars)
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return model.Notification{}, fmt.Errorf("%w: title", ErrTooLong)
	}
	if utf8.RuneCountInString(message) > MaxMessageLength {
		return model.Notification{}, fmt.Errorf("%w: message", ErrTooLong)
	}

	priority := opts.Priority
	if priority == "" {
		priority = model.PriorityNormal
	}

	created := c.now().UTC()
	n := model.Notification{
		ID:        c.newID(),
		Recipient: recipient,
		Sender:    opts.Sender,
		Type:      template,
		Title:     title,
		Message:   message,
		Data:      opts.Data,
		Priority:  priority,
		ActionURL: opts.ActionURL,
		CreatedAt: created,
	}
	if ttl, ok := ExpiryFor(template); ok {
		exp := created.Add(ttl)
		n.ExpiresAt = &exp
	}
	return n, nil
}

// CreateFromTemplate renders and stores a notification. Every error wraps
// ErrSideEffect.
func (c *Creator) CreateFromTemplate(
	ctx context.Context,
	template, recipient string,
	vars map[string]string,
	opts Options,
) (model.Notification, error) {
	n, err := c.Build(template, recipient, vars, opts)
	if err != nil {
		return model.Notification{}, fmt.Errorf("%w: build: %w", ErrSideEffect, err)
	}
	if err := c.sink.CreateNotification(ctx, n); err != nil {
		return model.Notification{}, fmt.Errorf("%w: store: %w", ErrSideEffect, err)
	}
	return n, nil
}

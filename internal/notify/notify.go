// Package notify delivers match notifications to item reporters.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/najdeno/internal/matching"
)

// ErrDisabled is returned by the notifier used when notifications are turned
// off. Sides stay failed so an operator can retry them later.
var ErrDisabled = errors.New("notifications are disabled")

// Options selects and configures a notifier.
type Options struct {
	Enabled    bool
	WebhookURL string

	// TopicSecret keys the per-recipient webhook topics.
	TopicSecret string
	Timeout     time.Duration
	Logger      *slog.Logger
}

// New returns the notifier described by opts: a webhook notifier when a URL
// is configured, a log notifier otherwise, or a disabled notifier.
func New(opts Options) matching.Notifier {
	if !opts.Enabled {
		return Disabled{}
	}
	if strings.TrimSpace(opts.WebhookURL) == "" {
		return NewLog(opts.Logger)
	}
	return NewWebhook(opts.WebhookURL, opts.TopicSecret, opts.Timeout)
}

// Disabled refuses every send.
type Disabled struct{}

func (Disabled) Send(context.Context, string, matching.Payload) (string, error) {
	return "", ErrDisabled
}

// Log writes notifications to the logger instead of delivering them.
type Log struct {
	logger *slog.Logger
}

// NewLog returns a Log notifier. A nil logger means slog.Default().
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

func (l *Log) Send(ctx context.Context, target string, p matching.Payload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := uuid.NewString()
	l.logger.InfoContext(ctx, "match notification",
		"message_id", id,
		"target", target,
		"match_id", p.MatchID,
		"side", p.Side,
		"subject", p.Subject,
		"link", p.Link,
	)
	return id, nil
}

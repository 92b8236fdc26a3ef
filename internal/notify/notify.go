// Package notify provides notification delivery for triggered alerts.
package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"groww-sentinel/internal/config"
)

// Notifier defines the interface for sending notifications.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// Channel defines the interface for a single delivery channel.
type Channel interface {
	Name() string
	Send(ctx context.Context, n Notification) error
	IsEnabled() bool
}

// Notification represents a notification message. BodyHTML is optional;
// channels that cannot render HTML use Body.
type Notification struct {
	Category  string
	Subject   string
	Body      string
	BodyHTML  string
	Data      map[string]interface{}
	Timestamp time.Time
}

// MultiNotifier fans a notification out to all enabled channels.
type MultiNotifier struct {
	channels []Channel
	mu       sync.RWMutex
}

// NewMultiNotifier creates a MultiNotifier from configuration. Returns
// nil when notifications are disabled or no channel is configured, so
// callers can treat an unconfigured notifier uniformly.
func NewMultiNotifier(cfg *config.NotificationConfig) *MultiNotifier {
	if cfg == nil || !cfg.Enabled {
		return nil
	}

	mn := &MultiNotifier{}

	if cfg.Webhook.Enabled {
		mn.channels = append(mn.channels, NewWebhookChannel(cfg.Webhook))
	}
	if cfg.Telegram.Enabled {
		mn.channels = append(mn.channels, NewTelegramChannel(cfg.Telegram))
	}
	if cfg.Email.Enabled {
		mn.channels = append(mn.channels, NewEmailChannel(cfg.Email))
	}

	if len(mn.channels) == 0 {
		return nil
	}
	return mn
}

// AddChannel adds a delivery channel.
func (mn *MultiNotifier) AddChannel(ch Channel) {
	mn.mu.Lock()
	defer mn.mu.Unlock()
	mn.channels = append(mn.channels, ch)
}

// Send sends a notification to all enabled channels. Failures are
// collected; a single healthy channel makes the send succeed partially
// but the combined error still reports the failed ones.
func (mn *MultiNotifier) Send(ctx context.Context, n Notification) error {
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}

	mn.mu.RLock()
	channels := mn.channels
	mn.mu.RUnlock()

	var errs []string
	for _, ch := range channels {
		if ch.IsEnabled() {
			if err := ch.Send(ctx, n); err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", ch.Name(), err))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

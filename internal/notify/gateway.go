package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"groww-sentinel/internal/models"
)

// RateLimitWindow is the minimum gap between sends for one category.
const RateLimitWindow = 60 * time.Second

// Outcome is the result of dispatching a trigger event.
type Outcome string

const (
	OutcomeSent       Outcome = "sent"
	OutcomeSuppressed Outcome = "suppressed"
	OutcomeFailed     Outcome = "failed"
)

// TriggerEvent describes an alert that has just triggered.
type TriggerEvent struct {
	Alert   models.Alert
	Price   models.PricePoint
	Message string
}

// Category returns the rate-limit key for the event.
func (e TriggerEvent) Category() string {
	return string(e.Alert.Kind)
}

// Gateway formats and dispatches trigger events to a Notifier, subject
// to a per-category rate limit. This is pure throttling, not content
// deduplication. A nil Notifier makes every dispatch log-only and
// suppressed, never an error.
type Gateway struct {
	notifier Notifier
	logger   zerolog.Logger

	mu       sync.Mutex
	lastSent map[string]time.Time
	window   time.Duration
	now      func() time.Time
}

// NewGateway creates a notification gateway. notifier may be nil.
func NewGateway(notifier Notifier, logger zerolog.Logger) *Gateway {
	return &Gateway{
		notifier: notifier,
		logger:   logger,
		lastSent: make(map[string]time.Time),
		window:   RateLimitWindow,
		now:      time.Now,
	}
}

// Notify dispatches a trigger event.
func (g *Gateway) Notify(ctx context.Context, event TriggerEvent) Outcome {
	if g.notifier == nil {
		g.logger.Info().
			Str("symbol", event.Alert.Symbol).
			Str("message", event.Message).
			Msg("Notifier not configured, alert logged only")
		return OutcomeSuppressed
	}

	category := event.Category()
	if g.rateLimited(category) {
		g.logger.Info().
			Str("category", category).
			Str("symbol", event.Alert.Symbol).
			Msg("Notification rate limited")
		return OutcomeSuppressed
	}

	n := buildNotification(event)
	if err := g.notifier.Send(ctx, n); err != nil {
		g.logger.Error().Err(err).
			Str("symbol", event.Alert.Symbol).
			Msg("Notification failed")
		return OutcomeFailed
	}

	g.markSent(category)
	return OutcomeSent
}

func (g *Gateway) rateLimited(category string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	last, ok := g.lastSent[category]
	if !ok {
		return false
	}
	return g.now().Sub(last) < g.window
}

func (g *Gateway) markSent(category string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastSent[category] = g.now()
}

func buildNotification(event TriggerEvent) Notification {
	a := event.Alert
	subject := fmt.Sprintf("Stock Alert: %s", a.Symbol)

	body := event.Message
	body += fmt.Sprintf("\n\nSymbol: %s\nCondition: %s %.2f\nCurrent Price: ₹%.2f\nTriggered at: %s",
		a.Symbol, a.Kind, a.Threshold, event.Price.LTP, event.Price.Timestamp.Format("15:04:05"))
	if a.Note != "" {
		body += "\nNote: " + a.Note
	}

	bodyHTML := fmt.Sprintf(`<html><body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2>Stock Alert Triggered</h2>
<p>%s</p>
<table border="0" cellpadding="4">
<tr><td><b>Symbol</b></td><td>%s</td></tr>
<tr><td><b>Condition</b></td><td>%s %.2f</td></tr>
<tr><td><b>Current Price</b></td><td>₹%.2f</td></tr>
<tr><td><b>Triggered at</b></td><td>%s</td></tr>
</table>
</body></html>`,
		event.Message, a.Symbol, a.Kind, a.Threshold, event.Price.LTP,
		event.Price.Timestamp.Format("2006-01-02 15:04:05"))

	return Notification{
		Category: event.Category(),
		Subject:  subject,
		Body:     body,
		BodyHTML: bodyHTML,
		Data: map[string]interface{}{
			"alert_id":      a.ID,
			"symbol":        a.Symbol,
			"kind":          string(a.Kind),
			"threshold":     a.Threshold,
			"current_price": event.Price.LTP,
		},
	}
}

package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"groww-sentinel/internal/models"
)

type fakeNotifier struct {
	sent []Notification
	err  error
}

func (f *fakeNotifier) Send(ctx context.Context, n Notification) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, n)
	return nil
}

func newTestGateway(n Notifier) (*Gateway, *time.Time) {
	g := NewGateway(n, zerolog.Nop())
	clock := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return clock }
	return g, &clock
}

func event(kind models.AlertKind, symbol string) TriggerEvent {
	return TriggerEvent{
		Alert: models.Alert{
			ID:        "alert-1",
			Symbol:    symbol,
			Kind:      kind,
			Threshold: 100,
			Status:    models.AlertTriggered,
		},
		Price:   models.PricePoint{Symbol: symbol, LTP: 105, Timestamp: time.Now()},
		Message: symbol + " triggered",
	}
}

func TestNotifySendsAndRateLimits(t *testing.T) {
	f := &fakeNotifier{}
	g, clock := newTestGateway(f)
	ctx := context.Background()

	if got := g.Notify(ctx, event(models.AlertPriceAbove, "RELIANCE")); got != OutcomeSent {
		t.Fatalf("first notify = %s, want sent", got)
	}

	// Same category inside the window is suppressed, even for a
	// different symbol.
	*clock = clock.Add(30 * time.Second)
	if got := g.Notify(ctx, event(models.AlertPriceAbove, "TCS")); got != OutcomeSuppressed {
		t.Errorf("second notify = %s, want suppressed", got)
	}

	// A different category is not throttled.
	if got := g.Notify(ctx, event(models.AlertVolumeAbove, "TCS")); got != OutcomeSent {
		t.Errorf("other category = %s, want sent", got)
	}

	// After the window the category is open again.
	*clock = clock.Add(31 * time.Second)
	if got := g.Notify(ctx, event(models.AlertPriceAbove, "INFY")); got != OutcomeSent {
		t.Errorf("notify after window = %s, want sent", got)
	}

	if len(f.sent) != 3 {
		t.Errorf("notifier received %d notifications, want 3", len(f.sent))
	}
}

func TestNotifyNilNotifierIsLogOnly(t *testing.T) {
	g, _ := newTestGateway(nil)

	if got := g.Notify(context.Background(), event(models.AlertPriceBelow, "RELIANCE")); got != OutcomeSuppressed {
		t.Errorf("nil notifier outcome = %s, want suppressed", got)
	}
}

func TestNotifyFailureDoesNotConsumeWindow(t *testing.T) {
	f := &fakeNotifier{err: errors.New("smtp down")}
	g, _ := newTestGateway(f)
	ctx := context.Background()

	if got := g.Notify(ctx, event(models.AlertPriceAbove, "RELIANCE")); got != OutcomeFailed {
		t.Fatalf("failed send outcome = %s, want failed", got)
	}

	// The failed send must not start the rate-limit window: once the
	// notifier recovers, the next event goes through immediately.
	f.err = nil
	if got := g.Notify(ctx, event(models.AlertPriceAbove, "RELIANCE")); got != OutcomeSent {
		t.Errorf("retry after failure = %s, want sent", got)
	}
}

func TestBuildNotificationContent(t *testing.T) {
	e := event(models.AlertPriceAbove, "RELIANCE")
	e.Alert.Note = "breakout watch"

	n := buildNotification(e)
	if n.Subject != "Stock Alert: RELIANCE" {
		t.Errorf("subject = %q", n.Subject)
	}
	if n.Body == "" || n.BodyHTML == "" {
		t.Error("expected both text and HTML bodies")
	}
	if n.Category != string(models.AlertPriceAbove) {
		t.Errorf("category = %q", n.Category)
	}
}

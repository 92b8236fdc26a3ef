package broker

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"groww-sentinel/internal/models"
)

func testOrder() *models.OrderRequest {
	return &models.OrderRequest{
		Symbol:   "RELIANCE",
		Quantity: 10,
		Side:     models.OrderBuy,
		Type:     models.OrderMarket,
	}
}

func newTestDeduplicator(start time.Time) (*OrderDeduplicator, *time.Time) {
	clock := start
	d := NewOrderDeduplicator()
	d.now = func() time.Time { return clock }
	return d, &clock
}

func TestDuplicateWithinWindow(t *testing.T) {
	d, clock := newTestDeduplicator(time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC))
	req := testOrder()

	if d.IsDuplicate(req) {
		t.Fatal("fresh order reported as duplicate")
	}
	d.MarkSubmitted(req)

	*clock = clock.Add(30 * time.Second)
	if !d.IsDuplicate(req) {
		t.Error("identical order within window not reported as duplicate")
	}

	*clock = clock.Add(31 * time.Second)
	if d.IsDuplicate(req) {
		t.Error("order after window expiry still reported as duplicate")
	}
}

func TestDifferentOrdersAreIndependent(t *testing.T) {
	d, _ := newTestDeduplicator(time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC))

	d.MarkSubmitted(testOrder())

	other := testOrder()
	other.Quantity = 11
	if d.IsDuplicate(other) {
		t.Error("order with different quantity reported as duplicate")
	}

	sell := testOrder()
	sell.Side = models.OrderSell
	if d.IsDuplicate(sell) {
		t.Error("order with different side reported as duplicate")
	}
}

func TestExpiredEntriesArePurged(t *testing.T) {
	d, clock := newTestDeduplicator(time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC))

	d.MarkSubmitted(testOrder())
	*clock = clock.Add(2 * time.Minute)

	// Any check past the window drops stale entries.
	probe := testOrder()
	probe.Symbol = "TCS"
	d.IsDuplicate(probe)

	d.mu.Lock()
	remaining := len(d.entries)
	d.mu.Unlock()
	if remaining != 0 {
		t.Errorf("expected stale entries to be purged, %d remain", remaining)
	}
}

// Property: an order is a duplicate of itself exactly while the window
// is open, for any elapsed time.
func TestPropertyDedupWindow(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("duplicate iff within window", prop.ForAll(
		func(elapsedSec int64) bool {
			d, clock := newTestDeduplicator(time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC))
			req := testOrder()
			d.MarkSubmitted(req)

			*clock = clock.Add(time.Duration(elapsedSec) * time.Second)
			want := time.Duration(elapsedSec)*time.Second <= DedupWindow
			if got := d.IsDuplicate(req); got != want {
				t.Logf("elapsed=%ds duplicate=%v want=%v", elapsedSec, got, want)
				return false
			}
			return true
		},
		gen.Int64Range(0, 300),
	))

	properties.TestingRun(t)
}

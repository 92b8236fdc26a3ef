package broker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"groww-sentinel/internal/models"
)

// DedupWindow is how long an identical order submission is rejected as
// a duplicate.
const DedupWindow = 60 * time.Second

// OrderDeduplicator rejects identical order submissions within a short
// window. Identity is a content hash over the order fields; expired
// entries are purged lazily on each check.
type OrderDeduplicator struct {
	mu      sync.Mutex
	window  time.Duration
	entries map[string]time.Time
	now     func() time.Time
}

// NewOrderDeduplicator creates a deduplicator with the default window.
func NewOrderDeduplicator() *OrderDeduplicator {
	return &OrderDeduplicator{
		window:  DedupWindow,
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// orderHash computes a stable identity for an order request.
func orderHash(req *models.OrderRequest) string {
	s := fmt.Sprintf("%s|%d|%s|%s|%.2f", req.Symbol, req.Quantity, req.Side, req.Type, req.Price)
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// IsDuplicate reports whether an identical request was marked as
// submitted within the window.
func (d *OrderDeduplicator) IsDuplicate(req *models.OrderRequest) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	d.purge(now)

	_, ok := d.entries[orderHash(req)]
	return ok
}

// MarkSubmitted records a request as submitted at the current time.
func (d *OrderDeduplicator) MarkSubmitted(req *models.OrderRequest) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[orderHash(req)] = d.now()
}

// purge drops entries older than the window. Caller holds the lock.
func (d *OrderDeduplicator) purge(now time.Time) {
	for h, t := range d.entries {
		if now.Sub(t) > d.window {
			delete(d.entries, h)
		}
	}
}

package broker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"groww-sentinel/internal/errors"
	"groww-sentinel/internal/models"
)

// CircuitState represents the state of the price-feed circuit breaker.
type CircuitState string

const (
	CircuitClosed   CircuitState = "CLOSED"
	CircuitOpen     CircuitState = "OPEN"
	CircuitHalfOpen CircuitState = "HALF_OPEN"
)

const (
	// failureThreshold opens the circuit after this many consecutive
	// transient failures.
	failureThreshold = 5
	// cooldown is how long the circuit stays open before a probe call
	// is allowed through.
	cooldown = 30 * time.Second
)

// ErrCircuitOpen is returned while the price feed circuit is open.
var ErrCircuitOpen = errors.NewBrokerError(errors.BrokerTransient, "circuit", "",
	"price feed circuit open, backing off", nil)

// CircuitBroker wraps a Broker and trips a circuit breaker on repeated
// transient price-feed failures, so a broken upstream is not hammered
// on every sweep. Order placement and search pass through untouched.
type CircuitBroker struct {
	inner  Broker
	logger zerolog.Logger

	mu       sync.Mutex
	state    CircuitState
	failures int
	openedAt time.Time
	now      func() time.Time
}

// NewCircuitBroker wraps a broker with the price-feed circuit breaker.
func NewCircuitBroker(inner Broker, logger zerolog.Logger) *CircuitBroker {
	return &CircuitBroker{
		inner:  inner,
		logger: logger,
		state:  CircuitClosed,
		now:    time.Now,
	}
}

// State returns the current circuit state.
func (c *CircuitBroker) State() CircuitState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// GetPrice delegates to the wrapped broker unless the circuit is open.
func (c *CircuitBroker) GetPrice(ctx context.Context, symbol string) (*models.PricePoint, error) {
	if !c.allow() {
		return nil, ErrCircuitOpen
	}

	p, err := c.inner.GetPrice(ctx, symbol)
	c.record(err)
	return p, err
}

// SearchSymbol passes through to the wrapped broker.
func (c *CircuitBroker) SearchSymbol(ctx context.Context, query string) ([]models.CandidateSymbol, error) {
	return c.inner.SearchSymbol(ctx, query)
}

// PlaceOrder passes through to the wrapped broker.
func (c *CircuitBroker) PlaceOrder(ctx context.Context, req *models.OrderRequest) (*OrderResult, error) {
	return c.inner.PlaceOrder(ctx, req)
}

// GetHoldings passes through to the wrapped broker.
func (c *CircuitBroker) GetHoldings(ctx context.Context) ([]models.Holding, error) {
	return c.inner.GetHoldings(ctx)
}

// allow reports whether a price call may proceed, moving an expired
// open circuit to half-open.
func (c *CircuitBroker) allow() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != CircuitOpen {
		return true
	}
	if c.now().Sub(c.openedAt) >= cooldown {
		c.state = CircuitHalfOpen
		c.logger.Info().Msg("Price feed circuit half-open, probing")
		return true
	}
	return false
}

// record updates the circuit from a call outcome. Only transient
// failures count against the breaker; a not-found symbol is the
// caller's problem, not the feed's.
func (c *CircuitBroker) record(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err == nil || !errors.IsTransient(err) {
		if c.state != CircuitClosed {
			c.logger.Info().Msg("Price feed circuit closed")
		}
		c.state = CircuitClosed
		c.failures = 0
		return
	}

	c.failures++
	if c.state == CircuitHalfOpen || c.failures >= failureThreshold {
		c.state = CircuitOpen
		c.openedAt = c.now()
		c.logger.Warn().
			Int("failures", c.failures).
			Dur("cooldown", cooldown).
			Msg("Price feed circuit opened")
	}
}

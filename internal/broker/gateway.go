package broker

import (
	"context"

	"github.com/rs/zerolog"

	"groww-sentinel/internal/errors"
	"groww-sentinel/internal/logging"
	"groww-sentinel/internal/models"
)

// OrderGateway wraps a Broker with order deduplication. The dedup cache
// is consulted immediately before and updated immediately after each
// submission.
type OrderGateway struct {
	broker Broker
	dedup  *OrderDeduplicator
	logger zerolog.Logger
}

// NewOrderGateway creates a gateway around the given broker.
func NewOrderGateway(b Broker, logger zerolog.Logger) *OrderGateway {
	return &OrderGateway{
		broker: b,
		dedup:  NewOrderDeduplicator(),
		logger: logger,
	}
}

// PlaceOrder submits an order unless an identical one was submitted
// within the deduplication window.
func (g *OrderGateway) PlaceOrder(ctx context.Context, req *models.OrderRequest) (*OrderResult, error) {
	if g.dedup.IsDuplicate(req) {
		g.logger.Warn().
			Str("symbol", req.Symbol).
			Int("quantity", req.Quantity).
			Str("side", string(req.Side)).
			Msg("Duplicate order prevented")
		return nil, errors.ErrDuplicateOrder
	}

	result, err := g.broker.PlaceOrder(ctx, req)
	if err != nil {
		return nil, err
	}

	g.dedup.MarkSubmitted(req)
	logging.LogOrder(g.logger, result.OrderID, req.Symbol, string(req.Side), result.Status)
	return result, nil
}

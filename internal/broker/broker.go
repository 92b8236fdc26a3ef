// Package broker provides broker integration interfaces and implementations.
package broker

import (
	"context"

	"groww-sentinel/internal/models"
)

// Broker defines the interface for broker operations. Calls are bounded
// by the deadline on the supplied context.
type Broker interface {
	// GetPrice returns the latest price observation for a symbol.
	GetPrice(ctx context.Context, symbol string) (*models.PricePoint, error)

	// SearchSymbol searches instruments by name or symbol, ordered by
	// relevance. An empty result is not an error.
	SearchSymbol(ctx context.Context, query string) ([]models.CandidateSymbol, error)

	// PlaceOrder submits an order.
	PlaceOrder(ctx context.Context, req *models.OrderRequest) (*OrderResult, error)

	// GetHoldings returns the current account holdings.
	GetHoldings(ctx context.Context) ([]models.Holding, error)
}

// OrderResult represents the result of an order placement.
type OrderResult struct {
	OrderID string
	Status  string
	Message string
}

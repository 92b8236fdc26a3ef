// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"groww-sentinel/internal/models"
)

// AlertStore defines the interface for durable alert persistence.
// The collection is written as a complete snapshot on every save;
// load with no prior data returns an empty set, not an error.
type AlertStore interface {
	Load(ctx context.Context) ([]models.Alert, error)
	SaveAll(ctx context.Context, alerts []models.Alert) error
	Close() error
}

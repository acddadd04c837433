package tenants

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no tenant has the requested client id.
// Any other error from a Store is an infrastructure failure.
var ErrNotFound = errors.New("tenant not found")

// Store looks up tenant records.
type Store interface {
	// FindByClientID returns the tenant whose client id matches exactly.
	FindByClientID(ctx context.Context, clientID string) (Tenant, error)
}

// Writer is implemented by backends that can be seeded.
type Writer interface {
	// Upsert inserts or replaces the tenant keyed by its client id.
	Upsert(ctx context.Context, t Tenant) error
}

// Package remote defines the port for the hosted item store.
//
// The store itself is an external collaborator; this package only ships
// adapters for it (REST, SQLite, in-memory). All adapters honor the same
// ordering contract: expiry date ascending, items without an expiry last.
package remote

import (
	"context"

	"spotcheck/internal/core"
)

// ItemStore is the outbound port for owner-scoped item persistence.
type ItemStore interface {
	// ListByOwner returns all items belonging to ownerID in expiry order.
	ListByOwner(ctx context.Context, ownerID string) ([]core.Item, error)

	// Create persists a new item and returns the stored copy with the
	// server-assigned ID and CreatedAt. The draft's ID is ignored.
	Create(ctx context.Context, draft core.Item) (core.Item, error)

	// Delete removes an item. Deleting an unknown id returns a StoreError
	// wrapping ErrNotFound.
	Delete(ctx context.Context, ownerID, itemID string) error

	// UpdateStatus changes the renewal status of an existing item.
	UpdateStatus(ctx context.Context, ownerID, itemID, status string) error

	// Close releases any resources held by the store.
	Close() error
}

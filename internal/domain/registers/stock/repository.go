package stock

import (
	"context"
	"time"

	"hwshop/internal/core/id"
	"hwshop/internal/core/types"
	"hwshop/internal/domain"
)

// Repository defines persistence for movements and inventory snapshots.
// All methods run on the transaction carried by ctx when there is one.
type Repository interface {
	// EnsureInventory creates a zero-quantity row if absent.
	// Returns NOT_FOUND when the product does not exist.
	EnsureInventory(ctx context.Context, productID id.ID) error

	// LockInventory returns the rows of productIDs with row locks held until
	// the transaction ends. Locks are taken in ascending id order.
	LockInventory(ctx context.Context, productIDs []id.ID) (map[id.ID]Inventory, error)

	InsertMovement(ctx context.Context, m *Movement) error

	// ApplyInventoryDelta adds delta to the product's quantity, creating the row if absent.
	ApplyInventoryDelta(ctx context.Context, productID id.ID, delta types.Quantity, actorID string, at time.Time) error

	// DeleteMovementsByItem removes the movements of a document line and returns them.
	DeleteMovementsByItem(ctx context.Context, ref ItemRef) ([]Movement, error)

	GetInventory(ctx context.Context, productID id.ID) (InventoryView, error)
	ListInventory(ctx context.Context, filter InventoryFilter) (domain.ListResult[InventoryView], error)
	ListMovements(ctx context.Context, filter MovementFilter) (domain.ListResult[Movement], error)

	// SumMovements returns the ledger total of one product.
	SumMovements(ctx context.Context, productID id.ID) (types.Quantity, error)

	// RebuildInventory resets every inventory row to its movement sum and
	// returns how many rows changed.
	RebuildInventory(ctx context.Context, actorID string, at time.Time) (int64, error)
}

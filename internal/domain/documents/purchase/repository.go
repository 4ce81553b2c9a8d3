package purchase

import (
	"context"
	"time"

	"hwshop/internal/core/id"
	"hwshop/internal/domain"
	"hwshop/internal/domain/documents"
)

// Repository defines persistence for purchases.
type Repository interface {
	Create(ctx context.Context, p *Purchase) error
	InsertItems(ctx context.Context, items []PurchaseItem) error

	GetByID(ctx context.Context, purchaseID id.ID) (*Purchase, error)

	// GetForUpdate locks the purchase header until the transaction ends.
	GetForUpdate(ctx context.Context, purchaseID id.ID) (*Purchase, error)

	GetItems(ctx context.Context, purchaseID id.ID) ([]PurchaseItem, error)

	// Delete removes the header and its items.
	Delete(ctx context.Context, purchaseID id.ID) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Purchase], error)

	SetPaymentStatus(ctx context.Context, purchaseID id.ID, status documents.PaymentStatus, at time.Time) error
}

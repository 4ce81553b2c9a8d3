package sale

import (
	"context"
	"time"

	"hwshop/internal/core/id"
	"hwshop/internal/core/types"
	"hwshop/internal/domain"
	"hwshop/internal/domain/documents"
)

// Repository defines persistence for sales.
type Repository interface {
	Create(ctx context.Context, s *Sale) error
	InsertItems(ctx context.Context, items []SaleItem) error

	GetByID(ctx context.Context, saleID id.ID) (*Sale, error)

	// GetForUpdate locks the sale header until the transaction ends.
	GetForUpdate(ctx context.Context, saleID id.ID) (*Sale, error)

	GetItems(ctx context.Context, saleID id.ID) ([]SaleItem, error)

	// Delete removes the header and its items.
	Delete(ctx context.Context, saleID id.ID) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Sale], error)

	// UpdatePaymentState stores the derived amount_paid and payment_status.
	UpdatePaymentState(ctx context.Context, saleID id.ID, amountPaid types.Money, status documents.PaymentStatus, at time.Time) error

	// ListOpenByCustomer returns the customer's pending and partial sales, oldest first.
	ListOpenByCustomer(ctx context.Context, customerID id.ID) ([]*Sale, error)

	// ListCreditSaleIDs returns every sale with a customer and a non-cash method.
	ListCreditSaleIDs(ctx context.Context) ([]id.ID, error)
}

package customer

import (
	"context"

	"hwshop/internal/core/id"
	"hwshop/internal/core/types"
	"hwshop/internal/domain"
)

// Repository defines the interface for Customer persistence.
// Update never writes current_balance; SetBalance does.
type Repository interface {
	domain.CatalogRepository[*Customer]

	SetBalance(ctx context.Context, customerID id.ID, balance types.Money) error

	// ListIDs returns every customer id, used by balance recomputation.
	ListIDs(ctx context.Context) ([]id.ID, error)
}

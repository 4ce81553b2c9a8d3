package product

import (
	"context"

	"hwshop/internal/core/id"
	"hwshop/internal/domain"
)

// Repository defines the interface for Product persistence.
type Repository interface {
	domain.CatalogRepository[*Product]

	// GetBySKU returns NOT_FOUND when no product carries sku.
	GetBySKU(ctx context.Context, sku string) (*Product, error)

	// IsReferenced reports whether movements or document lines reference the product.
	IsReferenced(ctx context.Context, productID id.ID) (bool, error)
}

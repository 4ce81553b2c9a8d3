package product

import (
	"context"

	"hwshop/internal/core/apperror"
	"hwshop/internal/core/id"
	"hwshop/internal/core/security"
	"hwshop/internal/core/tx"
	"hwshop/internal/domain"
)

// InventoryInitializer creates the zero-quantity inventory row of a new product.
type InventoryInitializer interface {
	InitInventory(ctx context.Context, productID id.ID) error
}

// Service provides business logic for the Product catalog.
type Service struct {
	*domain.CatalogService[*Product]
	repo Repository
}

// NewService creates a new Product service.
func NewService(repo Repository, inventory InventoryInitializer, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Product]{
		Repo:      repo,
		TxManager: txManager,
		Capabilities: domain.CatalogCapabilities{
			Read:   security.CapProductRead,
			Write:  security.CapProductWrite,
			Delete: security.CapProductDelete,
		},
		EntityName: "product",
	})

	svc := &Service{CatalogService: base, repo: repo}

	base.Hooks().OnBeforeCreate(svc.checkSKUUnique)
	base.Hooks().OnBeforeUpdate(svc.checkSKUUnique)
	base.Hooks().OnCreateTx(func(ctx context.Context, p *Product) error {
		return inventory.InitInventory(ctx, p.ID)
	})
	base.Hooks().OnBeforeDelete(svc.checkUnreferenced)

	return svc
}

// checkSKUUnique rejects a SKU already held by another product.
func (s *Service) checkSKUUnique(ctx context.Context, p *Product) error {
	existing, err := s.repo.GetBySKU(ctx, p.SKU)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != p.ID {
		return apperror.NewDuplicate("product", "sku", p.SKU)
	}
	return nil
}

// checkUnreferenced keeps products with ledger history from being hard-deleted.
func (s *Service) checkUnreferenced(ctx context.Context, p *Product) error {
	referenced, err := s.repo.IsReferenced(ctx, p.ID)
	if err != nil {
		return err
	}
	if referenced {
		return apperror.NewReferenced("product", p.ID.String()).
			WithDetail("hint", "deactivate the product instead")
	}
	return nil
}

// GetBySKU looks a product up by SKU.
func (s *Service) GetBySKU(ctx context.Context, actor security.Actor, sku string) (*Product, error) {
	if err := actor.Require(security.CapProductRead); err != nil {
		return nil, err
	}
	return s.repo.GetBySKU(ctx, sku)
}

package customer

import (
	"hwshop/internal/core/security"
	"hwshop/internal/core/tx"
	"hwshop/internal/domain"
)

// Service provides business logic for the Customer catalog.
type Service struct {
	*domain.CatalogService[*Customer]
}

// NewService creates a new Customer service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		CatalogService: domain.NewCatalogService(domain.CatalogServiceConfig[*Customer]{
			Repo:      repo,
			TxManager: txManager,
			Capabilities: domain.CatalogCapabilities{
				Read:   security.CapCustomerRead,
				Write:  security.CapCustomerWrite,
				Delete: security.CapCustomerDelete,
			},
			EntityName: "customer",
		}),
	}
}

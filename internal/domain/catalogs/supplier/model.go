// Package supplier provides the Supplier catalog.
package supplier

import (
	"context"
	"strings"

	"hwshop/internal/core/apperror"
	"hwshop/internal/core/entity"
	"hwshop/internal/core/security"
	"hwshop/internal/core/tx"
	"hwshop/internal/domain"
)

// Supplier is a vendor goods are purchased from.
type Supplier struct {
	entity.Catalog

	Name          string `db:"name" json:"name"`
	ContactPerson string `db:"contact_person" json:"contactPerson,omitempty"`
	Phone         string `db:"phone" json:"phone,omitempty"`
	Email         string `db:"email" json:"email,omitempty"`
	Address       string `db:"address" json:"address,omitempty"`
}

// NewSupplier creates an active supplier with generated ID.
func NewSupplier(name string) *Supplier {
	return &Supplier{Catalog: entity.NewCatalog(), Name: name}
}

// Validate implements entity.Validatable.
func (s *Supplier) Validate(_ context.Context) error {
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if s.Email != "" && !strings.Contains(s.Email, "@") {
		return apperror.NewValidation("email is invalid").WithDetail("field", "email")
	}
	return nil
}

// Repository defines the interface for Supplier persistence.
type Repository interface {
	domain.CatalogRepository[*Supplier]
}

// Service provides business logic for the Supplier catalog.
type Service struct {
	*domain.CatalogService[*Supplier]
}

// NewService creates a new Supplier service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		CatalogService: domain.NewCatalogService(domain.CatalogServiceConfig[*Supplier]{
			Repo:      repo,
			TxManager: txManager,
			Capabilities: domain.CatalogCapabilities{
				Read:   security.CapSupplierRead,
				Write:  security.CapSupplierWrite,
				Delete: security.CapSupplierDelete,
			},
			EntityName: "supplier",
		}),
	}
}

package catalog_repo

import (
	"hwshop/internal/domain/catalogs/supplier"
	"hwshop/internal/infrastructure/storage/postgres"
)

// SupplierRepo implements supplier.Repository.
type SupplierRepo struct {
	*BaseCatalogRepo[*supplier.Supplier]
}

var _ supplier.Repository = (*SupplierRepo)(nil)

// NewSupplierRepo creates a new supplier repository.
func NewSupplierRepo(txManager *postgres.TxManager) *SupplierRepo {
	return &SupplierRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(txManager, BaseCatalogConfig[*supplier.Supplier]{
			TableName:  "suppliers",
			EntityName: "supplier",
			SelectCols: postgres.ExtractDBColumns[supplier.Supplier](),
			SearchCols: []string{"name", "contact_person", "phone", "email"},
			New:        func() *supplier.Supplier { return &supplier.Supplier{} },
		}),
	}
}

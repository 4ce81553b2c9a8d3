package app

import (
	"hwshop/internal/domain/documents/purchase"
	"hwshop/internal/domain/documents/sale"
	"hwshop/internal/domain/reports"
	"hwshop/internal/infrastructure/storage/postgres"
	"hwshop/internal/infrastructure/storage/postgres/catalog_repo"
	"hwshop/internal/infrastructure/storage/postgres/document_repo"
	"hwshop/internal/infrastructure/storage/postgres/register_repo"
	"hwshop/internal/infrastructure/storage/postgres/report_repo"
	"hwshop/pkg/numerator"
)

// PostgresRepositories returns the PostgreSQL repositories bound to txManager.
func PostgresRepositories(txManager *postgres.TxManager) Repositories {
	return Repositories{
		Products:  catalog_repo.NewProductRepo(txManager),
		Suppliers: catalog_repo.NewSupplierRepo(txManager),
		Customers: catalog_repo.NewCustomerRepo(txManager),
		Stock:     register_repo.NewStockRepo(txManager),
		Sales:     document_repo.NewSaleRepo(txManager),
		Purchases: document_repo.NewPurchaseRepo(txManager),
		Payments:  document_repo.NewPaymentRepo(txManager),
		Expenses:  document_repo.NewExpenseRepo(txManager),
		Reports:   report_repo.NewReportRepo(txManager),
	}
}

// NewPostgres builds services over a PostgreSQL pool. Document numbers are
// issued on the pool, outside the business transaction.
func NewPostgres(pool *postgres.Pool, txManager *postgres.TxManager, cache reports.Cache) *Services {
	num := numerator.New(pool,
		numerator.DefaultConfig(sale.NumberPrefix),
		numerator.DefaultConfig(purchase.NumberPrefix),
	)
	return NewServices(PostgresRepositories(txManager), txManager, num, cache)
}

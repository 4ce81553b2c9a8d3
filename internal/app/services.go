// Package app wires repositories into domain services.
package app

import (
	"context"
	"time"

	"hwshop/internal/core/tx"
	"hwshop/internal/domain/catalogs/customer"
	"hwshop/internal/domain/catalogs/product"
	"hwshop/internal/domain/catalogs/supplier"
	"hwshop/internal/domain/documents/purchase"
	"hwshop/internal/domain/documents/sale"
	"hwshop/internal/domain/expense"
	"hwshop/internal/domain/registers/stock"
	"hwshop/internal/domain/reports"
	"hwshop/internal/domain/settlement"
	"hwshop/internal/infrastructure/storage/memory"
)

// Repositories is one storage backend.
type Repositories struct {
	Products  product.Repository
	Suppliers supplier.Repository
	Customers customer.Repository
	Stock     stock.Repository
	Sales     sale.Repository
	Purchases purchase.Repository
	Payments  settlement.PaymentRepository
	Expenses  expense.Repository
	Reports   reports.Repository
}

// Numerator issues document numbers.
type Numerator interface {
	Next(ctx context.Context, prefix string, at time.Time) (string, error)
}

// Services holds every domain service.
type Services struct {
	Products   *product.Service
	Suppliers  *supplier.Service
	Customers  *customer.Service
	Stock      *stock.Service
	Sales      *sale.Service
	Purchases  *purchase.Service
	Settlement *settlement.Service
	Expenses   *expense.Service
	Reports    *reports.Service
}

// NewServices builds the service graph over repos. A nil cache disables
// report caching.
func NewServices(repos Repositories, txManager tx.Manager, numerator Numerator, cache reports.Cache) *Services {
	stockSvc := stock.NewService(repos.Stock, txManager)
	settlementSvc := settlement.NewService(repos.Payments, repos.Sales, repos.Customers, txManager)

	return &Services{
		Products:   product.NewService(repos.Products, stockSvc, txManager),
		Suppliers:  supplier.NewService(repos.Suppliers, txManager),
		Customers:  customer.NewService(repos.Customers, txManager),
		Stock:      stockSvc,
		Sales:      sale.NewService(repos.Sales, repos.Products, repos.Customers, stockSvc, settlementSvc, numerator, txManager),
		Purchases:  purchase.NewService(repos.Purchases, repos.Products, repos.Suppliers, stockSvc, numerator, txManager),
		Settlement: settlementSvc,
		Expenses:   expense.NewService(repos.Expenses),
		Reports:    reports.NewService(repos.Reports, cache),
	}
}

// MemoryRepositories returns the repositories of an in-memory store.
func MemoryRepositories(store *memory.Store) Repositories {
	return Repositories{
		Products:  store.Products(),
		Suppliers: store.Suppliers(),
		Customers: store.Customers(),
		Stock:     store.Stock(),
		Sales:     store.Sales(),
		Purchases: store.Purchases(),
		Payments:  store.Payments(),
		Expenses:  store.Expenses(),
		Reports:   store.Reports(),
	}
}

// NewMemory builds services over a fresh in-memory store.
func NewMemory() (*Services, *memory.Store) {
	store := memory.New()
	return NewServices(MemoryRepositories(store), store, store, nil), store
}

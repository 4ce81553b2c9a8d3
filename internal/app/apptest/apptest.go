// Package apptest builds an in-memory ledger with seed data for service tests.
package apptest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"hwshop/internal/app"
	"hwshop/internal/core/id"
	"hwshop/internal/core/security"
	"hwshop/internal/core/types"
	"hwshop/internal/domain/catalogs/customer"
	"hwshop/internal/domain/catalogs/product"
	"hwshop/internal/domain/catalogs/supplier"
	"hwshop/internal/domain/documents"
	"hwshop/internal/domain/documents/sale"
	"hwshop/internal/domain/registers/stock"
	"hwshop/internal/infrastructure/storage/memory"
)

var (
	Owner   = security.Actor{ID: "owner-1", Role: security.RoleOwner}
	Manager = security.Actor{ID: "manager-1", Role: security.RoleManager}
	Cashier = security.Actor{ID: "cashier-1", Role: security.RoleCashier}
	Staff   = security.Actor{ID: "staff-1", Role: security.RoleStaff}
)

// Ledger is a service graph over a fresh in-memory store.
type Ledger struct {
	*app.Services
	Store *memory.Store
	Ctx   context.Context
}

// New creates an empty ledger.
func New(t testing.TB) *Ledger {
	t.Helper()
	svc, store := app.NewMemory()
	return &Ledger{Services: svc, Store: store, Ctx: context.Background()}
}

// Product creates an active product priced at retail and stocked with
// initial units through a "found" adjustment.
func (l *Ledger) Product(t testing.TB, sku, retail, initial string) *product.Product {
	t.Helper()
	p := product.NewProduct(sku, "Product "+sku, "pcs")
	p.RetailPrice = types.MustMoney(retail)
	p.PurchasePrice = types.RoundMoney(p.RetailPrice.Div(types.MustMoney("2")))
	p.MinStockLevel = types.MustQuantity("1")
	require.NoError(t, l.Products.Create(l.Ctx, Owner, p))

	if q := types.MustQuantity(initial); q.IsPositive() {
		_, _, err := l.Stock.Adjust(l.Ctx, Owner, stock.AdjustInput{
			ProductID:      p.ID,
			QuantityChange: q,
			Reason:         stock.ReasonFound,
		})
		require.NoError(t, err)
	}
	return p
}

// Customer creates an active customer.
func (l *Ledger) Customer(t testing.TB, name, creditLimit string) *customer.Customer {
	t.Helper()
	c := customer.NewCustomer(name)
	c.CreditLimit = types.MustMoney(creditLimit)
	require.NoError(t, l.Customers.Create(l.Ctx, Owner, c))
	return c
}

// Supplier creates an active supplier.
func (l *Ledger) Supplier(t testing.TB, name string) *supplier.Supplier {
	t.Helper()
	s := supplier.NewSupplier(name)
	require.NoError(t, l.Suppliers.Create(l.Ctx, Owner, s))
	return s
}

// Line is a sale or purchase line at the given quantity and unit price.
func Line(productID id.ID, quantity, price string) documents.LineInput {
	return documents.LineInput{
		ProductID: productID,
		Quantity:  types.MustQuantity(quantity),
		UnitPrice: types.MustMoney(price),
	}
}

// CreditSale records a non-cash sale to c for a single line.
func (l *Ledger) CreditSale(t testing.TB, c *customer.Customer, p *product.Product, quantity, price string) *sale.Sale {
	t.Helper()
	s, err := l.Sales.Create(l.Ctx, Cashier, sale.CreateInput{
		CustomerID:    &c.ID,
		PaymentMethod: sale.MethodCredit,
		Items:         []documents.LineInput{Line(p.ID, quantity, price)},
	})
	require.NoError(t, err)
	return s
}

// Quantity returns the on-hand quantity of a product.
func (l *Ledger) Quantity(t testing.TB, productID id.ID) types.Quantity {
	t.Helper()
	q, err := l.Stock.CurrentQuantity(l.Ctx, productID)
	require.NoError(t, err)
	return q
}

// RequireLedgerConsistent asserts inventory equals the movement sum.
func (l *Ledger) RequireLedgerConsistent(t testing.TB, productID id.ID) {
	t.Helper()
	snapshot, ledger, err := l.Stock.Verify(l.Ctx, productID)
	require.NoError(t, err)
	require.Truef(t, snapshot.Equal(ledger), "inventory %s != movements %s", snapshot, ledger)
}

// Balance returns a customer's stored balance.
func (l *Ledger) Balance(t testing.TB, customerID id.ID) types.Money {
	t.Helper()
	c, err := l.Customers.GetByID(l.Ctx, Owner, customerID)
	require.NoError(t, err)
	return c.CurrentBalance
}

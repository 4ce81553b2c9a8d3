// Package memory is a transactional in-memory implementation of every ledger
// repository. It backs the domain service and HTTP tests.
//
// A transaction holds the store mutex for its whole duration and restores a
// snapshot of the state when fn fails, so transactions are serialized and
// all-or-nothing.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"hwshop/internal/core/id"
	"hwshop/internal/core/tx"
	"hwshop/internal/domain/catalogs/customer"
	"hwshop/internal/domain/catalogs/product"
	"hwshop/internal/domain/catalogs/supplier"
	"hwshop/internal/domain/documents/purchase"
	"hwshop/internal/domain/documents/sale"
	"hwshop/internal/domain/expense"
	"hwshop/internal/domain/registers/stock"
	"hwshop/internal/domain/settlement"
	"hwshop/pkg/numerator"
)

type state struct {
	products      map[id.ID]product.Product
	suppliers     map[id.ID]supplier.Supplier
	customers     map[id.ID]customer.Customer
	inventory     map[id.ID]stock.Inventory
	movements     map[id.ID]stock.Movement
	sales         map[id.ID]sale.Sale
	saleItems     map[id.ID]sale.SaleItem
	purchases     map[id.ID]purchase.Purchase
	purchaseItems map[id.ID]purchase.PurchaseItem
	payments      map[id.ID]settlement.Payment
	expenses      map[id.ID]expense.Expense
}

func newState() *state {
	return &state{
		products:      map[id.ID]product.Product{},
		suppliers:     map[id.ID]supplier.Supplier{},
		customers:     map[id.ID]customer.Customer{},
		inventory:     map[id.ID]stock.Inventory{},
		movements:     map[id.ID]stock.Movement{},
		sales:         map[id.ID]sale.Sale{},
		saleItems:     map[id.ID]sale.SaleItem{},
		purchases:     map[id.ID]purchase.Purchase{},
		purchaseItems: map[id.ID]purchase.PurchaseItem{},
		payments:      map[id.ID]settlement.Payment{},
		expenses:      map[id.ID]expense.Expense{},
	}
}

// clone copies every table. Rows are values; the decimals and pointers they
// hold are never mutated in place.
func (st *state) clone() *state {
	return &state{
		products:      maps.Clone(st.products),
		suppliers:     maps.Clone(st.suppliers),
		customers:     maps.Clone(st.customers),
		inventory:     maps.Clone(st.inventory),
		movements:     maps.Clone(st.movements),
		sales:         maps.Clone(st.sales),
		saleItems:     maps.Clone(st.saleItems),
		purchases:     maps.Clone(st.purchases),
		purchaseItems: maps.Clone(st.purchaseItems),
		payments:      maps.Clone(st.payments),
		expenses:      maps.Clone(st.expenses),
	}
}

type txKey struct{}

// Store holds the ledger state.
type Store struct {
	mu    sync.Mutex
	state *state

	seqMu     sync.Mutex
	sequences map[string]int64

	failMu     sync.Mutex
	failpoints map[string]*failpoint
}

type failpoint struct {
	skip int
	err  error
}

var _ tx.ReadOnlyManager = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		state:      newState(),
		sequences:  map[string]int64{},
		failpoints: map[string]*failpoint{},
	}
}

// RunInTransaction runs fn with the store locked. Nested calls join the
// outer transaction. Any error restores the state seen at the start.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

// ReadOnly runs fn with the store locked and discards nothing.
func (s *Store) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, s))
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// do runs fn against the state, locking unless ctx already holds the store.
func (s *Store) do(ctx context.Context, op string, fn func(st *state) error) error {
	if err := s.fail(op); err != nil {
		return err
	}
	if s.inTx(ctx) {
		return fn(s.state)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

// FailOn makes the operation named op fail with err after skip successful
// calls. Names are "<table>.<Method>", e.g. "stock.InsertMovement".
func (s *Store) FailOn(op string, skip int, err error) {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	s.failpoints[op] = &failpoint{skip: skip, err: err}
}

// ClearFailpoints removes every injected failure.
func (s *Store) ClearFailpoints() {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	clear(s.failpoints)
}

func (s *Store) fail(op string) error {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	fp, ok := s.failpoints[op]
	if !ok {
		return nil
	}
	if fp.skip > 0 {
		fp.skip--
		return nil
	}
	return fp.err
}

// Next issues PREFIX-YYYY-NNNNN numbers with a yearly counter.
// Counters are not transactional, so a rolled back document leaves a gap.
func (s *Store) Next(_ context.Context, prefix string, at time.Time) (string, error) {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	key := fmt.Sprintf("%s_%d", prefix, at.Year())
	s.sequences[key]++
	return numerator.Format(numerator.DefaultConfig(prefix), at, s.sequences[key]), nil
}

// Repository views.

func (s *Store) Products() *ProductRepo { return &ProductRepo{newCatalogRepo(s, productTable)} }
func (s *Store) Suppliers() *SupplierRepo { return &SupplierRepo{newCatalogRepo(s, supplierTable)} }
func (s *Store) Customers() *CustomerRepo { return &CustomerRepo{newCatalogRepo(s, customerTable)} }
func (s *Store) Stock() *StockRepo { return &StockRepo{s: s} }
func (s *Store) Sales() *SaleRepo { return &SaleRepo{s: s} }
func (s *Store) Purchases() *PurchaseRepo { return &PurchaseRepo{s: s} }
func (s *Store) Payments() *PaymentRepo { return &PaymentRepo{s: s} }
func (s *Store) Expenses() *ExpenseRepo { return &ExpenseRepo{s: s} }
func (s *Store) Reports() *ReportRepo { return &ReportRepo{s: s} }

package sale_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"hwshop/internal/app/apptest"
	"hwshop/internal/core/apperror"
	"hwshop/internal/core/id"
	"hwshop/internal/core/types"
	"hwshop/internal/domain/documents"
	"hwshop/internal/domain/documents/sale"
	"hwshop/internal/domain/registers/stock"
)

func TestCreate_CashSale(t *testing.T) {
	l := apptest.New(t)
	p := l.Product(t, "HAM-01", "25.00", "10")

	s, err := l.Sales.Create(l.Ctx, apptest.Cashier, sale.CreateInput{
		PaymentMethod:  sale.MethodCash,
		DiscountAmount: types.MustMoney("5.00"),
		Items:          []documents.LineInput{apptest.Line(p.ID, "3", "25.00")},
	})
	require.NoError(t, err)

	assert.Regexp(t, `^INV-\d{4}-00001$`, s.Number)
	assert.Equal(t, documents.StatusPaid, s.PaymentStatus)
	assert.Equal(t, "75", s.Subtotal.String())
	assert.Equal(t, "70", s.TotalAmount.String())
	assert.True(t, s.AmountPaid.Equal(s.TotalAmount))
	assert.Equal(t, "7", l.Quantity(t, p.ID).String())
	l.RequireLedgerConsistent(t, p.ID)

	detail, err := l.Sales.Get(l.Ctx, apptest.Cashier, s.ID)
	require.NoError(t, err)
	require.Len(t, detail.Items, 1)
	assert.Equal(t, "HAM-01", detail.Items[0].SKU)
	assert.Nil(t, detail.Customer)
}

func TestCreate_CreditSaleStartsPending(t *testing.T) {
	l := apptest.New(t)
	p := l.Product(t, "DRL-01", "1000.00", "2")
	c := l.Customer(t, "Builder Co", "5000.00")

	s := l.CreditSale(t, c, p, "1", "1000.00")

	assert.Equal(t, documents.StatusPending, s.PaymentStatus)
	assert.True(t, s.AmountPaid.IsZero())
	assert.Equal(t, "1000", l.Balance(t, c.ID).String())
}

func TestCreate_ZeroTotalCreditSaleIsPaid(t *testing.T) {
	l := apptest.New(t)
	p := l.Product(t, "SAMPLE-1", "0.00", "5")
	c := l.Customer(t, "Trial Co", "100.00")

	s := l.CreditSale(t, c, p, "1", "0.00")
	assert.Equal(t, documents.StatusPaid, s.PaymentStatus)
	assert.True(t, s.AmountPaid.IsZero())
	assert.True(t, l.Balance(t, c.ID).IsZero())

	_, err := l.Settlement.RecomputeAll(l.Ctx, apptest.Owner)
	require.NoError(t, err)

	detail, err := l.Sales.Get(l.Ctx, apptest.Owner, s.ID)
	require.NoError(t, err)
	assert.Equal(t, documents.StatusPaid, detail.PaymentStatus)
	assert.True(t, detail.AmountPaid.IsZero())
}

func TestCreate_CustomerCashSaleIsPaid(t *testing.T) {
	l := apptest.New(t)
	p := l.Product(t, "NAIL-1", "2.00", "100")
	c := l.Customer(t, "Walk In Regular", "0")

	s, err := l.Sales.Create(l.Ctx, apptest.Cashier, sale.CreateInput{
		CustomerID:    &c.ID,
		PaymentMethod: sale.MethodCash,
		Items:         []documents.LineInput{apptest.Line(p.ID, "10", "2.00")},
	})
	require.NoError(t, err)
	assert.Equal(t, documents.StatusPaid, s.PaymentStatus)
	assert.True(t, l.Balance(t, c.ID).IsZero())
}

func TestCreate_Rejections(t *testing.T) {
	l := apptest.New(t)
	p := l.Product(t, "SAW-01", "40.00", "5")
	inactive := l.Product(t, "OLD-01", "10.00", "5")
	require.NoError(t, l.Products.SetActive(l.Ctx, apptest.Owner, inactive.ID, false))

	tests := []struct {
		name  string
		input sale.CreateInput
		code  string
	}{
		{
			name:  "no items",
			input: sale.CreateInput{PaymentMethod: sale.MethodCash},
			code:  apperror.CodeValidation,
		},
		{
			name:  "unknown method",
			input: sale.CreateInput{PaymentMethod: "barter", Items: []documents.LineInput{apptest.Line(p.ID, "1", "40.00")}},
			code:  apperror.CodeValidation,
		},
		{
			name:  "credit without customer",
			input: sale.CreateInput{PaymentMethod: sale.MethodCredit, Items: []documents.LineInput{apptest.Line(p.ID, "1", "40.00")}},
			code:  apperror.CodeValidation,
		},
		{
			name:  "insufficient stock",
			input: sale.CreateInput{PaymentMethod: sale.MethodCash, Items: []documents.LineInput{apptest.Line(p.ID, "6", "40.00")}},
			code:  apperror.CodeInsufficientStock,
		},
		{
			name: "same product over two lines",
			input: sale.CreateInput{PaymentMethod: sale.MethodCash, Items: []documents.LineInput{
				apptest.Line(p.ID, "3", "40.00"),
				apptest.Line(p.ID, "3", "40.00"),
			}},
			code: apperror.CodeInsufficientStock,
		},
		{
			name:  "inactive product",
			input: sale.CreateInput{PaymentMethod: sale.MethodCash, Items: []documents.LineInput{apptest.Line(inactive.ID, "1", "10.00")}},
			code:  apperror.CodeInactiveEntity,
		},
		{
			name: "line total mismatch",
			input: sale.CreateInput{PaymentMethod: sale.MethodCash, Items: []documents.LineInput{func() documents.LineInput {
				line := apptest.Line(p.ID, "2", "40.00")
				wrong := types.MustMoney("79.00")
				line.LineTotal = &wrong
				return line
			}()}},
			code: apperror.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Sales.Create(l.Ctx, apptest.Cashier, tt.input)
			require.Error(t, err)
			assert.True(t, apperror.HasCode(err, tt.code), "got %v", err)
		})
	}

	assert.Equal(t, "5", l.Quantity(t, p.ID).String())
	l.RequireLedgerConsistent(t, p.ID)
}

func TestCreate_StaffCannotSell(t *testing.T) {
	l := apptest.New(t)
	p := l.Product(t, "TAPE-1", "3.00", "5")

	_, err := l.Sales.Create(l.Ctx, apptest.Staff, sale.CreateInput{
		PaymentMethod: sale.MethodCash,
		Items:         []documents.LineInput{apptest.Line(p.ID, "1", "3.00")},
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))
}

func TestCreate_RollsBackWhenItemStageFails(t *testing.T) {
	l := apptest.New(t)
	a := l.Product(t, "BOLT-1", "1.00", "20")
	b := l.Product(t, "NUT-01", "0.50", "20")

	before, err := l.Stock.ListMovements(l.Ctx, apptest.Owner, stock.MovementFilter{})
	require.NoError(t, err)

	// The second line's movement fails after the header, items and the first movement were written.
	l.Store.FailOn("stock.InsertMovement", 1, errors.New("disk full"))
	_, err = l.Sales.Create(l.Ctx, apptest.Cashier, sale.CreateInput{
		PaymentMethod: sale.MethodCash,
		Items: []documents.LineInput{
			apptest.Line(a.ID, "3", "1.00"),
			apptest.Line(b.ID, "4", "0.50"),
		},
	})
	require.Error(t, err)
	l.Store.ClearFailpoints()

	sales, err := l.Sales.List(l.Ctx, apptest.Owner, sale.ListFilter{})
	require.NoError(t, err)
	assert.Zero(t, sales.TotalCount)

	after, err := l.Stock.ListMovements(l.Ctx, apptest.Owner, stock.MovementFilter{})
	require.NoError(t, err)
	assert.Equal(t, before.TotalCount, after.TotalCount)

	assert.Equal(t, "20", l.Quantity(t, a.ID).String())
	assert.Equal(t, "20", l.Quantity(t, b.ID).String())
}

func TestCreate_ConcurrentSalesNeverOverdraw(t *testing.T) {
	l := apptest.New(t)
	p := l.Product(t, "CEM-50", "12.00", "10")

	const requests = 8
	results := make([]error, requests)
	var g errgroup.Group
	for i := range requests {
		g.Go(func() error {
			_, results[i] = l.Sales.Create(l.Ctx, apptest.Cashier, sale.CreateInput{
				PaymentMethod: sale.MethodCash,
				Items:         []documents.LineInput{apptest.Line(p.ID, "6", "12.00")},
			})
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var succeeded int
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock), "got %v", err)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, "4", l.Quantity(t, p.ID).String())
	l.RequireLedgerConsistent(t, p.ID)
}

func TestDelete_RestoresStock(t *testing.T) {
	t.Run("different products", func(t *testing.T) {
		l := apptest.New(t)
		a := l.Product(t, "PIPE-1", "8.00", "20")
		b := l.Product(t, "PIPE-2", "9.00", "20")

		s, err := l.Sales.Create(l.Ctx, apptest.Cashier, sale.CreateInput{
			PaymentMethod: sale.MethodCash,
			Items: []documents.LineInput{
				apptest.Line(a.ID, "3", "8.00"),
				apptest.Line(b.ID, "5", "9.00"),
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "17", l.Quantity(t, a.ID).String())
		assert.Equal(t, "15", l.Quantity(t, b.ID).String())

		require.NoError(t, l.Sales.Delete(l.Ctx, apptest.Manager, s.ID))
		assert.Equal(t, "20", l.Quantity(t, a.ID).String())
		assert.Equal(t, "20", l.Quantity(t, b.ID).String())
		l.RequireLedgerConsistent(t, a.ID)
		l.RequireLedgerConsistent(t, b.ID)
	})

	t.Run("lines out of product order", func(t *testing.T) {
		l := apptest.New(t)
		a := l.Product(t, "VALVE-1", "4.00", "10")
		b := l.Product(t, "VALVE-2", "4.00", "10")
		c := l.Product(t, "VALVE-3", "4.00", "10")

		s, err := l.Sales.Create(l.Ctx, apptest.Cashier, sale.CreateInput{
			PaymentMethod: sale.MethodCash,
			Items: []documents.LineInput{
				apptest.Line(c.ID, "1", "4.00"),
				apptest.Line(a.ID, "2", "4.00"),
				apptest.Line(b.ID, "3", "4.00"),
				apptest.Line(a.ID, "4", "4.00"),
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "4", l.Quantity(t, a.ID).String())

		require.NoError(t, l.Sales.Delete(l.Ctx, apptest.Owner, s.ID))
		for _, p := range []id.ID{a.ID, b.ID, c.ID} {
			assert.Equal(t, "10", l.Quantity(t, p).String())
			l.RequireLedgerConsistent(t, p)
		}
	})

	t.Run("same product", func(t *testing.T) {
		l := apptest.New(t)
		p := l.Product(t, "WIRE-1", "2.50", "20")

		s, err := l.Sales.Create(l.Ctx, apptest.Cashier, sale.CreateInput{
			PaymentMethod: sale.MethodCash,
			Items: []documents.LineInput{
				apptest.Line(p.ID, "3", "2.50"),
				apptest.Line(p.ID, "5", "2.50"),
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "12", l.Quantity(t, p.ID).String())

		require.NoError(t, l.Sales.Delete(l.Ctx, apptest.Owner, s.ID))
		assert.Equal(t, "20", l.Quantity(t, p.ID).String())

		_, err = l.Sales.Get(l.Ctx, apptest.Owner, s.ID)
		assert.True(t, apperror.IsNotFound(err))
	})
}

func TestDelete_CreditSaleClearsPaymentsAndBalance(t *testing.T) {
	l := apptest.New(t)
	p := l.Product(t, "GEN-01", "500.00", "3")
	c := l.Customer(t, "Farm Ltd", "2000.00")
	s := l.CreditSale(t, c, p, "2", "500.00")

	_, err := l.Settlement.RecordPayment(l.Ctx, apptest.Cashier, settlementInput(s, "300.00"))
	require.NoError(t, err)
	assert.Equal(t, "700", l.Balance(t, c.ID).String())

	require.NoError(t, l.Sales.Delete(l.Ctx, apptest.Owner, s.ID))
	assert.True(t, l.Balance(t, c.ID).IsZero())
	assert.Equal(t, "3", l.Quantity(t, p.ID).String())
}

func TestDelete_CashierForbidden(t *testing.T) {
	l := apptest.New(t)
	p := l.Product(t, "LOCK-1", "15.00", "2")
	s, err := l.Sales.Create(l.Ctx, apptest.Cashier, sale.CreateInput{
		PaymentMethod: sale.MethodCard,
		Items:         []documents.LineInput{apptest.Line(p.ID, "1", "15.00")},
	})
	require.NoError(t, err)

	err = l.Sales.Delete(l.Ctx, apptest.Cashier, s.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))
	assert.Equal(t, "1", l.Quantity(t, p.ID).String())
}

package purchase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hwshop/internal/app/apptest"
	"hwshop/internal/core/apperror"
	"hwshop/internal/domain/documents"
	"hwshop/internal/domain/documents/purchase"
	"hwshop/internal/domain/documents/sale"
)

func TestCreate_AddsStock(t *testing.T) {
	l := apptest.New(t)
	p := l.Product(t, "PAINT-1", "30.00", "0")
	s := l.Supplier(t, "Colour Depot")

	po, err := l.Purchases.Create(l.Ctx, apptest.Staff, purchase.CreateInput{
		SupplierID:    s.ID,
		InvoiceNumber: "CD-7781",
		Items:         []documents.LineInput{apptest.Line(p.ID, "12", "14.50")},
	})
	require.NoError(t, err)
	assert.Regexp(t, `^PO-\d{4}-00001$`, po.Number)
	assert.Equal(t, documents.StatusPending, po.PaymentStatus)
	assert.Equal(t, "174", po.TotalAmount.String())
	assert.Equal(t, "12", l.Quantity(t, p.ID).String())
	l.RequireLedgerConsistent(t, p.ID)

	detail, err := l.Purchases.Get(l.Ctx, apptest.Staff, po.ID)
	require.NoError(t, err)
	assert.Equal(t, "Colour Depot", detail.SupplierName)
	require.Len(t, detail.Items, 1)
	assert.Equal(t, "PAINT-1", detail.Items[0].SKU)
}

func TestCreate_InactiveSupplier(t *testing.T) {
	l := apptest.New(t)
	p := l.Product(t, "PAINT-2", "30.00", "0")
	s := l.Supplier(t, "Closed Ltd")
	require.NoError(t, l.Suppliers.SetActive(l.Ctx, apptest.Owner, s.ID, false))

	_, err := l.Purchases.Create(l.Ctx, apptest.Staff, purchase.CreateInput{
		SupplierID: s.ID,
		Items:      []documents.LineInput{apptest.Line(p.ID, "1", "14.50")},
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeInactiveEntity), "got %v", err)
	assert.True(t, l.Quantity(t, p.ID).IsZero())
}

func TestDelete_ReversesStock(t *testing.T) {
	l := apptest.New(t)
	p := l.Product(t, "PAINT-3", "30.00", "2")
	s := l.Supplier(t, "Colour Depot")

	po, err := l.Purchases.Create(l.Ctx, apptest.Staff, purchase.CreateInput{
		SupplierID: s.ID,
		Items:      []documents.LineInput{apptest.Line(p.ID, "10", "14.50")},
	})
	require.NoError(t, err)
	assert.Equal(t, "12", l.Quantity(t, p.ID).String())

	err = l.Purchases.Delete(l.Ctx, apptest.Staff, po.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))

	require.NoError(t, l.Purchases.Delete(l.Ctx, apptest.Owner, po.ID))
	assert.Equal(t, "2", l.Quantity(t, p.ID).String())
	l.RequireLedgerConsistent(t, p.ID)
}

func TestDelete_AfterGoodsWereSoldLeavesNegativeStock(t *testing.T) {
	l := apptest.New(t)
	p := l.Product(t, "PAINT-4", "30.00", "0")
	s := l.Supplier(t, "Colour Depot")

	po, err := l.Purchases.Create(l.Ctx, apptest.Staff, purchase.CreateInput{
		SupplierID: s.ID,
		Items:      []documents.LineInput{apptest.Line(p.ID, "5", "14.50")},
	})
	require.NoError(t, err)
	_, err = l.Sales.Create(l.Ctx, apptest.Cashier, sale.CreateInput{
		PaymentMethod: sale.MethodCash,
		Items:         []documents.LineInput{apptest.Line(p.ID, "4", "30.00")},
	})
	require.NoError(t, err)

	require.NoError(t, l.Purchases.Delete(l.Ctx, apptest.Owner, po.ID))
	assert.Equal(t, "-4", l.Quantity(t, p.ID).String())
	l.RequireLedgerConsistent(t, p.ID)
}

func TestUpdatePaymentStatus(t *testing.T) {
	l := apptest.New(t)
	p := l.Product(t, "PAINT-5", "30.00", "0")
	s := l.Supplier(t, "Colour Depot")
	po, err := l.Purchases.Create(l.Ctx, apptest.Staff, purchase.CreateInput{
		SupplierID: s.ID,
		Items:      []documents.LineInput{apptest.Line(p.ID, "1", "14.50")},
	})
	require.NoError(t, err)

	err = l.Purchases.UpdatePaymentStatus(l.Ctx, apptest.Staff, po.ID, documents.StatusPaid)
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))

	err = l.Purchases.UpdatePaymentStatus(l.Ctx, apptest.Manager, po.ID, "settled")
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	require.NoError(t, l.Purchases.UpdatePaymentStatus(l.Ctx, apptest.Manager, po.ID, documents.StatusPartial))
	got, err := l.Purchases.Get(l.Ctx, apptest.Owner, po.ID)
	require.NoError(t, err)
	assert.Equal(t, documents.StatusPartial, got.PaymentStatus)
}

package product_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hwshop/internal/app/apptest"
	"hwshop/internal/core/apperror"
	"hwshop/internal/core/types"
	"hwshop/internal/domain"
	"hwshop/internal/domain/catalogs/product"
	"hwshop/internal/domain/documents"
	"hwshop/internal/domain/documents/sale"
)

func TestCreate_InitializesInventory(t *testing.T) {
	l := apptest.New(t)
	p := product.NewProduct("SCR-10", "Wood screw 10mm", "box")
	p.PurchasePrice = types.MustMoney("3.10")
	p.RetailPrice = types.MustMoney("4.50")
	require.NoError(t, l.Products.Create(l.Ctx, apptest.Manager, p))

	view, err := l.Stock.GetInventory(l.Ctx, apptest.Cashier, p.ID)
	require.NoError(t, err)
	assert.True(t, view.Quantity.IsZero())
	assert.Equal(t, "SCR-10", view.SKU)
}

func TestCreate_DuplicateSKU(t *testing.T) {
	l := apptest.New(t)
	l.Product(t, "DUP-01", "1.00", "0")

	p := product.NewProduct("DUP-01", "Another", "pcs")
	p.RetailPrice = types.MustMoney("1.00")
	err := l.Products.Create(l.Ctx, apptest.Owner, p)
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate), "got %v", err)
}

func TestValidate_PriceInvariants(t *testing.T) {
	tests := []struct {
		name      string
		purchase  string
		retail    string
		wholesale string
		wantErr   bool
	}{
		{name: "valid", purchase: "10.00", retail: "15.00", wholesale: "12.00"},
		{name: "retail below purchase", purchase: "10.00", retail: "9.99", wantErr: true},
		{name: "wholesale above retail", purchase: "10.00", retail: "15.00", wholesale: "15.01", wantErr: true},
		{name: "three decimal price", purchase: "10.001", retail: "15.00", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := product.NewProduct("VAL-1", "Valid", "pcs")
			p.PurchasePrice = decimal.RequireFromString(tt.purchase)
			p.RetailPrice = decimal.RequireFromString(tt.retail)
			if tt.wholesale != "" {
				p.WholesalePrice.Decimal = decimal.RequireFromString(tt.wholesale)
				p.WholesalePrice.Valid = true
			}
			err := p.Validate(t.Context())
			if tt.wantErr {
				assert.True(t, apperror.HasCode(err, apperror.CodeValidation), "got %v", err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDelete_ReferencedProductIsKept(t *testing.T) {
	l := apptest.New(t)
	p := l.Product(t, "REF-01", "5.00", "3")
	_, err := l.Sales.Create(l.Ctx, apptest.Cashier, sale.CreateInput{
		PaymentMethod: sale.MethodCash,
		Items:         []documents.LineInput{apptest.Line(p.ID, "1", "5.00")},
	})
	require.NoError(t, err)

	err = l.Products.Delete(l.Ctx, apptest.Manager, p.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))

	err = l.Products.Delete(l.Ctx, apptest.Owner, p.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeEntityReferenced), "got %v", err)

	require.NoError(t, l.Products.SetActive(l.Ctx, apptest.Owner, p.ID, false))
	got, err := l.Products.GetByID(l.Ctx, apptest.Cashier, p.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestDelete_UnreferencedProduct(t *testing.T) {
	l := apptest.New(t)
	p := l.Product(t, "NEW-01", "5.00", "0")

	require.NoError(t, l.Products.Delete(l.Ctx, apptest.Owner, p.ID))
	_, err := l.Products.GetByID(l.Ctx, apptest.Owner, p.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestList_Search(t *testing.T) {
	l := apptest.New(t)
	l.Product(t, "HAM-01", "20.00", "0")
	l.Product(t, "HAM-02", "22.00", "0")
	l.Product(t, "SAW-01", "30.00", "0")

	filter := domain.DefaultListFilter()
	filter.Search = "ham"
	result, err := l.Products.List(l.Ctx, apptest.Cashier, filter)
	require.NoError(t, err)
	assert.EqualValues(t, 2, result.TotalCount)
}

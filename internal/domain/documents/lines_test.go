package documents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hwshop/internal/core/apperror"
	"hwshop/internal/core/id"
	"hwshop/internal/core/types"
)

func TestPriceLines(t *testing.T) {
	p := id.New()
	given := types.MustMoney("24.00")

	lines, err := PriceLines([]LineInput{
		{ProductID: p, Quantity: types.MustQuantity("2.5"), UnitPrice: types.MustMoney("10.00"), Discount: types.MustMoney("1.00"), LineTotal: &given},
		{ProductID: p, Quantity: types.MustQuantity("1"), UnitPrice: types.MustMoney("3.33")},
	})
	require.NoError(t, err)
	assert.True(t, lines[0].LineTotal.Equal(types.MustMoney("24.00")))
	assert.True(t, lines[1].LineTotal.Equal(types.MustMoney("3.33")))

	qty := QuantitiesByProduct(lines)
	assert.True(t, qty[p].Equal(types.MustQuantity("3.5")))
}

func TestPriceLines_Rejects(t *testing.T) {
	wrong := types.MustMoney("99.00")
	p := id.New()

	tests := []struct {
		name string
		in   []LineInput
	}{
		{"empty", nil},
		{"zero quantity", []LineInput{{ProductID: p, UnitPrice: types.MustMoney("1")}}},
		{"negative price", []LineInput{{ProductID: p, Quantity: types.MustQuantity("1"), UnitPrice: types.MustMoney("-1")}}},
		{"discount above amount", []LineInput{{ProductID: p, Quantity: types.MustQuantity("1"), UnitPrice: types.MustMoney("1"), Discount: types.MustMoney("2")}}},
		{"mismatched total", []LineInput{{ProductID: p, Quantity: types.MustQuantity("1"), UnitPrice: types.MustMoney("1"), LineTotal: &wrong}}},
		{"missing product", []LineInput{{Quantity: types.MustQuantity("1")}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PriceLines(tt.in)
			assert.Equal(t, apperror.CategoryValidation, apperror.CategoryOf(err))
		})
	}
}

func TestTotals(t *testing.T) {
	lines := []Line{{LineTotal: types.MustMoney("600")}, {LineTotal: types.MustMoney("500")}}

	subtotal, total, err := Totals(lines, types.MustMoney("100"))
	require.NoError(t, err)
	assert.True(t, subtotal.Equal(types.MustMoney("1100")))
	assert.True(t, total.Equal(types.MustMoney("1000")))

	_, _, err = Totals(lines, types.MustMoney("1100.01"))
	assert.Error(t, err)
}

func TestDeriveStatus(t *testing.T) {
	total := types.MustMoney("1000")
	assert.Equal(t, StatusPending, DeriveStatus(types.MustMoney("0"), total))
	assert.Equal(t, StatusPartial, DeriveStatus(types.MustMoney("400"), total))
	assert.Equal(t, StatusPaid, DeriveStatus(types.MustMoney("1000"), total))
}

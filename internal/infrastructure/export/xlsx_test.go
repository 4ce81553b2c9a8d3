package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"hwshop/internal/core/id"
	"hwshop/internal/core/types"
	"hwshop/internal/domain/reports"
)

func day(d int) time.Time {
	return time.Date(2026, 10, d, 0, 0, 0, 0, time.UTC)
}

func TestSalesWorkbook(t *testing.T) {
	summary := &reports.SalesSummary{
		Period: reports.Period{From: day(1), To: day(2)},
		Days: []reports.SalesDay{
			{Day: day(1), SalesCount: 2, Subtotal: types.MustMoney("110"), Discounts: types.MustMoney("10"), Revenue: types.MustMoney("100"), AmountPaid: types.MustMoney("100")},
			{Day: day(2), SalesCount: 1, Subtotal: types.MustMoney("50.5"), Revenue: types.MustMoney("50.5"), AmountPaid: types.MustMoney("20")},
		},
		TotalCount:   3,
		TotalRevenue: types.MustMoney("150.5"),
		TotalPaid:    types.MustMoney("120"),
	}
	products := []reports.ProductPerformance{{
		ProductID:    id.New(),
		SKU:          "HAM-01",
		Name:         "Claw hammer",
		QuantitySold: types.MustQuantity("3"),
		Revenue:      types.MustMoney("150.5"),
		Cost:         types.MustMoney("90"),
		GrossProfit:  types.MustMoney("60.5"),
	}}

	var buf bytes.Buffer
	require.NoError(t, SalesWorkbook(&buf, summary, products))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SalesSheet, ProductsSheet}, f.GetSheetList())

	rows, err := f.GetRows(SalesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Day", rows[0][0])
	assert.Equal(t, []string{"2026-10-02", "1", "50.5", "0", "50.5", "20"}, rows[2])
	assert.Equal(t, "Total", rows[3][0])
	assert.Equal(t, "150.5", rows[3][4])

	rows, err = f.GetRows(ProductsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"HAM-01", "Claw hammer", "3", "150.5", "90", "60.5"}, rows[1])
}

func TestSalesWorkbook_NoProducts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SalesWorkbook(&buf, &reports.SalesSummary{}, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SalesSheet}, f.GetSheetList())
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "sales_2026-10-01_2026-10-31.xlsx", Filename(reports.Period{From: day(1), To: day(31)}))
}

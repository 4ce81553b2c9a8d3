// Package export renders reports as xlsx workbooks.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"hwshop/internal/domain/reports"
)

const (
	// ContentType is the MIME type of the produced workbooks.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	SalesSheet    = "Sales by day"
	ProductsSheet = "Products"
)

var (
	salesHeader    = []any{"Day", "Sales", "Subtotal", "Discounts", "Revenue", "Amount paid"}
	productsHeader = []any{"SKU", "Name", "Quantity sold", "Revenue", "Cost", "Gross profit"}
)

// SalesWorkbook writes the daily sales summary and, when given, the product
// performance rows to w.
func SalesWorkbook(w io.Writer, summary *reports.SalesSummary, products []reports.ProductPerformance) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SalesSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeSales(f, summary); err != nil {
		return err
	}

	if len(products) > 0 {
		if _, err := f.NewSheet(ProductsSheet); err != nil {
			return fmt.Errorf("create sheet: %w", err)
		}
		if err := writeProducts(f, products); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Filename returns the download name for a period.
func Filename(p reports.Period) string {
	return fmt.Sprintf("sales_%s_%s.xlsx", p.From.Format(time.DateOnly), p.To.Format(time.DateOnly))
}

func writeSales(f *excelize.File, summary *reports.SalesSummary) error {
	if err := setRow(f, SalesSheet, 1, salesHeader); err != nil {
		return err
	}
	row := 2
	for _, d := range summary.Days {
		err := setRow(f, SalesSheet, row, []any{
			d.Day.Format(time.DateOnly),
			d.SalesCount,
			d.Subtotal.InexactFloat64(),
			d.Discounts.InexactFloat64(),
			d.Revenue.InexactFloat64(),
			d.AmountPaid.InexactFloat64(),
		})
		if err != nil {
			return err
		}
		row++
	}
	return setRow(f, SalesSheet, row, []any{
		"Total",
		summary.TotalCount,
		nil,
		nil,
		summary.TotalRevenue.InexactFloat64(),
		summary.TotalPaid.InexactFloat64(),
	})
}

func writeProducts(f *excelize.File, products []reports.ProductPerformance) error {
	if err := setRow(f, ProductsSheet, 1, productsHeader); err != nil {
		return err
	}
	for i, p := range products {
		err := setRow(f, ProductsSheet, i+2, []any{
			p.SKU,
			p.Name,
			p.QuantitySold.InexactFloat64(),
			p.Revenue.InexactFloat64(),
			p.Cost.InexactFloat64(),
			p.GrossProfit.InexactFloat64(),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

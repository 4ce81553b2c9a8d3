package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"hwshop/internal/core/id"
	"hwshop/internal/core/types"
	"hwshop/internal/domain/reports"
)

// ReportRepo implements reports.Repository over the in-memory tables.
type ReportRepo struct {
	s *Store
}

var _ reports.Repository = (*ReportRepo)(nil)

func within(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

func (r *ReportRepo) SalesTotals(ctx context.Context, from, to time.Time) (reports.SalesTotals, error) {
	var out reports.SalesTotals
	err := r.s.do(ctx, "report.SalesTotals", func(st *state) error {
		for _, s := range st.sales {
			if within(s.SaleDate, from, to) {
				out.Count++
				out.Revenue = out.Revenue.Add(s.TotalAmount)
			}
		}
		return nil
	})
	return out, err
}

func (r *ReportRepo) SalesByDay(ctx context.Context, from, to time.Time) ([]reports.SalesDay, error) {
	var out []reports.SalesDay
	err := r.s.do(ctx, "report.SalesByDay", func(st *state) error {
		byDay := map[time.Time]*reports.SalesDay{}
		for _, s := range st.sales {
			if !within(s.SaleDate, from, to) {
				continue
			}
			y, m, d := s.SaleDate.UTC().Date()
			day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
			row, ok := byDay[day]
			if !ok {
				row = &reports.SalesDay{Day: day}
				byDay[day] = row
			}
			row.SalesCount++
			row.Subtotal = row.Subtotal.Add(s.Subtotal)
			row.Discounts = row.Discounts.Add(s.DiscountAmount)
			row.Revenue = row.Revenue.Add(s.TotalAmount)
			row.AmountPaid = row.AmountPaid.Add(s.AmountPaid)
		}
		for _, row := range byDay {
			out = append(out, *row)
		}
		slices.SortFunc(out, func(a, b reports.SalesDay) int { return a.Day.Compare(b.Day) })
		return nil
	})
	return out, err
}

func (r *ReportRepo) ProductPerformance(ctx context.Context, from, to time.Time, limit int) ([]reports.ProductPerformance, error) {
	var out []reports.ProductPerformance
	err := r.s.do(ctx, "report.ProductPerformance", func(st *state) error {
		byProduct := map[id.ID]*reports.ProductPerformance{}
		for _, it := range st.saleItems {
			s := st.sales[it.SaleID]
			if !within(s.SaleDate, from, to) {
				continue
			}
			p := st.products[it.ProductID]
			row, ok := byProduct[it.ProductID]
			if !ok {
				row = &reports.ProductPerformance{ProductID: p.ID, SKU: p.SKU, Name: p.Name}
				byProduct[it.ProductID] = row
			}
			row.QuantitySold = row.QuantitySold.Add(it.Quantity)
			row.Revenue = row.Revenue.Add(it.LineTotal)
			row.Cost = row.Cost.Add(types.RoundMoney(it.Quantity.Mul(p.PurchasePrice)))
		}
		for _, row := range byProduct {
			row.GrossProfit = row.Revenue.Sub(row.Cost)
			out = append(out, *row)
		}
		slices.SortFunc(out, func(a, b reports.ProductPerformance) int {
			if c := b.Revenue.Cmp(a.Revenue); c != 0 {
				return c
			}
			return strings.Compare(a.SKU, b.SKU)
		})
		if limit > 0 && len(out) > limit {
			out = out[:limit]
		}
		return nil
	})
	return out, err
}

func (r *ReportRepo) CostOfGoodsSold(ctx context.Context, from, to time.Time) (types.Money, error) {
	var cogs types.Money
	err := r.s.do(ctx, "report.CostOfGoodsSold", func(st *state) error {
		for _, it := range st.saleItems {
			if !within(st.sales[it.SaleID].SaleDate, from, to) {
				continue
			}
			price := st.products[it.ProductID].PurchasePrice
			cogs = cogs.Add(types.RoundMoney(it.Quantity.Mul(price)))
		}
		return nil
	})
	return cogs, err
}

func (r *ReportRepo) ExpensesByCategory(ctx context.Context, from, to time.Time) ([]reports.CategoryTotal, error) {
	var out []reports.CategoryTotal
	err := r.s.do(ctx, "report.ExpensesByCategory", func(st *state) error {
		totals := map[string]types.Money{}
		for _, e := range st.expenses {
			if within(e.ExpenseDate, from, to) {
				totals[e.Category] = totals[e.Category].Add(e.Amount)
			}
		}
		for category, total := range totals {
			out = append(out, reports.CategoryTotal{Category: category, Total: total})
		}
		slices.SortFunc(out, func(a, b reports.CategoryTotal) int { return strings.Compare(a.Category, b.Category) })
		return nil
	})
	return out, err
}

func (r *ReportRepo) OutstandingReceivables(ctx context.Context) (types.Money, error) {
	var total types.Money
	err := r.s.do(ctx, "report.OutstandingReceivables", func(st *state) error {
		for _, c := range st.customers {
			total = total.Add(c.CurrentBalance)
		}
		return nil
	})
	return total, err
}

func (r *ReportRepo) LowStockCount(ctx context.Context) (int, error) {
	var n int
	err := r.s.do(ctx, "report.LowStockCount", func(st *state) error {
		for _, inv := range st.inventory {
			if v := inventoryView(st, inv); v.IsActive && v.IsLowStock() {
				n++
			}
		}
		return nil
	})
	return n, err
}

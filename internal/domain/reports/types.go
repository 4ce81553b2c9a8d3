// Package reports provides read-only aggregates over the ledger.
// Nothing in this package writes.
package reports

import (
	"time"

	"hwshop/internal/core/id"
	"hwshop/internal/core/types"
)

// Period is an inclusive range of calendar days in UTC.
type Period struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Bounds returns the half-open instant range [start, end) covered by the period.
func (p Period) Bounds() (start, end time.Time) {
	start = truncateDay(p.From)
	end = truncateDay(p.To).AddDate(0, 0, 1)
	return start, end
}

func (p Period) key() string {
	return p.From.Format(time.DateOnly) + ":" + p.To.Format(time.DateOnly)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SalesTotals aggregates sale headers in a range.
type SalesTotals struct {
	Count   int         `db:"sales_count" json:"count"`
	Revenue types.Money `db:"revenue" json:"revenue"`
}

// Dashboard is the landing-page snapshot.
type Dashboard struct {
	Date                   time.Time   `json:"date"`
	TodaySalesCount        int         `json:"todaySalesCount"`
	TodayRevenue           types.Money `json:"todayRevenue"`
	MonthRevenue           types.Money `json:"monthRevenue"`
	OutstandingReceivables types.Money `json:"outstandingReceivables"`
	LowStockCount          int         `json:"lowStockCount"`
	GeneratedAt            time.Time   `json:"generatedAt"`
}

// SalesDay is one row of the daily sales summary.
type SalesDay struct {
	Day        time.Time   `db:"day" json:"day"`
	SalesCount int         `db:"sales_count" json:"salesCount"`
	Subtotal   types.Money `db:"subtotal" json:"subtotal"`
	Discounts  types.Money `db:"discounts" json:"discounts"`
	Revenue    types.Money `db:"revenue" json:"revenue"`
	AmountPaid types.Money `db:"amount_paid" json:"amountPaid"`
}

// SalesSummary is revenue per day over a period.
type SalesSummary struct {
	Period       Period      `json:"period"`
	Days         []SalesDay  `json:"days"`
	TotalCount   int         `json:"totalCount"`
	TotalRevenue types.Money `json:"totalRevenue"`
	TotalPaid    types.Money `json:"totalPaid"`
}

// ProductPerformance is quantity sold, revenue and gross profit per product.
// Cost uses the product's current purchase price.
type ProductPerformance struct {
	ProductID    id.ID          `db:"product_id" json:"productId"`
	SKU          string         `db:"sku" json:"sku"`
	Name         string         `db:"name" json:"name"`
	QuantitySold types.Quantity `db:"quantity_sold" json:"quantitySold"`
	Revenue      types.Money    `db:"revenue" json:"revenue"`
	Cost         types.Money    `db:"cost" json:"cost"`
	GrossProfit  types.Money    `db:"gross_profit" json:"grossProfit"`
}

// PerformanceFilter selects the product performance rows.
type PerformanceFilter struct {
	Period Period
	Limit  int
}

// CategoryTotal is the expense total of one category.
type CategoryTotal struct {
	Category string      `db:"category" json:"category"`
	Total    types.Money `db:"total" json:"total"`
}

// FinancialSummary is revenue minus cost of goods minus expenses.
type FinancialSummary struct {
	Period             Period          `json:"period"`
	Revenue            types.Money     `json:"revenue"`
	CostOfGoods        types.Money     `json:"costOfGoods"`
	GrossProfit        types.Money     `json:"grossProfit"`
	Expenses           types.Money     `json:"expenses"`
	NetProfit          types.Money     `json:"netProfit"`
	ExpensesByCategory []CategoryTotal `json:"expensesByCategory"`
}

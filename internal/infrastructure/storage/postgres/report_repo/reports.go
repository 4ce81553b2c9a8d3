// Package report_repo provides the PostgreSQL implementation of report queries.
package report_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"hwshop/internal/core/types"
	"hwshop/internal/domain/reports"
	"hwshop/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository. Every query is read-only.
type ReportRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ reports.Repository = (*ReportRepo)(nil)

// NewReportRepo creates a new report repository.
func NewReportRepo(txManager *postgres.TxManager) *ReportRepo {
	return &ReportRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *ReportRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

func between(col string, from, to time.Time) squirrel.Sqlizer {
	return squirrel.And{squirrel.GtOrEq{col: from}, squirrel.Lt{col: to}}
}

func (r *ReportRepo) salesTotalsQuery(from, to time.Time) squirrel.SelectBuilder {
	return r.builder.Select("COUNT(*) AS sales_count", "COALESCE(SUM(total_amount), 0) AS revenue").
		From("sales").
		Where(between("sale_date", from, to))
}

func (r *ReportRepo) SalesTotals(ctx context.Context, from, to time.Time) (reports.SalesTotals, error) {
	var out reports.SalesTotals
	sql, args, err := r.salesTotalsQuery(from, to).ToSql()
	if err != nil {
		return out, fmt.Errorf("build sales totals: %w", err)
	}
	if err := pgxscan.Get(ctx, r.querier(ctx), &out, sql, args...); err != nil {
		return out, postgres.MapError(fmt.Errorf("sales totals: %w", err))
	}
	return out, nil
}

func (r *ReportRepo) salesByDayQuery(from, to time.Time) squirrel.SelectBuilder {
	return r.builder.Select(
		"date_trunc('day', sale_date AT TIME ZONE 'UTC') AS day",
		"COUNT(*) AS sales_count",
		"SUM(subtotal) AS subtotal",
		"SUM(discount_amount) AS discounts",
		"SUM(total_amount) AS revenue",
		"SUM(amount_paid) AS amount_paid",
	).
		From("sales").
		Where(between("sale_date", from, to)).
		GroupBy("day").
		OrderBy("day")
}

// SalesByDay buckets sales by UTC calendar day.
func (r *ReportRepo) SalesByDay(ctx context.Context, from, to time.Time) ([]reports.SalesDay, error) {
	sql, args, err := r.salesByDayQuery(from, to).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sales by day: %w", err)
	}

	days := []reports.SalesDay{}
	if err := pgxscan.Select(ctx, r.querier(ctx), &days, sql, args...); err != nil {
		return nil, postgres.MapError(fmt.Errorf("sales by day: %w", err))
	}
	for i := range days {
		days[i].Day = days[i].Day.UTC()
	}
	return days, nil
}

func (r *ReportRepo) performanceQuery(from, to time.Time, limit int) squirrel.SelectBuilder {
	q := r.builder.Select(
		"p.id AS product_id",
		"p.sku",
		"p.name",
		"SUM(si.quantity) AS quantity_sold",
		"SUM(si.line_total) AS revenue",
		"SUM(ROUND(si.quantity * p.purchase_price, 2)) AS cost",
		"SUM(si.line_total) - SUM(ROUND(si.quantity * p.purchase_price, 2)) AS gross_profit",
	).
		From("sale_items si").
		Join("sales s ON s.id = si.sale_id").
		Join("products p ON p.id = si.product_id").
		Where(between("s.sale_date", from, to)).
		GroupBy("p.id", "p.sku", "p.name").
		OrderBy("revenue DESC", "p.sku ASC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	return q
}

// ProductPerformance ranks products by revenue. Cost uses the current purchase price.
func (r *ReportRepo) ProductPerformance(ctx context.Context, from, to time.Time, limit int) ([]reports.ProductPerformance, error) {
	sql, args, err := r.performanceQuery(from, to, limit).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build product performance: %w", err)
	}

	rows := []reports.ProductPerformance{}
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, sql, args...); err != nil {
		return nil, postgres.MapError(fmt.Errorf("product performance: %w", err))
	}
	return rows, nil
}

func (r *ReportRepo) CostOfGoodsSold(ctx context.Context, from, to time.Time) (types.Money, error) {
	q := r.builder.Select("COALESCE(SUM(ROUND(si.quantity * p.purchase_price, 2)), 0)").
		From("sale_items si").
		Join("sales s ON s.id = si.sale_id").
		Join("products p ON p.id = si.product_id").
		Where(between("s.sale_date", from, to))
	return r.scalarMoney(ctx, q, "cost of goods sold")
}

func (r *ReportRepo) ExpensesByCategory(ctx context.Context, from, to time.Time) ([]reports.CategoryTotal, error) {
	sql, args, err := r.builder.Select("category", "SUM(amount) AS total").
		From("expenses").
		Where(between("expense_date", from, to)).
		GroupBy("category").
		OrderBy("category").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build expenses by category: %w", err)
	}

	totals := []reports.CategoryTotal{}
	if err := pgxscan.Select(ctx, r.querier(ctx), &totals, sql, args...); err != nil {
		return nil, postgres.MapError(fmt.Errorf("expenses by category: %w", err))
	}
	return totals, nil
}

// OutstandingReceivables sums every customer's current balance.
func (r *ReportRepo) OutstandingReceivables(ctx context.Context) (types.Money, error) {
	q := r.builder.Select("COALESCE(SUM(current_balance), 0)").From("customers")
	return r.scalarMoney(ctx, q, "outstanding receivables")
}

func (r *ReportRepo) lowStockQuery() squirrel.SelectBuilder {
	return r.builder.Select("COUNT(*)").
		From("inventory i").
		Join("products p ON p.id = i.product_id").
		Where(squirrel.Eq{"p.is_active": true}).
		Where("i.quantity <= p.min_stock_level")
}

// LowStockCount counts active products at or below their minimum level.
func (r *ReportRepo) LowStockCount(ctx context.Context) (int, error) {
	sql, args, err := r.lowStockQuery().ToSql()
	if err != nil {
		return 0, fmt.Errorf("build low stock count: %w", err)
	}

	var n int
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, postgres.MapError(fmt.Errorf("low stock count: %w", err))
	}
	return n, nil
}

func (r *ReportRepo) scalarMoney(ctx context.Context, q squirrel.SelectBuilder, what string) (types.Money, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return types.Money{}, fmt.Errorf("build %s: %w", what, err)
	}

	var v types.Money
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&v); err != nil {
		return types.Money{}, postgres.MapError(fmt.Errorf("%s: %w", what, err))
	}
	return v, nil
}

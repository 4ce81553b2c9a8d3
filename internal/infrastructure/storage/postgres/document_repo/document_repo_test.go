package document_repo

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hwshop/internal/core/id"
	"hwshop/internal/domain/documents"
	"hwshop/internal/domain/expense"
)

func TestSaleListQuery(t *testing.T) {
	repo := NewSaleRepo(nil)
	customerID := id.New()
	status := documents.StatusPartial
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	sql, args, err := repo.listQuery(listFilter{
		Search:  "INV-2026",
		PartyID: &customerID,
		Status:  &status,
		From:    &from,
		To:      &to,
	}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM sales WHERE (number ILIKE $1 OR notes ILIKE $2)")
	assert.Contains(t, sql, "AND customer_id = $3 AND payment_status = $4")
	assert.Contains(t, sql, "AND sale_date >= $5 AND sale_date < $6")
	require.Len(t, args, 6)
	assert.Equal(t, "%INV-2026%", args[0])
	assert.Equal(t, customerID.String(), fmt.Sprint(args[2]))
	assert.Equal(t, "partial", args[3])
	assert.Equal(t, from, args[4])
	assert.Equal(t, to, args[5])
}

func TestPurchaseListQuery_SearchColumns(t *testing.T) {
	sql, args, err := NewPurchaseRepo(nil).listQuery(listFilter{Search: "acme"}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM purchases WHERE (number ILIKE $1 OR invoice_number ILIKE $2 OR notes ILIKE $3)")
	assert.Len(t, args, 3)
}

func TestListQuery_NoFilters(t *testing.T) {
	sql, args, err := NewSaleRepo(nil).listQuery(listFilter{}).ToSql()
	require.NoError(t, err)

	assert.NotContains(t, sql, "WHERE")
	assert.Empty(t, args)
}

func TestGetQuery_ForUpdate(t *testing.T) {
	repo := NewSaleRepo(nil)
	saleID := id.New()

	plain, _, err := repo.getQuery(saleID, false).ToSql()
	require.NoError(t, err)
	assert.NotContains(t, plain, "FOR UPDATE")

	locked, args, err := repo.getQuery(saleID, true).ToSql()
	require.NoError(t, err)
	assert.Contains(t, locked, "FROM sales WHERE id = $1 FOR UPDATE")
	require.Len(t, args, 1)
	assert.Equal(t, saleID.String(), fmt.Sprint(args[0]))
}

func TestHeaderColumns_SkipItems(t *testing.T) {
	repo := NewSaleRepo(nil)

	assert.Contains(t, repo.cols, "amount_paid")
	assert.NotContains(t, repo.cols, "items")
	assert.Equal(t, "id", repo.itemCols[0])
	assert.Contains(t, repo.itemCols, "line_total")
}

func TestOpenByCustomerQuery(t *testing.T) {
	customerID := id.New()

	sql, args, err := NewSaleRepo(nil).openByCustomerQuery(customerID).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "WHERE customer_id = $1 AND payment_status IN ($2,$3)")
	assert.Contains(t, sql, "ORDER BY sale_date ASC, number ASC")
	require.Len(t, args, 3)
	assert.Equal(t, "pending", args[1])
	assert.Equal(t, "partial", args[2])
}

func TestExpenseListQuery(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	sql, args, err := NewExpenseRepo(nil).listQuery(expense.ListFilter{Category: " rent ", From: &from}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM expenses WHERE category = $1 AND expense_date >= $2")
	assert.Equal(t, []any{"rent", from}, args)
}

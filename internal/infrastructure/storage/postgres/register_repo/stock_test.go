package register_repo

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hwshop/internal/core/apperror"
	"hwshop/internal/core/id"
	"hwshop/internal/domain/registers/stock"
)

func TestLockQuery_OrderedForUpdate(t *testing.T) {
	a, b := id.New(), id.New()

	sql, args, err := NewStockRepo(nil).lockQuery([]id.ID{a, b}).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT product_id, quantity, last_updated, updated_by FROM inventory"+
			" WHERE product_id IN ($1,$2) ORDER BY product_id FOR UPDATE",
		sql)
	assert.Equal(t, []any{a, b}, args)
}

func TestDeltaQuery_AddsToExistingRow(t *testing.T) {
	pid := id.New()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	delta := decimal.RequireFromString("-2.5")

	sql, args, err := NewStockRepo(nil).deltaQuery(pid, delta, "cashier-1", at).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"INSERT INTO inventory (product_id,quantity,last_updated,updated_by) VALUES ($1,$2,$3,$4)"+
			" ON CONFLICT (product_id) DO UPDATE SET"+
			" quantity = inventory.quantity + EXCLUDED.quantity,"+
			" last_updated = EXCLUDED.last_updated,"+
			" updated_by = EXCLUDED.updated_by",
		sql)
	assert.Equal(t, []any{pid, delta, at, "cashier-1"}, args)
}

func TestDeleteByItemQuery(t *testing.T) {
	repo := NewStockRepo(nil)
	itemID := id.New()

	tests := []struct {
		name   string
		ref    stock.ItemRef
		column string
	}{
		{"sale line", stock.SaleItem(itemID), "sale_item_id"},
		{"purchase line", stock.PurchaseItem(itemID), "purchase_item_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := repo.deleteByItemQuery(tt.ref)
			require.NoError(t, err)

			sql, args, err := q.ToSql()
			require.NoError(t, err)

			assert.True(t, strings.HasPrefix(sql, "DELETE FROM stock_movements WHERE "+tt.column+" = $1 RETURNING "), sql)
			assert.Contains(t, sql, "quantity_change")
			require.Len(t, args, 1)
			assert.Equal(t, itemID.String(), fmt.Sprint(args[0]))
		})
	}

	t.Run("adjustment rejected", func(t *testing.T) {
		_, err := repo.deleteByItemQuery(stock.ItemRef{Type: stock.MovementAdjustment, ItemID: itemID})
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
	})
}

package report_repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	from = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	to   = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
)

func TestSalesTotalsQuery_HalfOpenRange(t *testing.T) {
	sql, args, err := NewReportRepo(nil).salesTotalsQuery(from, to).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT COUNT(*) AS sales_count, COALESCE(SUM(total_amount), 0) AS revenue FROM sales"+
			" WHERE (sale_date >= $1 AND sale_date < $2)",
		sql)
	assert.Equal(t, []any{from, to}, args)
}

func TestSalesByDayQuery(t *testing.T) {
	sql, _, err := NewReportRepo(nil).salesByDayQuery(from, to).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "date_trunc('day', sale_date AT TIME ZONE 'UTC') AS day")
	assert.Contains(t, sql, "GROUP BY day ORDER BY day")
}

func TestPerformanceQuery(t *testing.T) {
	repo := NewReportRepo(nil)

	t.Run("limited", func(t *testing.T) {
		sql, args, err := repo.performanceQuery(from, to, 5).ToSql()
		require.NoError(t, err)

		assert.Contains(t, sql, "JOIN products p ON p.id = si.product_id")
		assert.Contains(t, sql, "ORDER BY revenue DESC, p.sku ASC LIMIT 5")
		assert.Len(t, args, 2)
	})

	t.Run("unlimited", func(t *testing.T) {
		sql, _, err := repo.performanceQuery(from, to, 0).ToSql()
		require.NoError(t, err)
		assert.NotContains(t, sql, "LIMIT")
	})
}

func TestLowStockQuery_ActiveOnly(t *testing.T) {
	sql, args, err := NewReportRepo(nil).lowStockQuery().ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "WHERE p.is_active = $1 AND i.quantity <= p.min_stock_level")
	assert.Equal(t, []any{true}, args)
}

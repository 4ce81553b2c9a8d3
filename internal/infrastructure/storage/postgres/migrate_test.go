package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_Ordered(t *testing.T) {
	migrations, err := Migrations()
	require.NoError(t, err)
	require.Len(t, migrations, 2)

	assert.Equal(t, "0001_catalogs", migrations[0].Version)
	assert.Equal(t, "0002_ledger", migrations[1].Version)
}

func TestMigrations_LedgerSchema(t *testing.T) {
	migrations, err := Migrations()
	require.NoError(t, err)

	var all string
	for _, m := range migrations {
		all += m.SQL
	}

	for _, table := range []string{
		"products", "suppliers", "customers", "doc_sequences", "sales", "sale_items",
		"purchases", "purchase_items", "inventory", "stock_movements", "customer_payments", "expenses",
	} {
		assert.Contains(t, all, "CREATE TABLE "+table+" (")
	}

	assert.Contains(t, all, "quantity_change   NUMERIC(14,3)")
	assert.Contains(t, all, "CONSTRAINT stock_movements_source CHECK")
	assert.Contains(t, all, "CONSTRAINT products_sku_key UNIQUE (sku)")
}

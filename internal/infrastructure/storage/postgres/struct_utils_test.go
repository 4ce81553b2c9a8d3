package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hwshop/internal/core/types"
	"hwshop/internal/domain/catalogs/customer"
	"hwshop/internal/domain/registers/stock"
)

func TestExtractDBColumns_EmbeddedCatalog(t *testing.T) {
	cols := ExtractDBColumns[customer.Customer]()

	assert.Equal(t, []string{
		"id", "is_active", "created_at", "updated_at",
		"name", "phone", "email", "address", "credit_limit", "current_balance",
	}, cols)
}

func TestExtractDBColumns_SkipsUntagged(t *testing.T) {
	type row struct {
		ID      string `db:"id"`
		Derived string `db:"-"`
		Plain   string
	}
	assert.Equal(t, []string{"id"}, ExtractDBColumns[row]())
}

func TestStructToMap(t *testing.T) {
	c := customer.NewCustomer("Acme Builders")
	c.CreditLimit = types.MustMoney("1500")

	m := StructToMap(c)

	assert.Equal(t, c.ID, m["id"])
	assert.Equal(t, true, m["is_active"])
	assert.Equal(t, "Acme Builders", m["name"])
	assert.True(t, types.MustMoney("1500").Equal(m["credit_limit"].(types.Money)))
	assert.Len(t, m, 10)
}

func TestStructToMap_NilPointers(t *testing.T) {
	reason := stock.ReasonDamaged
	m := StructToMap(&stock.Movement{AdjustmentReason: &reason})

	require.Contains(t, m, "sale_item_id")
	assert.Nil(t, m["sale_item_id"])
	assert.Equal(t, &reason, m["adjustment_reason"])

	var nilCustomer *customer.Customer
	assert.Nil(t, StructToMap(nilCustomer))
}

func TestWithout(t *testing.T) {
	m := map[string]any{"id": 1, "current_balance": 2, "name": 3}
	out := Without(m, "current_balance", "id")

	assert.Equal(t, map[string]any{"name": 3}, out)
	assert.Len(t, m, 3)
}

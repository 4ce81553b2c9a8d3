package catalog_repo

import (
	"fmt"
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hwshop/internal/core/apperror"
	"hwshop/internal/core/id"
	"hwshop/internal/core/types"
	"hwshop/internal/domain"
	"hwshop/internal/domain/catalogs/customer"
)

func testCustomerRepo() *CustomerRepo {
	return NewCustomerRepo(nil)
}

func TestListQuery_Filters(t *testing.T) {
	repo := NewSupplierRepo(nil)
	active := true
	a, b := id.New(), id.New()

	sql, args, err := repo.listQuery(domain.ListFilter{
		Search: " bolt ",
		IDs:    []id.ID{a, b},
		Active: &active,
	}).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id, is_active, created_at, updated_at, name, contact_person, phone, email, address FROM suppliers"+
			" WHERE (name ILIKE $1 OR contact_person ILIKE $2 OR phone ILIKE $3 OR email ILIKE $4)"+
			" AND id IN ($5,$6) AND is_active = $7",
		sql)
	assert.Equal(t, []any{"%bolt%", "%bolt%", "%bolt%", "%bolt%", a, b, true}, args)
}

func TestListQuery_NoFilters(t *testing.T) {
	sql, args, err := NewProductRepo(nil).listQuery(domain.ListFilter{}).ToSql()
	require.NoError(t, err)

	assert.NotContains(t, sql, "WHERE")
	assert.Empty(t, args)
}

func TestParseOrderBy(t *testing.T) {
	repo := NewProductRepo(nil)

	tests := []struct {
		in   string
		want string
	}{
		{"", "name ASC"},
		{"sku", "sku ASC"},
		{"-retail_price", "retail_price DESC"},
		{"+created_at", "created_at ASC"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := repo.parseOrderBy(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := repo.parseOrderBy("name; DROP TABLE products")
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestUpdateQuery_KeepsBalanceAndCreatedAt(t *testing.T) {
	repo := testCustomerRepo()
	c := customer.NewCustomer("Acme")
	c.CurrentBalance = types.MustMoney("999")

	sql, _, err := repo.updateQuery(c).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "UPDATE customers SET ")
	assert.Contains(t, sql, "credit_limit = ")
	assert.NotContains(t, sql, "current_balance")
	assert.NotContains(t, sql, "created_at")
	assert.NotContains(t, sql, "id = $1,")
	assert.Regexp(t, `WHERE id = \$\d+$`, sql)
}

func TestGetForUpdate_SQL(t *testing.T) {
	repo := NewSupplierRepo(nil)
	entityID := id.New()

	sql, args, err := repo.baseSelect().Where(squirrel.Eq{"id": entityID}).Suffix("FOR UPDATE").ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id, is_active, created_at, updated_at, name, contact_person, phone, email, address FROM suppliers WHERE id = $1 FOR UPDATE",
		sql)
	require.Len(t, args, 1)
	assert.Equal(t, entityID.String(), fmt.Sprint(args[0]))
}

func TestProductReferencedQuery(t *testing.T) {
	productID := id.New()

	sql, args, err := NewProductRepo(nil).referencedQuery(productID).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT EXISTS (SELECT 1 FROM stock_movements WHERE product_id = $1)"+
			" OR EXISTS (SELECT 1 FROM sale_items WHERE product_id = $2)"+
			" OR EXISTS (SELECT 1 FROM purchase_items WHERE product_id = $3)",
		sql)
	assert.Equal(t, []any{productID, productID, productID}, args)
}

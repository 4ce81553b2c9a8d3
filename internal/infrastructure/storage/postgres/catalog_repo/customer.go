package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"hwshop/internal/core/apperror"
	"hwshop/internal/core/id"
	"hwshop/internal/core/types"
	"hwshop/internal/domain/catalogs/customer"
	"hwshop/internal/infrastructure/storage/postgres"
)

const customersTable = "customers"

// CustomerRepo implements customer.Repository.
// current_balance is owned by the settlement engine: Create stores zero and
// Update never touches it.
type CustomerRepo struct {
	*BaseCatalogRepo[*customer.Customer]
}

var _ customer.Repository = (*CustomerRepo)(nil)

// NewCustomerRepo creates a new customer repository.
func NewCustomerRepo(txManager *postgres.TxManager) *CustomerRepo {
	return &CustomerRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(txManager, BaseCatalogConfig[*customer.Customer]{
			TableName:     customersTable,
			EntityName:    "customer",
			SelectCols:    postgres.ExtractDBColumns[customer.Customer](),
			SearchCols:    []string{"name", "phone", "email"},
			ImmutableCols: []string{"current_balance"},
			New:           func() *customer.Customer { return &customer.Customer{} },
		}),
	}
}

// Create inserts a customer with a zero balance.
func (r *CustomerRepo) Create(ctx context.Context, c *customer.Customer) error {
	row := postgres.StructToMap(c)
	row["current_balance"] = decimal.Zero
	if err := r.Insert(ctx, row); err != nil {
		return err
	}
	c.CurrentBalance = decimal.Zero
	return nil
}

// SetBalance stores a recomputed balance.
func (r *CustomerRepo) SetBalance(ctx context.Context, customerID id.ID, balance types.Money) error {
	sql, args, err := r.builder.Update(customersTable).
		Set("current_balance", balance).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": customerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set balance: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(fmt.Errorf("set balance: %w", err))
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("customer", customerID.String())
	}
	return nil
}

// ListIDs returns every customer id in id order.
func (r *CustomerRepo) ListIDs(ctx context.Context) ([]id.ID, error) {
	sql, args, err := r.builder.Select("id").From(customersTable).OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list ids: %w", err)
	}

	var ids []id.ID
	if err := pgxscan.Select(ctx, r.Querier(ctx), &ids, sql, args...); err != nil {
		return nil, postgres.MapError(fmt.Errorf("list customer ids: %w", err))
	}
	return ids, nil
}

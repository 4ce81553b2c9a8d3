package document_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"hwshop/internal/core/apperror"
	"hwshop/internal/core/id"
	"hwshop/internal/domain"
	"hwshop/internal/domain/expense"
	"hwshop/internal/infrastructure/storage/postgres"
)

const expensesTable = "expenses"

// ExpenseRepo implements expense.Repository.
type ExpenseRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
	cols      []string
}

var _ expense.Repository = (*ExpenseRepo)(nil)

// NewExpenseRepo creates a new expense repository.
func NewExpenseRepo(txManager *postgres.TxManager) *ExpenseRepo {
	return &ExpenseRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		cols:      postgres.ExtractDBColumns[expense.Expense](),
	}
}

func (r *ExpenseRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

func (r *ExpenseRepo) Create(ctx context.Context, e *expense.Expense) error {
	sql, args, err := r.builder.Insert(expensesTable).SetMap(postgres.StructToMap(e)).ToSql()
	if err != nil {
		return fmt.Errorf("build insert expense: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(fmt.Errorf("insert expense: %w", err))
	}
	return nil
}

func (r *ExpenseRepo) Update(ctx context.Context, e *expense.Expense) error {
	sql, args, err := r.builder.Update(expensesTable).
		SetMap(postgres.Without(postgres.StructToMap(e), "id", "created_at", "created_by")).
		Where(squirrel.Eq{"id": e.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update expense: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(fmt.Errorf("update expense: %w", err))
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("expense", e.ID.String())
	}
	return nil
}

func (r *ExpenseRepo) GetByID(ctx context.Context, expenseID id.ID) (*expense.Expense, error) {
	sql, args, err := r.builder.Select(r.cols...).
		From(expensesTable).
		Where(squirrel.Eq{"id": expenseID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get expense: %w", err)
	}

	var e expense.Expense
	if err := pgxscan.Get(ctx, r.querier(ctx), &e, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("expense", expenseID.String())
		}
		return nil, postgres.MapError(fmt.Errorf("get expense: %w", err))
	}
	return &e, nil
}

func (r *ExpenseRepo) Delete(ctx context.Context, expenseID id.ID) error {
	sql, args, err := r.builder.Delete(expensesTable).Where(squirrel.Eq{"id": expenseID}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete expense: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(fmt.Errorf("delete expense: %w", err))
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("expense", expenseID.String())
	}
	return nil
}

func (r *ExpenseRepo) listQuery(filter expense.ListFilter) squirrel.SelectBuilder {
	q := r.builder.Select(r.cols...).From(expensesTable)
	if c := strings.TrimSpace(filter.Category); c != "" {
		q = q.Where(squirrel.Eq{"category": c})
	}
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"expense_date": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.Lt{"expense_date": *filter.To})
	}
	return q
}

// List returns expenses, newest first.
func (r *ExpenseRepo) List(ctx context.Context, filter expense.ListFilter) (domain.ListResult[*expense.Expense], error) {
	return postgres.Paginate[*expense.Expense](ctx, r.builder, r.querier(ctx), r.listQuery(filter),
		filter.Limit, filter.Offset, "expense_date DESC", "id DESC")
}

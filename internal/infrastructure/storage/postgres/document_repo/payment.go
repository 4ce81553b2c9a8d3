package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"hwshop/internal/core/apperror"
	"hwshop/internal/core/id"
	"hwshop/internal/core/types"
	"hwshop/internal/domain"
	"hwshop/internal/domain/settlement"
	"hwshop/internal/infrastructure/storage/postgres"
)

const paymentsTable = "customer_payments"

// PaymentRepo implements settlement.PaymentRepository.
type PaymentRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
	cols      []string
}

var _ settlement.PaymentRepository = (*PaymentRepo)(nil)

// NewPaymentRepo creates a new customer payment repository.
func NewPaymentRepo(txManager *postgres.TxManager) *PaymentRepo {
	return &PaymentRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		cols:      postgres.ExtractDBColumns[settlement.Payment](),
	}
}

func (r *PaymentRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

func (r *PaymentRepo) Insert(ctx context.Context, p *settlement.Payment) error {
	sql, args, err := r.builder.Insert(paymentsTable).SetMap(postgres.StructToMap(p)).ToSql()
	if err != nil {
		return fmt.Errorf("build insert payment: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		mapped := postgres.MapError(fmt.Errorf("insert payment: %w", err))
		if apperror.HasCode(mapped, apperror.CodeEntityReferenced) {
			return apperror.NewNotFound("sale", p.SaleID.String()).WithCause(err)
		}
		return mapped
	}
	return nil
}

func (r *PaymentRepo) GetByID(ctx context.Context, paymentID id.ID) (*settlement.Payment, error) {
	sql, args, err := r.builder.Select(r.cols...).
		From(paymentsTable).
		Where(squirrel.Eq{"id": paymentID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get payment: %w", err)
	}

	var p settlement.Payment
	if err := pgxscan.Get(ctx, r.querier(ctx), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("payment", paymentID.String())
		}
		return nil, postgres.MapError(fmt.Errorf("get payment: %w", err))
	}
	return &p, nil
}

func (r *PaymentRepo) Delete(ctx context.Context, paymentID id.ID) error {
	sql, args, err := r.builder.Delete(paymentsTable).Where(squirrel.Eq{"id": paymentID}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete payment: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(fmt.Errorf("delete payment: %w", err))
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("payment", paymentID.String())
	}
	return nil
}

// DeleteBySale removes every payment of a sale and returns the count.
func (r *PaymentRepo) DeleteBySale(ctx context.Context, saleID id.ID) (int64, error) {
	sql, args, err := r.builder.Delete(paymentsTable).Where(squirrel.Eq{"sale_id": saleID}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete payments: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, postgres.MapError(fmt.Errorf("delete payments: %w", err))
	}
	return result.RowsAffected(), nil
}

// SumForSale returns the total paid against a sale.
func (r *PaymentRepo) SumForSale(ctx context.Context, saleID id.ID) (types.Money, error) {
	sql, args, err := r.builder.Select("COALESCE(SUM(amount), 0)").
		From(paymentsTable).
		Where(squirrel.Eq{"sale_id": saleID}).
		ToSql()
	if err != nil {
		return types.Money{}, fmt.Errorf("build sum payments: %w", err)
	}

	var sum types.Money
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&sum); err != nil {
		return types.Money{}, postgres.MapError(fmt.Errorf("sum payments: %w", err))
	}
	return sum, nil
}

// ListBySale returns a sale's payments, oldest first.
func (r *PaymentRepo) ListBySale(ctx context.Context, saleID id.ID) ([]settlement.Payment, error) {
	sql, args, err := r.builder.Select(r.cols...).
		From(paymentsTable).
		Where(squirrel.Eq{"sale_id": saleID}).
		OrderBy("payment_date ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list payments: %w", err)
	}

	payments := []settlement.Payment{}
	if err := pgxscan.Select(ctx, r.querier(ctx), &payments, sql, args...); err != nil {
		return nil, postgres.MapError(fmt.Errorf("list payments: %w", err))
	}
	return payments, nil
}

// ListByCustomer returns a customer's payments, newest first.
func (r *PaymentRepo) ListByCustomer(ctx context.Context, customerID id.ID, limit, offset int) (domain.ListResult[settlement.Payment], error) {
	q := r.builder.Select(r.cols...).
		From(paymentsTable).
		Where(squirrel.Eq{"customer_id": customerID})
	return postgres.Paginate[settlement.Payment](ctx, r.builder, r.querier(ctx), q,
		limit, offset, "payment_date DESC", "id DESC")
}

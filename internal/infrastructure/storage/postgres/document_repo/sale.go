package document_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"hwshop/internal/core/id"
	"hwshop/internal/core/types"
	"hwshop/internal/domain"
	"hwshop/internal/domain/documents"
	"hwshop/internal/domain/documents/sale"
	"hwshop/internal/infrastructure/storage/postgres"
)

// SaleRepo implements sale.Repository.
type SaleRepo struct {
	*BaseDocumentRepo[sale.Sale, sale.SaleItem]
}

var _ sale.Repository = (*SaleRepo)(nil)

// NewSaleRepo creates a new sale repository.
func NewSaleRepo(txManager *postgres.TxManager) *SaleRepo {
	return &SaleRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[sale.Sale, sale.SaleItem](txManager, DocumentTable{
			Table:       "sales",
			ItemsTable:  "sale_items",
			ForeignKey:  "sale_id",
			EntityName:  "sale",
			DateColumn:  "sale_date",
			PartyColumn: "customer_id",
			SearchCols:  []string{"number", "notes"},
		}),
	}
}

func (r *SaleRepo) Create(ctx context.Context, s *sale.Sale) error {
	return r.createHeader(ctx, s)
}

func (r *SaleRepo) InsertItems(ctx context.Context, items []sale.SaleItem) error {
	return r.insertItems(ctx, items)
}

func (r *SaleRepo) GetByID(ctx context.Context, saleID id.ID) (*sale.Sale, error) {
	return r.get(ctx, saleID, false)
}

func (r *SaleRepo) GetForUpdate(ctx context.Context, saleID id.ID) (*sale.Sale, error) {
	return r.get(ctx, saleID, true)
}

func (r *SaleRepo) GetItems(ctx context.Context, saleID id.ID) ([]sale.SaleItem, error) {
	return r.items(ctx, saleID)
}

func (r *SaleRepo) Delete(ctx context.Context, saleID id.ID) error {
	return r.delete(ctx, saleID)
}

func (r *SaleRepo) List(ctx context.Context, filter sale.ListFilter) (domain.ListResult[*sale.Sale], error) {
	return r.list(ctx, listFilter{
		Search:  filter.Search,
		PartyID: filter.CustomerID,
		Status:  filter.Status,
		From:    filter.From,
		To:      filter.To,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	})
}

// UpdatePaymentState stores the derived amount_paid and payment_status.
func (r *SaleRepo) UpdatePaymentState(ctx context.Context, saleID id.ID, amountPaid types.Money, status documents.PaymentStatus, at time.Time) error {
	return r.setPaymentFields(ctx, saleID, map[string]any{
		"amount_paid":    amountPaid,
		"payment_status": string(status),
	}, at)
}

func (r *SaleRepo) openByCustomerQuery(customerID id.ID) squirrel.SelectBuilder {
	return r.builder.Select(r.cols...).
		From(r.table.Table).
		Where(squirrel.Eq{
			"customer_id":    customerID,
			"payment_status": []string{string(documents.StatusPending), string(documents.StatusPartial)},
		}).
		OrderBy("sale_date ASC", "number ASC")
}

// ListOpenByCustomer returns the customer's pending and partial sales, oldest first.
func (r *SaleRepo) ListOpenByCustomer(ctx context.Context, customerID id.ID) ([]*sale.Sale, error) {
	sql, args, err := r.openByCustomerQuery(customerID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build open sales: %w", err)
	}

	sales := []*sale.Sale{}
	if err := pgxscan.Select(ctx, r.querier(ctx), &sales, sql, args...); err != nil {
		return nil, postgres.MapError(fmt.Errorf("list open sales: %w", err))
	}
	return sales, nil
}

// ListCreditSaleIDs returns every sale with a customer and a non-cash method.
func (r *SaleRepo) ListCreditSaleIDs(ctx context.Context) ([]id.ID, error) {
	sql, args, err := r.builder.Select("id").
		From(r.table.Table).
		Where(squirrel.NotEq{"customer_id": nil}).
		Where(squirrel.NotEq{"payment_method": string(sale.MethodCash)}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build credit sale ids: %w", err)
	}

	var ids []id.ID
	if err := pgxscan.Select(ctx, r.querier(ctx), &ids, sql, args...); err != nil {
		return nil, postgres.MapError(fmt.Errorf("list credit sale ids: %w", err))
	}
	return ids, nil
}

// Package document_repo provides PostgreSQL implementations for sales,
// purchases, customer payments and expenses.
package document_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"hwshop/internal/core/apperror"
	"hwshop/internal/core/id"
	"hwshop/internal/domain"
	"hwshop/internal/domain/documents"
	"hwshop/internal/infrastructure/storage/postgres"
)

// DocumentTable describes a header table and its line table.
type DocumentTable struct {
	Table      string
	ItemsTable string
	// ForeignKey is the line column pointing at the header.
	ForeignKey string
	EntityName string
	DateColumn string
	// PartyColumn is customer_id or supplier_id.
	PartyColumn string
	SearchCols  []string
}

// BaseDocumentRepo provides the operations shared by sale and purchase
// documents. H is the header struct and I the line struct.
type BaseDocumentRepo[H any, I any] struct {
	txManager *postgres.TxManager
	batch     *postgres.BatchExecutor
	builder   squirrel.StatementBuilderType
	table     DocumentTable
	cols      []string
	itemCols  []string
}

// NewBaseDocumentRepo creates a document repository over table.
func NewBaseDocumentRepo[H any, I any](txManager *postgres.TxManager, table DocumentTable) *BaseDocumentRepo[H, I] {
	return &BaseDocumentRepo[H, I]{
		txManager: txManager,
		batch:     postgres.NewBatchExecutor(txManager),
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		table:     table,
		cols:      postgres.ExtractDBColumns[H](),
		itemCols:  postgres.ExtractDBColumns[I](),
	}
}

func (r *BaseDocumentRepo[H, I]) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// createHeader inserts the header row. Items are tagged db:"-" and skipped.
func (r *BaseDocumentRepo[H, I]) createHeader(ctx context.Context, h *H) error {
	sql, args, err := r.builder.Insert(r.table.Table).SetMap(postgres.StructToMap(h)).ToSql()
	if err != nil {
		return fmt.Errorf("build insert %s: %w", r.table.Table, err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		mapped := postgres.MapError(fmt.Errorf("insert %s: %w", r.table.Table, err))
		if apperror.HasCode(mapped, apperror.CodeEntityReferenced) {
			return apperror.NewNotFound(strings.TrimSuffix(r.table.PartyColumn, "_id"), "").WithCause(err)
		}
		return mapped
	}
	return nil
}

// insertItems writes all lines in one batch round trip.
func (r *BaseDocumentRepo[H, I]) insertItems(ctx context.Context, items []I) error {
	queries := make([]postgres.BatchQuery, 0, len(items))
	for i := range items {
		q, err := postgres.QueueInsert(r.builder, r.table.ItemsTable, postgres.StructToMap(&items[i]))
		if err != nil {
			return err
		}
		queries = append(queries, q)
	}
	if err := r.batch.ExecuteBatch(ctx, queries); err != nil {
		if apperror.HasCode(err, apperror.CodeEntityReferenced) {
			return apperror.NewNotFound("product", "").WithCause(err)
		}
		return err
	}
	return nil
}

func (r *BaseDocumentRepo[H, I]) getQuery(docID id.ID, forUpdate bool) squirrel.SelectBuilder {
	q := r.builder.Select(r.cols...).From(r.table.Table).Where(squirrel.Eq{"id": docID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}
	return q
}

func (r *BaseDocumentRepo[H, I]) get(ctx context.Context, docID id.ID, forUpdate bool) (*H, error) {
	sql, args, err := r.getQuery(docID, forUpdate).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get %s: %w", r.table.Table, err)
	}

	h := new(H)
	if err := pgxscan.Get(ctx, r.querier(ctx), h, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(r.table.EntityName, docID.String())
		}
		return nil, postgres.MapError(fmt.Errorf("get %s: %w", r.table.Table, err))
	}
	return h, nil
}

func (r *BaseDocumentRepo[H, I]) items(ctx context.Context, docID id.ID) ([]I, error) {
	sql, args, err := r.builder.Select(r.itemCols...).
		From(r.table.ItemsTable).
		Where(squirrel.Eq{r.table.ForeignKey: docID}).
		OrderBy("line_no").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get items: %w", err)
	}

	items := []I{}
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, postgres.MapError(fmt.Errorf("get %s: %w", r.table.ItemsTable, err))
	}
	return items, nil
}

// delete removes the header; lines go with it through ON DELETE CASCADE.
// Movements or payments still pointing at the document block the delete.
func (r *BaseDocumentRepo[H, I]) delete(ctx context.Context, docID id.ID) error {
	sql, args, err := r.builder.Delete(r.table.Table).Where(squirrel.Eq{"id": docID}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete %s: %w", r.table.Table, err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		mapped := postgres.MapError(fmt.Errorf("delete %s: %w", r.table.Table, err))
		if apperror.HasCode(mapped, apperror.CodeEntityReferenced) {
			return apperror.NewReferenced(r.table.EntityName, docID.String()).WithCause(err)
		}
		return mapped
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.table.EntityName, docID.String())
	}
	return nil
}

// listFilter is the filter shape shared by sale and purchase listings.
type listFilter struct {
	Search  string
	PartyID *id.ID
	Status  *documents.PaymentStatus
	From    *time.Time
	To      *time.Time
	Limit   int
	Offset  int
}

func (r *BaseDocumentRepo[H, I]) listQuery(f listFilter) squirrel.SelectBuilder {
	q := r.builder.Select(r.cols...).From(r.table.Table)
	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := "%" + s + "%"
		or := make(squirrel.Or, 0, len(r.table.SearchCols))
		for _, col := range r.table.SearchCols {
			or = append(or, squirrel.ILike{col: pattern})
		}
		q = q.Where(or)
	}
	if f.PartyID != nil {
		q = q.Where(squirrel.Eq{r.table.PartyColumn: *f.PartyID})
	}
	if f.Status != nil {
		q = q.Where(squirrel.Eq{"payment_status": string(*f.Status)})
	}
	if f.From != nil {
		q = q.Where(squirrel.GtOrEq{r.table.DateColumn: *f.From})
	}
	if f.To != nil {
		q = q.Where(squirrel.Lt{r.table.DateColumn: *f.To})
	}
	return q
}

// list returns headers, newest first.
func (r *BaseDocumentRepo[H, I]) list(ctx context.Context, f listFilter) (domain.ListResult[*H], error) {
	return postgres.Paginate[*H](ctx, r.builder, r.querier(ctx), r.listQuery(f),
		f.Limit, f.Offset, r.table.DateColumn+" DESC", "number DESC")
}

func (r *BaseDocumentRepo[H, I]) setPaymentFields(ctx context.Context, docID id.ID, fields map[string]any, at time.Time) error {
	fields["updated_at"] = at
	sql, args, err := r.builder.Update(r.table.Table).
		SetMap(fields).
		Where(squirrel.Eq{"id": docID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update %s: %w", r.table.Table, err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(fmt.Errorf("update %s: %w", r.table.Table, err))
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.table.EntityName, docID.String())
	}
	return nil
}

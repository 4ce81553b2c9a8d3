// Package register_repo provides the PostgreSQL stock ledger: movements and
// inventory snapshots.
package register_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"hwshop/internal/core/apperror"
	"hwshop/internal/core/id"
	"hwshop/internal/core/types"
	"hwshop/internal/domain"
	"hwshop/internal/domain/registers/stock"
	"hwshop/internal/infrastructure/storage/postgres"
)

const (
	movementsTable = "stock_movements"
	inventoryTable = "inventory"
)

var inventoryViewCols = []string{
	"i.product_id", "i.quantity", "i.last_updated", "i.updated_by",
	"p.sku", "p.name", "p.unit", "p.is_active", "p.min_stock_level", "p.reorder_quantity",
}

// StockRepo implements stock.Repository.
type StockRepo struct {
	txManager    *postgres.TxManager
	builder      squirrel.StatementBuilderType
	movementCols []string
}

var _ stock.Repository = (*StockRepo)(nil)

// NewStockRepo creates a new stock ledger repository.
func NewStockRepo(txManager *postgres.TxManager) *StockRepo {
	return &StockRepo{
		txManager:    txManager,
		builder:      squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		movementCols: postgres.ExtractDBColumns[stock.Movement](),
	}
}

func (r *StockRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// EnsureInventory creates a zero-quantity row if absent.
func (r *StockRepo) EnsureInventory(ctx context.Context, productID id.ID) error {
	sql, args, err := r.builder.Insert(inventoryTable).
		Columns("product_id", "quantity", "last_updated").
		Values(productID, types.Quantity{}, squirrel.Expr("now()")).
		Suffix("ON CONFLICT (product_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build ensure inventory: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		mapped := postgres.MapError(fmt.Errorf("ensure inventory: %w", err))
		if apperror.HasCode(mapped, apperror.CodeEntityReferenced) {
			return apperror.NewNotFound("product", productID.String()).WithCause(err)
		}
		return mapped
	}
	return nil
}

func (r *StockRepo) lockQuery(productIDs []id.ID) squirrel.SelectBuilder {
	return r.builder.Select("product_id", "quantity", "last_updated", "updated_by").
		From(inventoryTable).
		Where(squirrel.Eq{"product_id": productIDs}).
		OrderBy("product_id").
		Suffix("FOR UPDATE")
}

// LockInventory locks the rows of productIDs in ascending id order.
func (r *StockRepo) LockInventory(ctx context.Context, productIDs []id.ID) (map[id.ID]stock.Inventory, error) {
	out := make(map[id.ID]stock.Inventory, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}

	sql, args, err := r.lockQuery(productIDs).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lock inventory: %w", err)
	}

	var rows []stock.Inventory
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, sql, args...); err != nil {
		return nil, postgres.MapError(fmt.Errorf("lock inventory: %w", err))
	}
	for _, row := range rows {
		out[row.ProductID] = row
	}
	return out, nil
}

// InsertMovement appends a movement.
func (r *StockRepo) InsertMovement(ctx context.Context, m *stock.Movement) error {
	sql, args, err := r.builder.Insert(movementsTable).SetMap(postgres.StructToMap(m)).ToSql()
	if err != nil {
		return fmt.Errorf("build insert movement: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		mapped := postgres.MapError(fmt.Errorf("insert movement: %w", err))
		if apperror.HasCode(mapped, apperror.CodeEntityReferenced) {
			return apperror.NewNotFound("movement source", m.ProductID.String()).WithCause(err)
		}
		return mapped
	}
	return nil
}

func (r *StockRepo) deltaQuery(productID id.ID, delta types.Quantity, actorID string, at time.Time) squirrel.InsertBuilder {
	return r.builder.Insert(inventoryTable).
		Columns("product_id", "quantity", "last_updated", "updated_by").
		Values(productID, delta, at, actorID).
		Suffix("ON CONFLICT (product_id) DO UPDATE SET" +
			" quantity = inventory.quantity + EXCLUDED.quantity," +
			" last_updated = EXCLUDED.last_updated," +
			" updated_by = EXCLUDED.updated_by")
}

// ApplyInventoryDelta adds delta to the snapshot, creating the row if absent.
func (r *StockRepo) ApplyInventoryDelta(ctx context.Context, productID id.ID, delta types.Quantity, actorID string, at time.Time) error {
	sql, args, err := r.deltaQuery(productID, delta, actorID, at).ToSql()
	if err != nil {
		return fmt.Errorf("build apply delta: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(fmt.Errorf("apply inventory delta: %w", err))
	}
	return nil
}

func (r *StockRepo) deleteByItemQuery(ref stock.ItemRef) (squirrel.DeleteBuilder, error) {
	var col string
	switch ref.Type {
	case stock.MovementSale:
		col = "sale_item_id"
	case stock.MovementPurchase:
		col = "purchase_item_id"
	default:
		return squirrel.DeleteBuilder{}, apperror.NewValidation("unknown document line type").
			WithDetail("type", string(ref.Type))
	}
	return r.builder.Delete(movementsTable).
		Where(squirrel.Eq{col: ref.ItemID}).
		Suffix("RETURNING " + strings.Join(r.movementCols, ", ")), nil
}

// DeleteMovementsByItem removes the movements of a document line and returns them.
func (r *StockRepo) DeleteMovementsByItem(ctx context.Context, ref stock.ItemRef) ([]stock.Movement, error) {
	q, err := r.deleteByItemQuery(ref)
	if err != nil {
		return nil, err
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build delete movements: %w", err)
	}

	var deleted []stock.Movement
	if err := pgxscan.Select(ctx, r.querier(ctx), &deleted, sql, args...); err != nil {
		return nil, postgres.MapError(fmt.Errorf("delete movements: %w", err))
	}
	return deleted, nil
}

func (r *StockRepo) viewSelect() squirrel.SelectBuilder {
	return r.builder.Select(inventoryViewCols...).
		From(inventoryTable + " i").
		Join("products p ON p.id = i.product_id")
}

// GetInventory returns the snapshot of one product.
func (r *StockRepo) GetInventory(ctx context.Context, productID id.ID) (stock.InventoryView, error) {
	sql, args, err := r.viewSelect().Where(squirrel.Eq{"i.product_id": productID}).ToSql()
	if err != nil {
		return stock.InventoryView{}, fmt.Errorf("build get inventory: %w", err)
	}

	var view stock.InventoryView
	if err := pgxscan.Get(ctx, r.querier(ctx), &view, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return stock.InventoryView{}, apperror.NewNotFound("inventory", productID.String())
		}
		return stock.InventoryView{}, postgres.MapError(fmt.Errorf("get inventory: %w", err))
	}
	return view, nil
}

func (r *StockRepo) inventoryListQuery(filter stock.InventoryFilter) squirrel.SelectBuilder {
	q := r.viewSelect()
	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := "%" + s + "%"
		q = q.Where(squirrel.Or{squirrel.ILike{"p.sku": pattern}, squirrel.ILike{"p.name": pattern}})
	}
	if filter.ActiveOnly {
		q = q.Where(squirrel.Eq{"p.is_active": true})
	}
	if filter.LowStockOnly {
		q = q.Where("i.quantity <= p.min_stock_level")
	}
	return q
}

// ListInventory lists snapshots ordered by product name.
func (r *StockRepo) ListInventory(ctx context.Context, filter stock.InventoryFilter) (domain.ListResult[stock.InventoryView], error) {
	q := r.inventoryListQuery(filter)
	return postgres.Paginate[stock.InventoryView](ctx, r.builder, r.querier(ctx),
		q, filter.Limit, filter.Offset, "p.name ASC", "i.product_id ASC")
}

func (r *StockRepo) movementListQuery(filter stock.MovementFilter) squirrel.SelectBuilder {
	q := r.builder.Select(r.movementCols...).From(movementsTable)
	if filter.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *filter.ProductID})
	}
	if filter.Type != nil {
		q = q.Where(squirrel.Eq{"movement_type": string(*filter.Type)})
	}
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.Lt{"created_at": *filter.To})
	}
	return q
}

// ListMovements returns movement history, newest first.
func (r *StockRepo) ListMovements(ctx context.Context, filter stock.MovementFilter) (domain.ListResult[stock.Movement], error) {
	q := r.movementListQuery(filter)
	return postgres.Paginate[stock.Movement](ctx, r.builder, r.querier(ctx),
		q, filter.Limit, filter.Offset, "created_at DESC", "id DESC")
}

// SumMovements returns the ledger total of one product.
func (r *StockRepo) SumMovements(ctx context.Context, productID id.ID) (types.Quantity, error) {
	sql, args, err := r.builder.Select("COALESCE(SUM(quantity_change), 0)").
		From(movementsTable).
		Where(squirrel.Eq{"product_id": productID}).
		ToSql()
	if err != nil {
		return types.Quantity{}, fmt.Errorf("build sum movements: %w", err)
	}

	var sum types.Quantity
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&sum); err != nil {
		return types.Quantity{}, postgres.MapError(fmt.Errorf("sum movements: %w", err))
	}
	return sum, nil
}

// rebuildSQL resets every snapshot to its movement sum. Rows already equal to
// the sum are left untouched so the affected-row count reports real drift.
const rebuildSQL = `
WITH sums AS (
	SELECT p.id AS product_id, COALESCE(SUM(m.quantity_change), 0) AS quantity
	FROM products p
	LEFT JOIN stock_movements m ON m.product_id = p.id
	GROUP BY p.id
)
INSERT INTO inventory (product_id, quantity, last_updated, updated_by)
SELECT product_id, quantity, $1, $2 FROM sums
ON CONFLICT (product_id) DO UPDATE SET
	quantity = EXCLUDED.quantity,
	last_updated = EXCLUDED.last_updated,
	updated_by = EXCLUDED.updated_by
WHERE inventory.quantity IS DISTINCT FROM EXCLUDED.quantity`

// RebuildInventory recomputes every snapshot from movement sums.
// Blocks concurrent ledger writers for the duration of the transaction.
func (r *StockRepo) RebuildInventory(ctx context.Context, actorID string, at time.Time) (int64, error) {
	q := r.querier(ctx)
	if _, err := q.Exec(ctx, "LOCK TABLE stock_movements, inventory IN SHARE ROW EXCLUSIVE MODE"); err != nil {
		return 0, postgres.MapError(fmt.Errorf("lock ledger: %w", err))
	}

	tag, err := q.Exec(ctx, rebuildSQL, at, actorID)
	if err != nil {
		return 0, postgres.MapError(fmt.Errorf("rebuild inventory: %w", err))
	}
	return tag.RowsAffected(), nil
}

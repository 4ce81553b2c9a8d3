// Package catalog_repo provides PostgreSQL implementations for catalog repositories.
package catalog_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"hwshop/internal/core/apperror"
	"hwshop/internal/core/id"
	"hwshop/internal/domain"
	"hwshop/internal/infrastructure/storage/postgres"
)

// BaseCatalogRepo implements domain.CatalogRepository for one table.
// T is a pointer to the catalog struct, e.g. *product.Product.
type BaseCatalogRepo[T domain.CatalogEntity] struct {
	txManager  *postgres.TxManager
	tableName  string
	entityName string
	selectCols []string
	searchCols []string

	// immutableCols are never written by Update.
	immutableCols []string

	newFn   func() T
	builder squirrel.StatementBuilderType
}

// BaseCatalogConfig describes one catalog table.
type BaseCatalogConfig[T domain.CatalogEntity] struct {
	TableName     string
	EntityName    string
	SelectCols    []string
	SearchCols    []string
	ImmutableCols []string
	New           func() T
}

// NewBaseCatalogRepo creates a catalog repository.
func NewBaseCatalogRepo[T domain.CatalogEntity](txManager *postgres.TxManager, cfg BaseCatalogConfig[T]) *BaseCatalogRepo[T] {
	return &BaseCatalogRepo[T]{
		txManager:     txManager,
		tableName:     cfg.TableName,
		entityName:    cfg.EntityName,
		selectCols:    cfg.SelectCols,
		searchCols:    cfg.SearchCols,
		immutableCols: append([]string{"id", "created_at"}, cfg.ImmutableCols...),
		newFn:         cfg.New,
		builder:       squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Builder returns the squirrel builder with Dollar placeholders.
func (r *BaseCatalogRepo[T]) Builder() squirrel.StatementBuilderType {
	return r.builder
}

// Querier returns the transaction carried by ctx, or the pool.
func (r *BaseCatalogRepo[T]) Querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

func (r *BaseCatalogRepo[T]) baseSelect() squirrel.SelectBuilder {
	return r.builder.Select(r.selectCols...).From(r.tableName)
}

// Create inserts a new row.
func (r *BaseCatalogRepo[T]) Create(ctx context.Context, entity T) error {
	return r.Insert(ctx, postgres.StructToMap(entity))
}

// Insert writes a prepared column map. Used by repositories that override
// columns on create.
func (r *BaseCatalogRepo[T]) Insert(ctx context.Context, row map[string]any) error {
	sql, args, err := r.builder.Insert(r.tableName).SetMap(row).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(fmt.Errorf("insert %s: %w", r.tableName, err))
	}
	return nil
}

func (r *BaseCatalogRepo[T]) updateQuery(entity T) squirrel.UpdateBuilder {
	return r.builder.Update(r.tableName).
		SetMap(postgres.Without(postgres.StructToMap(entity), r.immutableCols...)).
		Where(squirrel.Eq{"id": entity.GetID()})
}

// Update writes every mutable column.
func (r *BaseCatalogRepo[T]) Update(ctx context.Context, entity T) error {
	sql, args, err := r.updateQuery(entity).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(fmt.Errorf("update %s: %w", r.tableName, err))
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entityName, entity.GetID().String())
	}
	return nil
}

// SetActive deactivates or reactivates a row.
func (r *BaseCatalogRepo[T]) SetActive(ctx context.Context, entityID id.ID, active bool) error {
	sql, args, err := r.builder.Update(r.tableName).
		Set("is_active", active).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": entityID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set active: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(fmt.Errorf("set active %s: %w", r.tableName, err))
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entityName, entityID.String())
	}
	return nil
}

// Delete physically removes a row. Foreign keys from ledger history turn the
// delete into ENTITY_REFERENCED.
func (r *BaseCatalogRepo[T]) Delete(ctx context.Context, entityID id.ID) error {
	sql, args, err := r.builder.Delete(r.tableName).Where(squirrel.Eq{"id": entityID}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		mapped := postgres.MapError(fmt.Errorf("delete %s: %w", r.tableName, err))
		if apperror.HasCode(mapped, apperror.CodeEntityReferenced) {
			return apperror.NewReferenced(r.entityName, entityID.String()).WithCause(err)
		}
		return mapped
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entityName, entityID.String())
	}
	return nil
}

// GetByID retrieves a row by primary key.
func (r *BaseCatalogRepo[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	return r.FindOne(ctx, r.baseSelect().Where(squirrel.Eq{"id": entityID}), entityID.String())
}

// GetForUpdate retrieves a row and locks it until the transaction ends.
func (r *BaseCatalogRepo[T]) GetForUpdate(ctx context.Context, entityID id.ID) (T, error) {
	q := r.baseSelect().Where(squirrel.Eq{"id": entityID}).Suffix("FOR UPDATE")
	return r.FindOne(ctx, q, entityID.String())
}

// FindOne executes q and scans a single row. key names the row in NOT_FOUND.
func (r *BaseCatalogRepo[T]) FindOne(ctx context.Context, q squirrel.SelectBuilder, key string) (T, error) {
	entity := r.newFn()

	sql, args, err := q.ToSql()
	if err != nil {
		return entity, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.Querier(ctx), entity, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return entity, apperror.NewNotFound(r.entityName, key)
		}
		return entity, postgres.MapError(fmt.Errorf("get %s: %w", r.tableName, err))
	}
	return entity, nil
}

// Exists checks whether a row exists.
func (r *BaseCatalogRepo[T]) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	sql, args, err := r.builder.Select().
		Column(squirrel.Expr("EXISTS (SELECT 1 FROM "+r.tableName+" WHERE id = ?)", entityID)).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists: %w", err)
	}

	var exists bool
	if err := r.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, postgres.MapError(fmt.Errorf("exists %s: %w", r.tableName, err))
	}
	return exists, nil
}

// listQuery applies filters without ordering or pagination.
func (r *BaseCatalogRepo[T]) listQuery(filter domain.ListFilter) squirrel.SelectBuilder {
	q := r.baseSelect()

	if s := strings.TrimSpace(filter.Search); s != "" && len(r.searchCols) > 0 {
		pattern := "%" + s + "%"
		or := make(squirrel.Or, 0, len(r.searchCols))
		for _, col := range r.searchCols {
			or = append(or, squirrel.ILike{col: pattern})
		}
		q = q.Where(or)
	}
	if len(filter.IDs) > 0 {
		q = q.Where(squirrel.Eq{"id": filter.IDs})
	}
	if filter.Active != nil {
		q = q.Where(squirrel.Eq{"is_active": *filter.Active})
	}
	return q
}

// List retrieves rows with filtering and pagination.
func (r *BaseCatalogRepo[T]) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error) {
	orderBy, err := r.parseOrderBy(filter.OrderBy)
	if err != nil {
		return domain.ListResult[T]{}, err
	}
	return postgres.Paginate[T](ctx, r.builder, r.Querier(ctx),
		r.listQuery(filter), filter.Limit, filter.Offset, orderBy, "id ASC")
}

// parseOrderBy whitelists the sort column. "-field" sorts descending.
func (r *BaseCatalogRepo[T]) parseOrderBy(orderBy string) (string, error) {
	if orderBy == "" {
		return "name ASC", nil
	}

	direction := "ASC"
	field := orderBy
	if strings.HasPrefix(orderBy, "-") {
		direction = "DESC"
		field = strings.TrimPrefix(orderBy, "-")
	} else if strings.HasPrefix(orderBy, "+") {
		field = strings.TrimPrefix(orderBy, "+")
	}
	field = strings.TrimSpace(field)

	for _, col := range r.selectCols {
		if col == field {
			return field + " " + direction, nil
		}
	}
	return "", apperror.NewValidation("invalid orderBy").WithDetail("orderBy", orderBy)
}

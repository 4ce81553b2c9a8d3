package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"hwshop/internal/domain"
)

// Paginate counts the rows of q, then selects one ordered page of them.
// orderBy must end with a unique column so pages are stable.
func Paginate[T any](
	ctx context.Context,
	builder squirrel.StatementBuilderType,
	querier Querier,
	q squirrel.SelectBuilder,
	limit, offset int,
	orderBy ...string,
) (domain.ListResult[T], error) {
	result := domain.ListResult[T]{Limit: limit, Offset: offset}

	countSQL, countArgs, err := builder.Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, MapError(fmt.Errorf("count: %w", err))
	}

	sql, args, err := PageQuery(q, limit, offset, orderBy...).ToSql()
	if err != nil {
		return result, fmt.Errorf("build page query: %w", err)
	}
	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, MapError(fmt.Errorf("list: %w", err))
	}
	if result.Items == nil {
		result.Items = []T{}
	}
	return result, nil
}

// PageQuery applies ordering, limit and offset. Non-positive limit means all rows.
func PageQuery(q squirrel.SelectBuilder, limit, offset int, orderBy ...string) squirrel.SelectBuilder {
	q = q.OrderBy(orderBy...)
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}
	return q
}

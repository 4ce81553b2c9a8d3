package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

// BatchExecutor sends several statements in one round trip.
// Document lines are written this way: one INSERT per line, one network hop.
type BatchExecutor struct {
	txManager *TxManager
}

// NewBatchExecutor creates a new batch executor.
func NewBatchExecutor(txManager *TxManager) *BatchExecutor {
	return &BatchExecutor{txManager: txManager}
}

// BatchQuery represents a query in a batch.
type BatchQuery struct {
	SQL  string
	Args []any
}

// QueueInsert renders an INSERT of one row for a batch.
func QueueInsert(builder squirrel.StatementBuilderType, table string, row map[string]any) (BatchQuery, error) {
	sql, args, err := builder.Insert(table).SetMap(row).ToSql()
	if err != nil {
		return BatchQuery{}, fmt.Errorf("build insert %s: %w", table, err)
	}
	return BatchQuery{SQL: sql, Args: args}, nil
}

// ExecuteBatch executes queries in a single round trip inside the current
// transaction. The first failing statement aborts the batch.
func (e *BatchExecutor) ExecuteBatch(ctx context.Context, queries []BatchQuery) error {
	if len(queries) == 0 {
		return nil
	}
	t := e.txManager.GetTx(ctx)
	if t == nil {
		return fmt.Errorf("ExecuteBatch requires transaction context")
	}

	batch := &pgx.Batch{}
	for _, q := range queries {
		batch.Queue(q.SQL, q.Args...)
	}

	results := t.SendBatch(ctx, batch)
	defer results.Close()

	for i := range queries {
		if _, err := results.Exec(); err != nil {
			return MapError(fmt.Errorf("batch statement %d: %w", i+1, err))
		}
	}
	return nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"hwshop/internal/core/apperror"
)

func TestMapError(t *testing.T) {
	pg := func(code string) error {
		return fmt.Errorf("exec: %w", &pgconn.PgError{Code: code, TableName: "products", ConstraintName: "products_sku_key"})
	}

	tests := []struct {
		name      string
		err       error
		code      string
		retryable bool
		category  apperror.Category
	}{
		{"unique violation", pg(sqlUniqueViolation), apperror.CodeDuplicate, false, apperror.CategoryConflict},
		{"foreign key violation", pg(sqlForeignKeyViolation), apperror.CodeEntityReferenced, false, apperror.CategoryConflict},
		{"check violation", pg(sqlCheckViolation), apperror.CodeValidation, false, apperror.CategoryValidation},
		{"serialization failure", pg(sqlSerializationFailure), apperror.CodeConcurrentModification, true, apperror.CategoryTransient},
		{"deadlock", pg(sqlDeadlockDetected), apperror.CodeConcurrentModification, true, apperror.CategoryTransient},
		{"lock timeout", pg(sqlLockNotAvailable), apperror.CodeConcurrentModification, true, apperror.CategoryTransient},
		{"statement timeout", pg(sqlQueryCanceled), apperror.CodeTimeout, true, apperror.CategoryTransient},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), apperror.CodeTimeout, true, apperror.CategoryTransient},
		{"other driver error", errors.New("conn closed"), apperror.CodeDatabase, false, apperror.CategoryIntegrity},
		{"other sqlstate", pg("22003"), apperror.CodeDatabase, false, apperror.CategoryIntegrity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := MapError(tt.err)
			assert.True(t, apperror.HasCode(mapped, tt.code), "got %v", mapped)
			assert.Equal(t, tt.retryable, apperror.IsRetryable(mapped))
			assert.Equal(t, tt.category, apperror.CategoryOf(mapped))
			assert.ErrorIs(t, mapped, tt.err)
		})
	}
}

func TestMapError_PassThrough(t *testing.T) {
	assert.NoError(t, MapError(nil))

	notFound := apperror.NewNotFound("sale", "x")
	assert.Same(t, notFound, MapError(notFound))
}

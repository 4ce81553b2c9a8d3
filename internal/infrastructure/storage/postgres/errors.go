package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"hwshop/internal/core/apperror"
)

// PostgreSQL SQLSTATE codes the ledger distinguishes.
const (
	sqlUniqueViolation      = "23505"
	sqlForeignKeyViolation  = "23503"
	sqlCheckViolation       = "23514"
	sqlSerializationFailure = "40001"
	sqlDeadlockDetected     = "40P01"
	sqlLockNotAvailable     = "55P03"
	sqlQueryCanceled        = "57014"
)

// MapError translates a driver error into an AppError.
// Errors that already are AppErrors pass through unchanged; nil stays nil.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperror.AsAppError(err); ok {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return apperror.NewTimeout(err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		if errors.Is(err, context.Canceled) {
			return apperror.NewTimeout(err)
		}
		return apperror.NewDatabase(err)
	}

	switch pgErr.Code {
	case sqlUniqueViolation:
		return apperror.NewDuplicate(pgErr.TableName, pgErr.ConstraintName, "").WithCause(err)
	case sqlForeignKeyViolation:
		return apperror.NewReferenced(pgErr.TableName, "").
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	case sqlCheckViolation:
		return apperror.NewValidation("value violates a ledger constraint").
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	case sqlSerializationFailure, sqlDeadlockDetected, sqlLockNotAvailable:
		return apperror.NewConcurrentModification(pgErr.TableName, "").WithCause(err)
	case sqlQueryCanceled:
		return apperror.NewTimeout(err)
	default:
		return apperror.NewDatabase(err)
	}
}

package expense_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hwshop/internal/app/apptest"
	"hwshop/internal/core/apperror"
	"hwshop/internal/core/types"
	"hwshop/internal/domain/expense"
)

func TestExpenseLifecycle(t *testing.T) {
	l := apptest.New(t)

	e := &expense.Expense{Category: "rent", Amount: types.MustMoney("1200.00"), Description: "March rent"}
	require.NoError(t, l.Expenses.Create(l.Ctx, apptest.Manager, e))
	assert.False(t, e.ExpenseDate.IsZero())
	assert.Equal(t, apptest.Manager.ID, e.CreatedBy)

	e.Amount = types.MustMoney("1250.00")
	require.NoError(t, l.Expenses.Update(l.Ctx, apptest.Manager, e))

	got, err := l.Expenses.Get(l.Ctx, apptest.Owner, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "1250", got.Amount.String())

	from := time.Now().UTC().Add(-time.Hour)
	list, err := l.Expenses.List(l.Ctx, apptest.Owner, expense.ListFilter{Category: "rent", From: &from})
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.TotalCount)

	require.NoError(t, l.Expenses.Delete(l.Ctx, apptest.Owner, e.ID))
	_, err = l.Expenses.Get(l.Ctx, apptest.Owner, e.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestExpenseRejections(t *testing.T) {
	l := apptest.New(t)

	err := l.Expenses.Create(l.Ctx, apptest.Cashier, &expense.Expense{Category: "fuel", Amount: types.MustMoney("10")})
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))

	err = l.Expenses.Create(l.Ctx, apptest.Owner, &expense.Expense{Category: "fuel", Amount: types.MustMoney("0")})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	err = l.Expenses.Create(l.Ctx, apptest.Owner, &expense.Expense{Amount: types.MustMoney("5")})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

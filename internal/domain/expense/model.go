// Package expense records operating expenses. Expenses are independent of the
// stock ledger and only feed the financial reports.
package expense

import (
	"context"
	"strings"
	"time"

	"hwshop/internal/core/apperror"
	"hwshop/internal/core/id"
	"hwshop/internal/core/types"
	"hwshop/internal/domain"
)

// Expense is one operating cost.
type Expense struct {
	ID            id.ID       `db:"id" json:"id"`
	Category      string      `db:"category" json:"category"`
	Amount        types.Money `db:"amount" json:"amount"`
	Description   string      `db:"description" json:"description,omitempty"`
	ExpenseDate   time.Time   `db:"expense_date" json:"expenseDate"`
	PaymentMethod string      `db:"payment_method" json:"paymentMethod,omitempty"`
	CreatedBy     string      `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt     time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updatedAt"`
}

// Validate checks the expense fields.
func (e *Expense) Validate() error {
	e.Category = strings.TrimSpace(e.Category)
	switch {
	case e.Category == "":
		return apperror.NewValidation("category is required").WithDetail("field", "category")
	case !e.Amount.IsPositive():
		return apperror.NewValidation("amount must be positive").WithDetail("field", "amount")
	case !types.HasMoneyPrecision(e.Amount):
		return apperror.NewValidation("amount allows at most 2 decimal places").WithDetail("field", "amount")
	case e.ExpenseDate.IsZero():
		return apperror.NewValidation("expense date is required").WithDetail("field", "expenseDate")
	}
	return nil
}

// ListFilter for expense listings.
type ListFilter struct {
	Category string
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

// Repository defines persistence for expenses.
type Repository interface {
	Create(ctx context.Context, e *Expense) error
	Update(ctx context.Context, e *Expense) error
	GetByID(ctx context.Context, expenseID id.ID) (*Expense, error)
	Delete(ctx context.Context, expenseID id.ID) error
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Expense], error)
}

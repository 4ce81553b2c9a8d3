// Package customer provides the Customer catalog.
package customer

import (
	"context"
	"strings"

	"hwshop/internal/core/apperror"
	"hwshop/internal/core/entity"
	"hwshop/internal/core/types"
)

// Customer is a buyer that may purchase on credit.
//
// CurrentBalance is derived: the sum of (total - paid) over the customer's
// pending and partial sales. It is written only by the settlement engine.
type Customer struct {
	entity.Catalog

	Name           string      `db:"name" json:"name"`
	Phone          string      `db:"phone" json:"phone,omitempty"`
	Email          string      `db:"email" json:"email,omitempty"`
	Address        string      `db:"address" json:"address,omitempty"`
	CreditLimit    types.Money `db:"credit_limit" json:"creditLimit"`
	CurrentBalance types.Money `db:"current_balance" json:"currentBalance"`
}

// NewCustomer creates an active customer with generated ID.
func NewCustomer(name string) *Customer {
	return &Customer{Catalog: entity.NewCatalog(), Name: name}
}

// AvailableCredit is credit_limit - current_balance. It may be negative.
func (c *Customer) AvailableCredit() types.Money {
	return c.CreditLimit.Sub(c.CurrentBalance)
}

// Validate implements entity.Validatable.
func (c *Customer) Validate(_ context.Context) error {
	c.Name = strings.TrimSpace(c.Name)
	switch {
	case c.Name == "":
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	case c.Email != "" && !strings.Contains(c.Email, "@"):
		return apperror.NewValidation("email is invalid").WithDetail("field", "email")
	case c.CreditLimit.IsNegative():
		return apperror.NewValidation("credit limit must not be negative").WithDetail("field", "creditLimit")
	case !types.HasMoneyPrecision(c.CreditLimit):
		return apperror.NewValidation("credit limit allows at most 2 decimal places").WithDetail("field", "creditLimit")
	}
	return nil
}

// Package sale provides the Sale document and its transaction manager.
package sale

import (
	"time"

	"hwshop/internal/core/apperror"
	"hwshop/internal/core/id"
	"hwshop/internal/core/types"
	"hwshop/internal/domain/documents"
)

// NumberPrefix is the prefix of sale numbers (INV-2026-00001).
const NumberPrefix = "INV"

// PaymentMethod is how the customer pays.
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodCard         PaymentMethod = "card"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodMobileMoney  PaymentMethod = "mobile_money"
	MethodCredit       PaymentMethod = "credit"
)

// ParsePaymentMethod validates a payment method.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(s); m {
	case MethodCash, MethodCard, MethodBankTransfer, MethodMobileMoney, MethodCredit:
		return m, nil
	}
	return "", apperror.NewValidation("unknown payment method").WithDetail("paymentMethod", s)
}

// Sale is a sale header. Items are loaded separately.
//
// AmountPaid equals the sum of the sale's customer payments, except for
// walk-in and cash sales which are fully paid at creation.
type Sale struct {
	ID             id.ID                   `db:"id" json:"id"`
	Number         string                  `db:"number" json:"number"`
	CustomerID     *id.ID                  `db:"customer_id" json:"customerId,omitempty"`
	CashierID      string                  `db:"cashier_id" json:"cashierId,omitempty"`
	SaleDate       time.Time               `db:"sale_date" json:"saleDate"`
	Subtotal       types.Money             `db:"subtotal" json:"subtotal"`
	DiscountAmount types.Money             `db:"discount_amount" json:"discountAmount"`
	TotalAmount    types.Money             `db:"total_amount" json:"totalAmount"`
	AmountPaid     types.Money             `db:"amount_paid" json:"amountPaid"`
	PaymentMethod  PaymentMethod           `db:"payment_method" json:"paymentMethod"`
	PaymentStatus  documents.PaymentStatus `db:"payment_status" json:"paymentStatus"`
	Notes          string                  `db:"notes" json:"notes,omitempty"`
	CreatedAt      time.Time               `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time               `db:"updated_at" json:"updatedAt"`

	Items []SaleItem `db:"-" json:"items,omitempty"`
}

// IsCredit reports a sale settled through customer payments.
func (s *Sale) IsCredit() bool {
	return s.CustomerID != nil && s.PaymentMethod != MethodCash
}

// Remaining is total_amount - amount_paid.
func (s *Sale) Remaining() types.Money {
	return s.TotalAmount.Sub(s.AmountPaid)
}

// SaleItem is one line of a sale.
type SaleItem struct {
	ID        id.ID          `db:"id" json:"id"`
	SaleID    id.ID          `db:"sale_id" json:"saleId"`
	LineNo    int            `db:"line_no" json:"lineNo"`
	ProductID id.ID          `db:"product_id" json:"productId"`
	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice types.Money    `db:"unit_price" json:"unitPrice"`
	Discount  types.Money    `db:"discount" json:"discount"`
	LineTotal types.Money    `db:"line_total" json:"lineTotal"`
}

// CreateInput is the request to record a sale.
type CreateInput struct {
	CustomerID     *id.ID
	PaymentMethod  PaymentMethod
	DiscountAmount types.Money
	SaleDate       *time.Time
	Notes          string
	Items          []documents.LineInput
}

// Detail is a fully hydrated sale, the snapshot a receipt renderer consumes.
type Detail struct {
	*Sale

	Customer *CustomerRef `json:"customer,omitempty"`
	Items    []ItemDetail `json:"items"`
}

// CustomerRef is the customer summary shown on a receipt.
type CustomerRef struct {
	ID    id.ID  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// ItemDetail is a sale line with product fields.
type ItemDetail struct {
	SaleItem

	SKU         string `json:"sku"`
	ProductName string `json:"productName"`
	Unit        string `json:"unit"`
}

// ListFilter for sale listings.
type ListFilter struct {
	Search     string
	CustomerID *id.ID
	Status     *documents.PaymentStatus
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

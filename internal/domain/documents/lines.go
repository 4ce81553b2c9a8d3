// Package documents holds types shared by the sale and purchase documents.
package documents

import (
	"fmt"

	"hwshop/internal/core/apperror"
	"hwshop/internal/core/id"
	"hwshop/internal/core/types"
)

// PaymentStatus is the settlement state of a document.
type PaymentStatus string

const (
	StatusPending PaymentStatus = "pending"
	StatusPartial PaymentStatus = "partial"
	StatusPaid    PaymentStatus = "paid"
)

// ParsePaymentStatus validates a status value.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch st := PaymentStatus(s); st {
	case StatusPending, StatusPartial, StatusPaid:
		return st, nil
	}
	return "", apperror.NewValidation("unknown payment status").WithDetail("status", s)
}

// Open reports whether the document still has an outstanding amount.
func (s PaymentStatus) Open() bool {
	return s == StatusPending || s == StatusPartial
}

// DeriveStatus maps amount paid against total to a status.
func DeriveStatus(paid, total types.Money) PaymentStatus {
	switch {
	case paid.GreaterThanOrEqual(total):
		return StatusPaid
	case paid.IsPositive():
		return StatusPartial
	default:
		return StatusPending
	}
}

// LineInput is a requested document line.
// LineTotal is optional; when present it must match the computed value.
type LineInput struct {
	ProductID id.ID
	Quantity  types.Quantity
	UnitPrice types.Money
	Discount  types.Money
	LineTotal *types.Money
}

// Line is a validated line with its computed total.
type Line struct {
	ProductID id.ID
	Quantity  types.Quantity
	UnitPrice types.Money
	Discount  types.Money
	LineTotal types.Money
}

// PriceLines validates lines and computes line_total = quantity*unit_price - discount.
func PriceLines(in []LineInput) ([]Line, error) {
	if len(in) == 0 {
		return nil, apperror.NewValidation("at least one item is required").WithDetail("field", "items")
	}

	out := make([]Line, 0, len(in))
	for i, l := range in {
		field := func(name string) string { return fmt.Sprintf("items[%d].%s", i, name) }

		switch {
		case id.IsNil(l.ProductID):
			return nil, apperror.NewValidation("product id is required").WithDetail("field", field("productId"))
		case !l.Quantity.IsPositive():
			return nil, apperror.NewValidation("quantity must be positive").WithDetail("field", field("quantity"))
		case !types.HasQuantityPrecision(l.Quantity):
			return nil, apperror.NewValidation("quantity allows at most 3 decimal places").WithDetail("field", field("quantity"))
		case l.UnitPrice.IsNegative():
			return nil, apperror.NewValidation("unit price must not be negative").WithDetail("field", field("unitPrice"))
		case !types.HasMoneyPrecision(l.UnitPrice):
			return nil, apperror.NewValidation("unit price allows at most 2 decimal places").WithDetail("field", field("unitPrice"))
		case l.Discount.IsNegative():
			return nil, apperror.NewValidation("discount must not be negative").WithDetail("field", field("discount"))
		case !types.HasMoneyPrecision(l.Discount):
			return nil, apperror.NewValidation("discount allows at most 2 decimal places").WithDetail("field", field("discount"))
		}

		gross := types.RoundMoney(l.Quantity.Mul(l.UnitPrice))
		if l.Discount.GreaterThan(gross) {
			return nil, apperror.NewValidation("discount exceeds line amount").WithDetail("field", field("discount"))
		}
		total := gross.Sub(l.Discount)
		if l.LineTotal != nil && !l.LineTotal.Equal(total) {
			return nil, apperror.NewValidation("line total does not match quantity, price and discount").
				WithDetail("field", field("lineTotal")).
				WithDetail("expected", total.StringFixed(types.MoneyPlaces))
		}

		out = append(out, Line{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Discount:  l.Discount,
			LineTotal: total,
		})
	}
	return out, nil
}

// Totals computes subtotal and total = subtotal - discount.
func Totals(lines []Line, discount types.Money) (subtotal, total types.Money, err error) {
	if discount.IsNegative() || !types.HasMoneyPrecision(discount) {
		return subtotal, total, apperror.NewValidation("discount amount must be a non-negative amount with at most 2 decimal places").
			WithDetail("field", "discountAmount")
	}
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineTotal)
	}
	if discount.GreaterThan(subtotal) {
		return subtotal, total, apperror.NewValidation("discount amount exceeds subtotal").WithDetail("field", "discountAmount")
	}
	return subtotal, subtotal.Sub(discount), nil
}

// QuantitiesByProduct sums line quantities per product.
func QuantitiesByProduct(lines []Line) map[id.ID]types.Quantity {
	out := make(map[id.ID]types.Quantity, len(lines))
	for _, l := range lines {
		out[l.ProductID] = out[l.ProductID].Add(l.Quantity)
	}
	return out
}

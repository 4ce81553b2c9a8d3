// Package purchase provides the Purchase document (goods received from a supplier).
//
// Purchases mirror sales with the sign flipped: each line adds stock. Unlike
// sales, payment_status is set explicitly and is not derived from a payments
// sub-ledger.
package purchase

import (
	"time"

	"hwshop/internal/core/id"
	"hwshop/internal/core/types"
	"hwshop/internal/domain/documents"
)

// NumberPrefix is the prefix of purchase numbers (PO-2026-00001).
const NumberPrefix = "PO"

// Purchase is a purchase header. Items are loaded separately.
type Purchase struct {
	ID             id.ID                   `db:"id" json:"id"`
	Number         string                  `db:"number" json:"number"`
	SupplierID     id.ID                   `db:"supplier_id" json:"supplierId"`
	InvoiceNumber  string                  `db:"invoice_number" json:"invoiceNumber,omitempty"`
	PurchaseDate   time.Time               `db:"purchase_date" json:"purchaseDate"`
	Subtotal       types.Money             `db:"subtotal" json:"subtotal"`
	DiscountAmount types.Money             `db:"discount_amount" json:"discountAmount"`
	TotalAmount    types.Money             `db:"total_amount" json:"totalAmount"`
	PaymentStatus  documents.PaymentStatus `db:"payment_status" json:"paymentStatus"`
	Notes          string                  `db:"notes" json:"notes,omitempty"`
	CreatedBy      string                  `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt      time.Time               `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time               `db:"updated_at" json:"updatedAt"`

	Items []PurchaseItem `db:"-" json:"items,omitempty"`
}

// PurchaseItem is one line of a purchase.
type PurchaseItem struct {
	ID         id.ID          `db:"id" json:"id"`
	PurchaseID id.ID          `db:"purchase_id" json:"purchaseId"`
	LineNo     int            `db:"line_no" json:"lineNo"`
	ProductID  id.ID          `db:"product_id" json:"productId"`
	Quantity   types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice  types.Money    `db:"unit_price" json:"unitPrice"`
	Discount   types.Money    `db:"discount" json:"discount"`
	LineTotal  types.Money    `db:"line_total" json:"lineTotal"`
}

// CreateInput is the request to record a purchase.
type CreateInput struct {
	SupplierID     id.ID
	InvoiceNumber  string
	PaymentStatus  documents.PaymentStatus
	DiscountAmount types.Money
	PurchaseDate   *time.Time
	Notes          string
	Items          []documents.LineInput
}

// Detail is a hydrated purchase.
type Detail struct {
	*Purchase

	SupplierName string       `json:"supplierName"`
	Items        []ItemDetail `json:"items"`
}

// ItemDetail is a purchase line with product fields.
type ItemDetail struct {
	PurchaseItem

	SKU         string `json:"sku"`
	ProductName string `json:"productName"`
	Unit        string `json:"unit"`
}

// ListFilter for purchase listings.
type ListFilter struct {
	Search     string
	SupplierID *id.ID
	Status     *documents.PaymentStatus
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// Package settlement is the credit settlement engine: customer payments
// against credit sales, and the aggregates derived from them.
//
// Sale amount_paid/payment_status and customer current_balance are always
// recomputed from full sums, never patched incrementally.
package settlement

import (
	"context"
	"time"

	"hwshop/internal/core/id"
	"hwshop/internal/core/types"
	"hwshop/internal/domain"
	"hwshop/internal/domain/documents/sale"
)

// Payment is a customer payment against one credit sale.
type Payment struct {
	ID            id.ID              `db:"id" json:"id"`
	SaleID        id.ID              `db:"sale_id" json:"saleId"`
	CustomerID    id.ID              `db:"customer_id" json:"customerId"`
	Amount        types.Money        `db:"amount" json:"amount"`
	PaymentMethod sale.PaymentMethod `db:"payment_method" json:"paymentMethod"`
	PaymentDate   time.Time          `db:"payment_date" json:"paymentDate"`
	Reference     string             `db:"reference" json:"reference,omitempty"`
	Notes         string             `db:"notes" json:"notes,omitempty"`
	ReceivedBy    string             `db:"received_by" json:"receivedBy,omitempty"`
	CreatedAt     time.Time          `db:"created_at" json:"createdAt"`
}

// RecordInput is the request to record a payment.
type RecordInput struct {
	SaleID        id.ID
	Amount        types.Money
	PaymentMethod sale.PaymentMethod
	PaymentDate   *time.Time
	Reference     string
	Notes         string
}

// OpenSale is a pending or partial sale with its remaining balance.
type OpenSale struct {
	SaleID        id.ID       `json:"saleId"`
	Number        string      `json:"number"`
	SaleDate      time.Time   `json:"saleDate"`
	TotalAmount   types.Money `json:"totalAmount"`
	AmountPaid    types.Money `json:"amountPaid"`
	Remaining     types.Money `json:"remaining"`
	PaymentStatus string      `json:"paymentStatus"`
}

// Outstanding is the read-only credit position of a customer.
type Outstanding struct {
	CustomerID      id.ID       `json:"customerId"`
	CustomerName    string      `json:"customerName"`
	CurrentBalance  types.Money `json:"currentBalance"`
	CreditLimit     types.Money `json:"creditLimit"`
	AvailableCredit types.Money `json:"availableCredit"`
	OpenSales       []OpenSale  `json:"openSales"`
}

// PaymentRepository defines persistence for customer payments.
type PaymentRepository interface {
	Insert(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, paymentID id.ID) (*Payment, error)
	Delete(ctx context.Context, paymentID id.ID) error

	// DeleteBySale removes every payment of a sale and returns the count.
	DeleteBySale(ctx context.Context, saleID id.ID) (int64, error)

	SumForSale(ctx context.Context, saleID id.ID) (types.Money, error)
	ListBySale(ctx context.Context, saleID id.ID) ([]Payment, error)
	ListByCustomer(ctx context.Context, customerID id.ID, limit, offset int) (domain.ListResult[Payment], error)
}

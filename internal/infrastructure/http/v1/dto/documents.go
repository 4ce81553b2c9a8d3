package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"hwshop/internal/core/apperror"
	"hwshop/internal/core/id"
	"hwshop/internal/domain/documents"
	"hwshop/internal/domain/documents/purchase"
	"hwshop/internal/domain/documents/sale"
	"hwshop/internal/domain/expense"
	"hwshop/internal/domain/registers/stock"
	"hwshop/internal/domain/settlement"
)

// LineRequest is one priced document line.
type LineRequest struct {
	ProductID string           `json:"productId" binding:"required,uuid"`
	Quantity  decimal.Decimal  `json:"quantity"`
	UnitPrice decimal.Decimal  `json:"unitPrice"`
	Discount  decimal.Decimal  `json:"discount"`
	LineTotal *decimal.Decimal `json:"lineTotal"`
}

func toLines(reqs []LineRequest) ([]documents.LineInput, error) {
	lines := make([]documents.LineInput, len(reqs))
	for i, r := range reqs {
		productID, err := id.Parse(r.ProductID)
		if err != nil {
			return nil, apperror.NewValidation("invalid product id").WithDetail("line", i+1)
		}
		lines[i] = documents.LineInput{
			ProductID: productID,
			Quantity:  r.Quantity,
			UnitPrice: r.UnitPrice,
			Discount:  r.Discount,
			LineTotal: r.LineTotal,
		}
	}
	return lines, nil
}

// --- Sale ---

// CreateSaleRequest for POST /sales.
type CreateSaleRequest struct {
	CustomerID     *string         `json:"customerId" binding:"omitempty,uuid"`
	PaymentMethod  string          `json:"paymentMethod" binding:"required,oneof=cash card bank_transfer mobile_money credit"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	SaleDate       *time.Time      `json:"saleDate"`
	Notes          string          `json:"notes" binding:"max=1000"`
	Items          []LineRequest   `json:"items" binding:"required,min=1,dive"`
}

// ToInput maps the request to the sale service input.
func (r CreateSaleRequest) ToInput() (sale.CreateInput, error) {
	var in sale.CreateInput

	method, err := sale.ParsePaymentMethod(r.PaymentMethod)
	if err != nil {
		return in, err
	}
	if r.CustomerID != nil {
		customerID, err := ParseOptionalID("customerId", *r.CustomerID)
		if err != nil {
			return in, err
		}
		in.CustomerID = customerID
	}
	lines, err := toLines(r.Items)
	if err != nil {
		return in, err
	}

	in.PaymentMethod = method
	in.DiscountAmount = r.DiscountAmount
	in.SaleDate = r.SaleDate
	in.Notes = r.Notes
	in.Items = lines
	return in, nil
}

// SaleListQuery for GET /sales.
type SaleListQuery struct {
	PageRequest
	DateRange
	Search     string `form:"search"`
	CustomerID string `form:"customerId" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=pending partial paid"`
}

// ToFilter maps the query to a sale list filter.
func (q SaleListQuery) ToFilter() (sale.ListFilter, error) {
	q.Defaults()
	f := sale.ListFilter{Search: q.Search, Limit: q.Limit, Offset: q.Offset()}

	var err error
	if f.CustomerID, err = ParseOptionalID("customerId", q.CustomerID); err != nil {
		return f, err
	}
	if f.Status, err = optionalStatus(q.Status); err != nil {
		return f, err
	}
	if f.From, f.To, err = q.Bounds(); err != nil {
		return f, err
	}
	return f, nil
}

// --- Purchase ---

// CreatePurchaseRequest for POST /purchases.
type CreatePurchaseRequest struct {
	SupplierID     string          `json:"supplierId" binding:"required,uuid"`
	InvoiceNumber  string          `json:"invoiceNumber" binding:"max=100"`
	PaymentStatus  string          `json:"paymentStatus" binding:"omitempty,oneof=pending partial paid"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	PurchaseDate   *time.Time      `json:"purchaseDate"`
	Notes          string          `json:"notes" binding:"max=1000"`
	Items          []LineRequest   `json:"items" binding:"required,min=1,dive"`
}

// ToInput maps the request to the purchase service input.
func (r CreatePurchaseRequest) ToInput() (purchase.CreateInput, error) {
	var in purchase.CreateInput

	supplierID, err := id.Parse(r.SupplierID)
	if err != nil {
		return in, apperror.NewValidation("invalid id format").WithDetail("field", "supplierId")
	}
	if r.PaymentStatus != "" {
		if in.PaymentStatus, err = documents.ParsePaymentStatus(r.PaymentStatus); err != nil {
			return in, err
		}
	}
	lines, err := toLines(r.Items)
	if err != nil {
		return in, err
	}

	in.SupplierID = supplierID
	in.InvoiceNumber = r.InvoiceNumber
	in.DiscountAmount = r.DiscountAmount
	in.PurchaseDate = r.PurchaseDate
	in.Notes = r.Notes
	in.Items = lines
	return in, nil
}

// PaymentStatusRequest for PATCH /purchases/:id/payment-status.
type PaymentStatusRequest struct {
	PaymentStatus string `json:"paymentStatus" binding:"required,oneof=pending partial paid"`
}

// PurchaseListQuery for GET /purchases.
type PurchaseListQuery struct {
	PageRequest
	DateRange
	Search     string `form:"search"`
	SupplierID string `form:"supplierId" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=pending partial paid"`
}

// ToFilter maps the query to a purchase list filter.
func (q PurchaseListQuery) ToFilter() (purchase.ListFilter, error) {
	q.Defaults()
	f := purchase.ListFilter{Search: q.Search, Limit: q.Limit, Offset: q.Offset()}

	var err error
	if f.SupplierID, err = ParseOptionalID("supplierId", q.SupplierID); err != nil {
		return f, err
	}
	if f.Status, err = optionalStatus(q.Status); err != nil {
		return f, err
	}
	if f.From, f.To, err = q.Bounds(); err != nil {
		return f, err
	}
	return f, nil
}

func optionalStatus(s string) (*documents.PaymentStatus, error) {
	if s == "" {
		return nil, nil
	}
	st, err := documents.ParsePaymentStatus(s)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// --- Payment ---

// RecordPaymentRequest for POST /payments.
type RecordPaymentRequest struct {
	SaleID        string          `json:"saleId" binding:"required,uuid"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"paymentMethod" binding:"required,oneof=cash card bank_transfer mobile_money"`
	PaymentDate   *time.Time      `json:"paymentDate"`
	Reference     string          `json:"reference" binding:"max=100"`
	Notes         string          `json:"notes" binding:"max=1000"`
}

// ToInput maps the request to the settlement input.
func (r RecordPaymentRequest) ToInput() (settlement.RecordInput, error) {
	saleID, err := id.Parse(r.SaleID)
	if err != nil {
		return settlement.RecordInput{}, apperror.NewValidation("invalid id format").WithDetail("field", "saleId")
	}
	method, err := sale.ParsePaymentMethod(r.PaymentMethod)
	if err != nil {
		return settlement.RecordInput{}, err
	}
	return settlement.RecordInput{
		SaleID:        saleID,
		Amount:        r.Amount,
		PaymentMethod: method,
		PaymentDate:   r.PaymentDate,
		Reference:     r.Reference,
		Notes:         r.Notes,
	}, nil
}

// --- Stock ---

// AdjustmentRequest for POST /stock/adjustments.
type AdjustmentRequest struct {
	ProductID      string          `json:"productId" binding:"required,uuid"`
	QuantityChange decimal.Decimal `json:"quantityChange"`
	Reason         string          `json:"reason" binding:"required"`
	Notes          string          `json:"notes" binding:"max=1000"`
}

// ToInput maps the request to an adjustment.
func (r AdjustmentRequest) ToInput() (stock.AdjustInput, error) {
	productID, err := id.Parse(r.ProductID)
	if err != nil {
		return stock.AdjustInput{}, apperror.NewValidation("invalid id format").WithDetail("field", "productId")
	}
	reason, err := stock.ParseReason(r.Reason)
	if err != nil {
		return stock.AdjustInput{}, err
	}
	return stock.AdjustInput{
		ProductID:      productID,
		QuantityChange: r.QuantityChange,
		Reason:         reason,
		Notes:          r.Notes,
	}, nil
}

// InventoryQuery for GET /stock/inventory.
type InventoryQuery struct {
	PageRequest
	Search       string `form:"search"`
	LowStockOnly bool   `form:"lowStock"`
	ActiveOnly   bool   `form:"activeOnly"`
}

// ToFilter maps the query to an inventory filter.
func (q InventoryQuery) ToFilter() stock.InventoryFilter {
	q.Defaults()
	return stock.InventoryFilter{
		Search:       q.Search,
		LowStockOnly: q.LowStockOnly,
		ActiveOnly:   q.ActiveOnly,
		Limit:        q.Limit,
		Offset:       q.Offset(),
	}
}

// MovementQuery for GET /stock/movements.
type MovementQuery struct {
	PageRequest
	DateRange
	ProductID string `form:"productId" binding:"omitempty,uuid"`
	Type      string `form:"type" binding:"omitempty,oneof=purchase sale adjustment"`
}

// ToFilter maps the query to a movement filter.
func (q MovementQuery) ToFilter() (stock.MovementFilter, error) {
	q.Defaults()
	f := stock.MovementFilter{Limit: q.Limit, Offset: q.Offset()}

	var err error
	if f.ProductID, err = ParseOptionalID("productId", q.ProductID); err != nil {
		return f, err
	}
	if q.Type != "" {
		t := stock.MovementType(q.Type)
		f.Type = &t
	}
	if f.From, f.To, err = q.Bounds(); err != nil {
		return f, err
	}
	return f, nil
}

// --- Expense ---

// ExpenseRequest for POST and PUT /expenses.
type ExpenseRequest struct {
	Category      string          `json:"category" binding:"required,max=100"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description" binding:"max=1000"`
	ExpenseDate   *time.Time      `json:"expenseDate"`
	PaymentMethod string          `json:"paymentMethod" binding:"max=50"`
}

// Apply overwrites e with the request fields. A missing date keeps e's date.
func (r ExpenseRequest) Apply(e *expense.Expense) *expense.Expense {
	e.Category = r.Category
	e.Amount = r.Amount
	e.Description = r.Description
	if r.ExpenseDate != nil {
		e.ExpenseDate = r.ExpenseDate.UTC()
	}
	e.PaymentMethod = r.PaymentMethod
	return e
}

// ExpenseListQuery for GET /expenses.
type ExpenseListQuery struct {
	PageRequest
	DateRange
	Category string `form:"category"`
}

// ToFilter maps the query to an expense filter.
func (q ExpenseListQuery) ToFilter() (expense.ListFilter, error) {
	q.Defaults()
	f := expense.ListFilter{Category: q.Category, Limit: q.Limit, Offset: q.Offset()}

	var err error
	if f.From, f.To, err = q.Bounds(); err != nil {
		return f, err
	}
	return f, nil
}

// --- Reports ---

// PeriodQuery for report endpoints. Both ends are inclusive days.
type PeriodQuery struct {
	DateRange
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

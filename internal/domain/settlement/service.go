package settlement

import (
	"context"
	"fmt"
	"time"

	"hwshop/internal/core/apperror"
	"hwshop/internal/core/id"
	"hwshop/internal/core/security"
	"hwshop/internal/core/tx"
	"hwshop/internal/core/types"
	"hwshop/internal/domain"
	"hwshop/internal/domain/catalogs/customer"
	"hwshop/internal/domain/documents"
	"hwshop/internal/domain/documents/sale"
	"hwshop/pkg/logger"
)

// Sales is the part of the sale repository the engine reads and writes.
type Sales interface {
	GetByID(ctx context.Context, saleID id.ID) (*sale.Sale, error)
	GetForUpdate(ctx context.Context, saleID id.ID) (*sale.Sale, error)
	UpdatePaymentState(ctx context.Context, saleID id.ID, amountPaid types.Money, status documents.PaymentStatus, at time.Time) error
	ListOpenByCustomer(ctx context.Context, customerID id.ID) ([]*sale.Sale, error)
	ListCreditSaleIDs(ctx context.Context) ([]id.ID, error)
}

// Customers is the part of the customer repository the engine needs.
type Customers interface {
	GetByID(ctx context.Context, customerID id.ID) (*customer.Customer, error)
	GetForUpdate(ctx context.Context, customerID id.ID) (*customer.Customer, error)
	SetBalance(ctx context.Context, customerID id.ID, balance types.Money) error
	ListIDs(ctx context.Context) ([]id.ID, error)
}

// Service records and deletes payments and re-derives dependent aggregates.
// Locks are taken in the order sale, then customer.
type Service struct {
	payments  PaymentRepository
	sales     Sales
	customers Customers
	txManager tx.Manager
	now       func() time.Time
}

// NewService creates a new settlement engine.
func NewService(payments PaymentRepository, sales Sales, customers Customers, txManager tx.Manager) *Service {
	return &Service{
		payments:  payments,
		sales:     sales,
		customers: customers,
		txManager: txManager,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// RecordPayment inserts a payment against a credit sale and recomputes the
// sale's amount paid and status and the customer's balance, atomically.
func (s *Service) RecordPayment(ctx context.Context, actor security.Actor, in RecordInput) (*Payment, error) {
	if err := actor.Require(security.CapPaymentRecord); err != nil {
		return nil, err
	}
	if !in.Amount.IsPositive() {
		return nil, apperror.NewValidation("amount must be positive").WithDetail("field", "amount")
	}
	if !types.HasMoneyPrecision(in.Amount) {
		return nil, apperror.NewValidation("amount allows at most 2 decimal places").WithDetail("field", "amount")
	}
	method := in.PaymentMethod
	if method == "" {
		method = sale.MethodCash
	}
	if _, err := sale.ParsePaymentMethod(string(method)); err != nil {
		return nil, err
	}
	if method == sale.MethodCredit {
		return nil, apperror.NewValidation("a payment cannot be made on credit").WithDetail("field", "paymentMethod")
	}

	now := s.now()
	payment := &Payment{
		ID:            id.New(),
		SaleID:        in.SaleID,
		Amount:        in.Amount,
		PaymentMethod: method,
		PaymentDate:   now,
		Reference:     in.Reference,
		Notes:         in.Notes,
		ReceivedBy:    actor.ID,
		CreatedAt:     now,
	}
	if in.PaymentDate != nil {
		payment.PaymentDate = in.PaymentDate.UTC()
	}

	var settled *sale.Sale
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		sl, err := s.sales.GetForUpdate(ctx, in.SaleID)
		if err != nil {
			return saleNotFound(err, in.SaleID)
		}
		if sl.CustomerID == nil {
			return apperror.NewConflict("sale has no customer; walk-in sales are settled at creation").
				WithDetail("sale_id", in.SaleID.String())
		}

		remaining := sl.Remaining()
		if in.Amount.GreaterThan(remaining) {
			return apperror.NewPaymentExceedsBalance(in.SaleID.String(), in.Amount, remaining)
		}

		payment.CustomerID = *sl.CustomerID
		if err := s.payments.Insert(ctx, payment); err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}

		if err := s.recomputeSale(ctx, sl); err != nil {
			return err
		}
		if _, err := s.RecomputeCustomerBalance(ctx, *sl.CustomerID); err != nil {
			return err
		}
		settled = sl
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "payment recorded",
		"payment_id", payment.ID,
		"sale_id", payment.SaleID,
		"amount", payment.Amount.String(),
		"sale_status", settled.PaymentStatus,
	)
	return payment, nil
}

// DeletePayment removes a payment and recomputes the affected sale and customer.
func (s *Service) DeletePayment(ctx context.Context, actor security.Actor, paymentID id.ID) error {
	if err := actor.Require(security.CapPaymentDelete); err != nil {
		return err
	}

	var payment *Payment
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		payment, err = s.payments.GetByID(ctx, paymentID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("payment", paymentID.String())
			}
			return err
		}

		sl, err := s.sales.GetForUpdate(ctx, payment.SaleID)
		if err != nil {
			return saleNotFound(err, payment.SaleID)
		}

		if err := s.payments.Delete(ctx, paymentID); err != nil {
			return fmt.Errorf("delete payment: %w", err)
		}
		if err := s.recomputeSale(ctx, sl); err != nil {
			return err
		}
		_, err = s.RecomputeCustomerBalance(ctx, payment.CustomerID)
		return err
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "payment deleted", "payment_id", paymentID, "sale_id", payment.SaleID, "actor", actor.ID)
	return nil
}

// DeletePaymentsForSale removes the payments of a sale being deleted.
// The caller recomputes the customer balance once the sale is gone.
func (s *Service) DeletePaymentsForSale(ctx context.Context, saleID id.ID) (int64, error) {
	return s.payments.DeleteBySale(ctx, saleID)
}

// RecomputeSale re-derives amount_paid and payment_status of a sale from its
// payments. Walk-in and cash sales keep the values fixed at creation.
func (s *Service) RecomputeSale(ctx context.Context, saleID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		sl, err := s.sales.GetForUpdate(ctx, saleID)
		if err != nil {
			return saleNotFound(err, saleID)
		}
		return s.recomputeSale(ctx, sl)
	})
}

// recomputeSale expects sl to be locked by the caller and updates it in place.
func (s *Service) recomputeSale(ctx context.Context, sl *sale.Sale) error {
	if !sl.IsCredit() {
		return nil
	}

	paid, err := s.payments.SumForSale(ctx, sl.ID)
	if err != nil {
		return fmt.Errorf("sum payments: %w", err)
	}
	status := documents.DeriveStatus(paid, sl.TotalAmount)

	if err := s.sales.UpdatePaymentState(ctx, sl.ID, paid, status, s.now()); err != nil {
		return fmt.Errorf("update sale payment state: %w", err)
	}
	sl.AmountPaid = paid
	sl.PaymentStatus = status
	return nil
}

// RecomputeCustomerBalance sets current_balance to the sum of (total - paid)
// over the customer's pending and partial sales and returns it.
func (s *Service) RecomputeCustomerBalance(ctx context.Context, customerID id.ID) (types.Money, error) {
	var balance types.Money
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.customers.GetForUpdate(ctx, customerID); err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("customer", customerID.String())
			}
			return err
		}

		open, err := s.sales.ListOpenByCustomer(ctx, customerID)
		if err != nil {
			return fmt.Errorf("list open sales: %w", err)
		}
		balance = types.Money{}
		for _, sl := range open {
			balance = balance.Add(sl.Remaining())
		}

		if err := s.customers.SetBalance(ctx, customerID, balance); err != nil {
			return fmt.Errorf("set balance: %w", err)
		}
		return nil
	})
	return balance, err
}

// GetCustomerOutstanding returns a customer's balance, credit headroom and
// open sales. It changes nothing.
func (s *Service) GetCustomerOutstanding(ctx context.Context, actor security.Actor, customerID id.ID) (*Outstanding, error) {
	if err := actor.Require(security.CapCustomerRead); err != nil {
		return nil, err
	}

	c, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("customer", customerID.String())
		}
		return nil, err
	}
	open, err := s.sales.ListOpenByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list open sales: %w", err)
	}

	out := &Outstanding{
		CustomerID:      c.ID,
		CustomerName:    c.Name,
		CurrentBalance:  c.CurrentBalance,
		CreditLimit:     c.CreditLimit,
		AvailableCredit: c.AvailableCredit(),
		OpenSales:       make([]OpenSale, 0, len(open)),
	}
	for _, sl := range open {
		out.OpenSales = append(out.OpenSales, OpenSale{
			SaleID:        sl.ID,
			Number:        sl.Number,
			SaleDate:      sl.SaleDate,
			TotalAmount:   sl.TotalAmount,
			AmountPaid:    sl.AmountPaid,
			Remaining:     sl.Remaining(),
			PaymentStatus: string(sl.PaymentStatus),
		})
	}
	return out, nil
}

// ListSalePayments returns the payments of one sale.
func (s *Service) ListSalePayments(ctx context.Context, actor security.Actor, saleID id.ID) ([]Payment, error) {
	if err := actor.Require(security.CapSaleRead); err != nil {
		return nil, err
	}
	if _, err := s.sales.GetByID(ctx, saleID); err != nil {
		return nil, saleNotFound(err, saleID)
	}
	return s.payments.ListBySale(ctx, saleID)
}

// ListCustomerPayments returns a customer's payments, newest first.
func (s *Service) ListCustomerPayments(ctx context.Context, actor security.Actor, customerID id.ID, limit, offset int) (domain.ListResult[Payment], error) {
	if err := actor.Require(security.CapCustomerRead); err != nil {
		return domain.ListResult[Payment]{}, err
	}
	return s.payments.ListByCustomer(ctx, customerID, limit, offset)
}

// RecomputeReport summarizes a full recomputation.
type RecomputeReport struct {
	Sales     int `json:"sales"`
	Customers int `json:"customers"`
}

// RecomputeAll re-derives every credit sale and every customer balance.
// Each entity is recomputed in its own short transaction.
func (s *Service) RecomputeAll(ctx context.Context, actor security.Actor) (RecomputeReport, error) {
	var report RecomputeReport
	if err := actor.Require(security.CapLedgerAdmin); err != nil {
		return report, err
	}

	saleIDs, err := s.sales.ListCreditSaleIDs(ctx)
	if err != nil {
		return report, fmt.Errorf("list credit sales: %w", err)
	}
	for _, saleID := range saleIDs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := s.RecomputeSale(ctx, saleID); err != nil {
			return report, fmt.Errorf("recompute sale %s: %w", saleID, err)
		}
		report.Sales++
	}

	customerIDs, err := s.customers.ListIDs(ctx)
	if err != nil {
		return report, fmt.Errorf("list customers: %w", err)
	}
	for _, customerID := range customerIDs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if _, err := s.RecomputeCustomerBalance(ctx, customerID); err != nil {
			return report, fmt.Errorf("recompute customer %s: %w", customerID, err)
		}
		report.Customers++
	}

	logger.Info(ctx, "balances recomputed", "sales", report.Sales, "customers", report.Customers)
	return report, nil
}

func saleNotFound(err error, saleID id.ID) error {
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound("sale", saleID.String())
	}
	return err
}

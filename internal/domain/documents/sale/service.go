package sale

import (
	"context"
	"fmt"
	"slices"
	"time"

	"hwshop/internal/core/apperror"
	"hwshop/internal/core/id"
	"hwshop/internal/core/security"
	"hwshop/internal/core/tx"
	"hwshop/internal/core/types"
	"hwshop/internal/domain"
	"hwshop/internal/domain/catalogs/customer"
	"hwshop/internal/domain/catalogs/product"
	"hwshop/internal/domain/documents"
	"hwshop/internal/domain/registers/stock"
	"hwshop/pkg/logger"
)

// Products reads catalog products.
type Products interface {
	GetByID(ctx context.Context, productID id.ID) (*product.Product, error)
}

// Customers reads catalog customers.
type Customers interface {
	GetByID(ctx context.Context, customerID id.ID) (*customer.Customer, error)
}

// StockLedger is the part of the stock service a sale needs.
type StockLedger interface {
	CheckAvailability(ctx context.Context, requested map[id.ID]types.Quantity) error
	RecordMovement(ctx context.Context, actor security.Actor, in stock.MovementInput) (id.ID, error)
	ReverseMovementsForItem(ctx context.Context, actor security.Actor, ref stock.ItemRef) ([]stock.Movement, error)
}

// Settlement re-derives credit aggregates after a sale changes.
type Settlement interface {
	DeletePaymentsForSale(ctx context.Context, saleID id.ID) (int64, error)
	RecomputeCustomerBalance(ctx context.Context, customerID id.ID) (types.Money, error)
}

// Numerator issues document numbers.
type Numerator interface {
	Next(ctx context.Context, prefix string, at time.Time) (string, error)
}

// Service creates and deletes sales together with their stock movements.
type Service struct {
	repo       Repository
	products   Products
	customers  Customers
	ledger     StockLedger
	settlement Settlement
	numerator  Numerator
	txManager  tx.Manager
	now        func() time.Time
}

// NewService creates a new sale service.
func NewService(
	repo Repository,
	products Products,
	customers Customers,
	ledger StockLedger,
	settlement Settlement,
	numerator Numerator,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:       repo,
		products:   products,
		customers:  customers,
		ledger:     ledger,
		settlement: settlement,
		numerator:  numerator,
		txManager:  txManager,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Create records a sale: header, items and one stock movement per item,
// all in one transaction.
//
// Walk-in sales and cash sales are paid in full at creation. A sale with a
// customer and a non-cash method starts with nothing paid, so it is pending
// unless its total is zero.
func (s *Service) Create(ctx context.Context, actor security.Actor, in CreateInput) (*Sale, error) {
	if err := actor.Require(security.CapSaleCreate); err != nil {
		return nil, err
	}
	if _, err := ParsePaymentMethod(string(in.PaymentMethod)); err != nil {
		return nil, err
	}
	if in.PaymentMethod == MethodCredit && in.CustomerID == nil {
		return nil, apperror.NewValidation("credit sales require a customer").WithDetail("field", "customerId")
	}

	lines, err := documents.PriceLines(in.Items)
	if err != nil {
		return nil, err
	}
	subtotal, total, err := documents.Totals(lines, in.DiscountAmount)
	if err != nil {
		return nil, err
	}

	now := s.now()
	saleDate := now
	if in.SaleDate != nil {
		saleDate = in.SaleDate.UTC()
	}

	sale := &Sale{
		ID:             id.New(),
		CustomerID:     in.CustomerID,
		CashierID:      actor.ID,
		SaleDate:       saleDate,
		Subtotal:       subtotal,
		DiscountAmount: in.DiscountAmount,
		TotalAmount:    total,
		PaymentMethod:  in.PaymentMethod,
		Notes:          in.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if sale.IsCredit() {
		sale.AmountPaid = types.Money{}
		sale.PaymentStatus = documents.DeriveStatus(sale.AmountPaid, total)
	} else {
		sale.PaymentStatus = documents.StatusPaid
		sale.AmountPaid = total
	}

	sale.Items = make([]SaleItem, len(lines))
	for i, l := range lines {
		sale.Items[i] = SaleItem{
			ID:        id.New(),
			SaleID:    sale.ID,
			LineNo:    i + 1,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Discount:  l.Discount,
			LineTotal: l.LineTotal,
		}
	}

	// Numbers are issued outside the business transaction.
	sale.Number, err = s.numerator.Next(ctx, NumberPrefix, saleDate)
	if err != nil {
		return nil, fmt.Errorf("generate number: %w", err)
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if sale.CustomerID != nil {
			if err := s.requireActiveCustomer(ctx, *sale.CustomerID); err != nil {
				return err
			}
		}

		requested := documents.QuantitiesByProduct(lines)
		checked := make(map[id.ID]bool, len(requested))
		for _, l := range lines {
			if checked[l.ProductID] {
				continue
			}
			checked[l.ProductID] = true
			if err := s.requireActiveProduct(ctx, l.ProductID); err != nil {
				return err
			}
		}

		if err := s.ledger.CheckAvailability(ctx, requested); err != nil {
			return err
		}

		if err := s.repo.Create(ctx, sale); err != nil {
			return fmt.Errorf("create sale: %w", err)
		}
		if err := s.repo.InsertItems(ctx, sale.Items); err != nil {
			return fmt.Errorf("insert sale items: %w", err)
		}

		for _, item := range sale.Items {
			source := stock.SaleItem(item.ID)
			_, err := s.ledger.RecordMovement(ctx, actor, stock.MovementInput{
				ProductID:      item.ProductID,
				Type:           stock.MovementSale,
				QuantityChange: item.Quantity.Neg(),
				Source:         &source,
			})
			if err != nil {
				return fmt.Errorf("record movement for line %d: %w", item.LineNo, err)
			}
		}

		if sale.IsCredit() {
			if _, err := s.settlement.RecomputeCustomerBalance(ctx, *sale.CustomerID); err != nil {
				return fmt.Errorf("recompute customer balance: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sale created",
		"id", sale.ID,
		"number", sale.Number,
		"total", sale.TotalAmount.String(),
		"status", sale.PaymentStatus,
		"items", len(sale.Items),
	)
	return sale, nil
}

// Delete removes a sale, its items and payments, and restores the stock its
// items consumed. Restricted to privileged roles.
func (s *Service) Delete(ctx context.Context, actor security.Actor, saleID id.ID) error {
	if err := actor.Require(security.CapSaleDelete); err != nil {
		return err
	}

	var restored int
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		sale, err := s.repo.GetForUpdate(ctx, saleID)
		if err != nil {
			return notFound(err, saleID)
		}
		items, err := s.repo.GetItems(ctx, saleID)
		if err != nil {
			return fmt.Errorf("get items: %w", err)
		}

		if _, err := s.settlement.DeletePaymentsForSale(ctx, saleID); err != nil {
			return fmt.Errorf("delete payments: %w", err)
		}

		for _, item := range byProduct(items) {
			reversed, err := s.ledger.ReverseMovementsForItem(ctx, actor, stock.SaleItem(item.ID))
			if err != nil {
				return fmt.Errorf("reverse line %d: %w", item.LineNo, err)
			}
			restored += len(reversed)
		}

		if err := s.repo.Delete(ctx, saleID); err != nil {
			return fmt.Errorf("delete sale: %w", err)
		}

		if sale.CustomerID != nil {
			if _, err := s.settlement.RecomputeCustomerBalance(ctx, *sale.CustomerID); err != nil {
				return fmt.Errorf("recompute customer balance: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "sale deleted", "id", saleID, "reversed_movements", restored, "actor", actor.ID)
	return nil
}

// Get returns a hydrated sale.
func (s *Service) Get(ctx context.Context, actor security.Actor, saleID id.ID) (*Detail, error) {
	if err := actor.Require(security.CapSaleRead); err != nil {
		return nil, err
	}

	sale, err := s.repo.GetByID(ctx, saleID)
	if err != nil {
		return nil, notFound(err, saleID)
	}
	items, err := s.repo.GetItems(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	sale.Items = items

	detail := &Detail{Sale: sale, Items: make([]ItemDetail, 0, len(items))}
	if sale.CustomerID != nil {
		c, err := s.customers.GetByID(ctx, *sale.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("get customer: %w", err)
		}
		detail.Customer = &CustomerRef{ID: c.ID, Name: c.Name, Phone: c.Phone}
	}

	cache := make(map[id.ID]*product.Product)
	for _, item := range items {
		p, ok := cache[item.ProductID]
		if !ok {
			p, err = s.products.GetByID(ctx, item.ProductID)
			if err != nil {
				return nil, fmt.Errorf("get product: %w", err)
			}
			cache[item.ProductID] = p
		}
		detail.Items = append(detail.Items, ItemDetail{
			SaleItem:    item,
			SKU:         p.SKU,
			ProductName: p.Name,
			Unit:        p.Unit,
		})
	}
	return detail, nil
}

// List returns sale headers.
func (s *Service) List(ctx context.Context, actor security.Actor, filter ListFilter) (domain.ListResult[*Sale], error) {
	if err := actor.Require(security.CapSaleRead); err != nil {
		return domain.ListResult[*Sale]{}, err
	}
	return s.repo.List(ctx, filter)
}

func (s *Service) requireActiveCustomer(ctx context.Context, customerID id.ID) error {
	c, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewNotFound("customer", customerID.String())
		}
		return err
	}
	if !c.IsActive {
		return apperror.NewInactive("customer", customerID.String())
	}
	return nil
}

func (s *Service) requireActiveProduct(ctx context.Context, productID id.ID) error {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewNotFound("product", productID.String())
		}
		return err
	}
	if !p.IsActive {
		return apperror.NewInactive("product", productID.String())
	}
	return nil
}

func notFound(err error, saleID id.ID) error {
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound("sale", saleID.String())
	}
	return err
}

// byProduct orders items by product id, the order inventory rows are locked in.
func byProduct(items []SaleItem) []SaleItem {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b SaleItem) int { return id.Compare(a.ProductID, b.ProductID) })
	return sorted
}

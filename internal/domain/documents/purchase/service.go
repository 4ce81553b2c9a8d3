package purchase

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
	"hwshop/internal/domain/catalogs/product"
	"hwshop/internal/domain/catalogs/supplier"
	"hwshop/internal/domain/documents"
	"hwshop/internal/domain/registers/stock"
	"hwshop/pkg/logger"
)

// Products reads catalog products.
type Products interface {
	GetByID(ctx context.Context, productID id.ID) (*product.Product, error)
}

// Suppliers reads catalog suppliers.
type Suppliers interface {
	GetByID(ctx context.Context, supplierID id.ID) (*supplier.Supplier, error)
}

// StockLedger is the part of the stock service a purchase needs.
type StockLedger interface {
	RecordMovement(ctx context.Context, actor security.Actor, in stock.MovementInput) (id.ID, error)
	ReverseMovementsForItem(ctx context.Context, actor security.Actor, ref stock.ItemRef) ([]stock.Movement, error)
	CurrentQuantity(ctx context.Context, productID id.ID) (types.Quantity, error)
}

// Numerator issues document numbers.
type Numerator interface {
	Next(ctx context.Context, prefix string, at time.Time) (string, error)
}

// Service creates and deletes purchases together with their stock movements.
type Service struct {
	repo      Repository
	products  Products
	suppliers Suppliers
	ledger    StockLedger
	numerator Numerator
	txManager tx.Manager
	now       func() time.Time
}

// NewService creates a new purchase service.
func NewService(
	repo Repository,
	products Products,
	suppliers Suppliers,
	ledger StockLedger,
	numerator Numerator,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		products:  products,
		suppliers: suppliers,
		ledger:    ledger,
		numerator: numerator,
		txManager: txManager,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create records a purchase: header, items and one positive stock movement
// per item, all in one transaction. No stock check is needed.
func (s *Service) Create(ctx context.Context, actor security.Actor, in CreateInput) (*Purchase, error) {
	if err := actor.Require(security.CapPurchaseCreate); err != nil {
		return nil, err
	}
	if id.IsNil(in.SupplierID) {
		return nil, apperror.NewValidation("supplier id is required").WithDetail("field", "supplierId")
	}

	status := in.PaymentStatus
	if status == "" {
		status = documents.StatusPending
	}
	if _, err := documents.ParsePaymentStatus(string(status)); err != nil {
		return nil, err
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
	purchaseDate := now
	if in.PurchaseDate != nil {
		purchaseDate = in.PurchaseDate.UTC()
	}

	p := &Purchase{
		ID:             id.New(),
		SupplierID:     in.SupplierID,
		InvoiceNumber:  in.InvoiceNumber,
		PurchaseDate:   purchaseDate,
		Subtotal:       subtotal,
		DiscountAmount: in.DiscountAmount,
		TotalAmount:    total,
		PaymentStatus:  status,
		Notes:          in.Notes,
		CreatedBy:      actor.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	p.Items = make([]PurchaseItem, len(lines))
	for i, l := range lines {
		p.Items[i] = PurchaseItem{
			ID:         id.New(),
			PurchaseID: p.ID,
			LineNo:     i + 1,
			ProductID:  l.ProductID,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
			Discount:   l.Discount,
			LineTotal:  l.LineTotal,
		}
	}

	p.Number, err = s.numerator.Next(ctx, NumberPrefix, purchaseDate)
	if err != nil {
		return nil, fmt.Errorf("generate number: %w", err)
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		sup, err := s.suppliers.GetByID(ctx, in.SupplierID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("supplier", in.SupplierID.String())
			}
			return err
		}
		if !sup.IsActive {
			return apperror.NewInactive("supplier", in.SupplierID.String())
		}

		checked := make(map[id.ID]bool)
		for _, l := range lines {
			if checked[l.ProductID] {
				continue
			}
			checked[l.ProductID] = true
			if err := s.requireActiveProduct(ctx, l.ProductID); err != nil {
				return err
			}
		}

		if err := s.repo.Create(ctx, p); err != nil {
			return fmt.Errorf("create purchase: %w", err)
		}
		if err := s.repo.InsertItems(ctx, p.Items); err != nil {
			return fmt.Errorf("insert purchase items: %w", err)
		}

		for _, item := range byProduct(p.Items) {
			source := stock.PurchaseItem(item.ID)
			_, err := s.ledger.RecordMovement(ctx, actor, stock.MovementInput{
				ProductID:      item.ProductID,
				Type:           stock.MovementPurchase,
				QuantityChange: item.Quantity,
				Source:         &source,
			})
			if err != nil {
				return fmt.Errorf("record movement for line %d: %w", item.LineNo, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase created",
		"id", p.ID,
		"number", p.Number,
		"total", p.TotalAmount.String(),
		"items", len(p.Items),
	)
	return p, nil
}

// Delete removes a purchase and withdraws the stock its items added.
// Stock already sold may go negative; that is logged, not rejected.
func (s *Service) Delete(ctx context.Context, actor security.Actor, purchaseID id.ID) error {
	if err := actor.Require(security.CapPurchaseDelete); err != nil {
		return err
	}

	var negative []id.ID
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetForUpdate(ctx, purchaseID); err != nil {
			return notFound(err, purchaseID)
		}
		items, err := s.repo.GetItems(ctx, purchaseID)
		if err != nil {
			return fmt.Errorf("get items: %w", err)
		}

		touched := make(map[id.ID]bool)
		for _, item := range byProduct(items) {
			if _, err := s.ledger.ReverseMovementsForItem(ctx, actor, stock.PurchaseItem(item.ID)); err != nil {
				return fmt.Errorf("reverse line %d: %w", item.LineNo, err)
			}
			touched[item.ProductID] = true
		}

		if err := s.repo.Delete(ctx, purchaseID); err != nil {
			return fmt.Errorf("delete purchase: %w", err)
		}

		for productID := range touched {
			qty, err := s.ledger.CurrentQuantity(ctx, productID)
			if err != nil {
				return err
			}
			if qty.IsNegative() {
				negative = append(negative, productID)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if len(negative) > 0 {
		logger.Warn(ctx, "purchase deletion left negative stock", "purchase_id", purchaseID, "products", negative)
	}
	logger.Info(ctx, "purchase deleted", "id", purchaseID, "actor", actor.ID)
	return nil
}

// UpdatePaymentStatus sets the externally managed payment status.
func (s *Service) UpdatePaymentStatus(ctx context.Context, actor security.Actor, purchaseID id.ID, status documents.PaymentStatus) error {
	if err := actor.Require(security.CapPurchaseUpdate); err != nil {
		return err
	}
	if _, err := documents.ParsePaymentStatus(string(status)); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetForUpdate(ctx, purchaseID); err != nil {
			return notFound(err, purchaseID)
		}
		return s.repo.SetPaymentStatus(ctx, purchaseID, status, s.now())
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "purchase payment status updated", "id", purchaseID, "status", status)
	return nil
}

// Get returns a hydrated purchase.
func (s *Service) Get(ctx context.Context, actor security.Actor, purchaseID id.ID) (*Detail, error) {
	if err := actor.Require(security.CapPurchaseRead); err != nil {
		return nil, err
	}

	p, err := s.repo.GetByID(ctx, purchaseID)
	if err != nil {
		return nil, notFound(err, purchaseID)
	}
	items, err := s.repo.GetItems(ctx, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	p.Items = items

	sup, err := s.suppliers.GetByID(ctx, p.SupplierID)
	if err != nil {
		return nil, fmt.Errorf("get supplier: %w", err)
	}

	detail := &Detail{Purchase: p, SupplierName: sup.Name, Items: make([]ItemDetail, 0, len(items))}
	for _, item := range items {
		prod, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("get product: %w", err)
		}
		detail.Items = append(detail.Items, ItemDetail{
			PurchaseItem: item,
			SKU:          prod.SKU,
			ProductName:  prod.Name,
			Unit:         prod.Unit,
		})
	}
	return detail, nil
}

// List returns purchase headers.
func (s *Service) List(ctx context.Context, actor security.Actor, filter ListFilter) (domain.ListResult[*Purchase], error) {
	if err := actor.Require(security.CapPurchaseRead); err != nil {
		return domain.ListResult[*Purchase]{}, err
	}
	return s.repo.List(ctx, filter)
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

func notFound(err error, purchaseID id.ID) error {
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound("purchase", purchaseID.String())
	}
	return err
}

// byProduct orders items by product id, the order inventory rows are locked in.
func byProduct(items []PurchaseItem) []PurchaseItem {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b PurchaseItem) int { return id.Compare(a.ProductID, b.ProductID) })
	return sorted
}

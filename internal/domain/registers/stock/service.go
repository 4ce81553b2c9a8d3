package stock

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
	"hwshop/pkg/logger"
)

// Service records movements and keeps inventory snapshots in step with them.
type Service struct {
	repo      Repository
	txManager tx.Manager
	now       func() time.Time
}

// NewService creates a new stock ledger service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// InitInventory creates the zero-quantity snapshot of a new product.
func (s *Service) InitInventory(ctx context.Context, productID id.ID) error {
	return s.repo.EnsureInventory(ctx, productID)
}

// RecordMovement appends one movement and applies it to the product's inventory
// in the same transaction.
//
// A negative adjustment that would leave stock below zero is rejected unless
// the reason is correction. Sale and purchase movements are authorized by the
// document operation that emits them.
func (s *Service) RecordMovement(ctx context.Context, actor security.Actor, in MovementInput) (id.ID, error) {
	if err := in.validate(); err != nil {
		return id.ID{}, err
	}
	if in.Type == MovementAdjustment {
		if err := actor.Require(security.CapStockAdjust); err != nil {
			return id.ID{}, err
		}
	}

	m := &Movement{
		ID:               id.New(),
		ProductID:        in.ProductID,
		MovementType:     in.Type,
		QuantityChange:   in.QuantityChange,
		AdjustmentReason: in.Reason,
		Notes:            in.Notes,
		CreatedBy:        actor.ID,
		CreatedAt:        s.now(),
	}
	if in.Source != nil {
		itemID := in.Source.ItemID
		if in.Source.Type == MovementSale {
			m.SaleItemID = &itemID
		} else {
			m.PurchaseItemID = &itemID
		}
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.EnsureInventory(ctx, in.ProductID); err != nil {
			return err
		}
		locked, err := s.repo.LockInventory(ctx, []id.ID{in.ProductID})
		if err != nil {
			return fmt.Errorf("lock inventory: %w", err)
		}
		current := locked[in.ProductID].Quantity

		if in.Type == MovementAdjustment && in.QuantityChange.IsNegative() &&
			*in.Reason != ReasonCorrection && current.Add(in.QuantityChange).IsNegative() {
			return apperror.NewNegativeStock(in.ProductID.String(), current, in.QuantityChange, string(*in.Reason))
		}

		if err := s.repo.InsertMovement(ctx, m); err != nil {
			return fmt.Errorf("insert movement: %w", err)
		}
		if err := s.repo.ApplyInventoryDelta(ctx, in.ProductID, in.QuantityChange, actor.ID, m.CreatedAt); err != nil {
			return fmt.Errorf("apply inventory delta: %w", err)
		}
		return nil
	})
	if err != nil {
		return id.ID{}, err
	}

	logger.Debug(ctx, "stock movement recorded",
		"movement_id", m.ID,
		"product_id", m.ProductID,
		"type", m.MovementType,
		"change", m.QuantityChange.String(),
	)
	return m.ID, nil
}

// ReverseMovementsForItem deletes the movements of a document line and applies
// the negated quantities to inventory in the same transaction.
// Returns the reversed movements.
func (s *Service) ReverseMovementsForItem(ctx context.Context, actor security.Actor, ref ItemRef) ([]Movement, error) {
	if ref.Type == MovementAdjustment {
		return nil, apperror.NewValidation("adjustments cannot be reversed by line")
	}

	var reversed []Movement
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		deleted, err := s.repo.DeleteMovementsByItem(ctx, ref)
		if err != nil {
			return fmt.Errorf("delete movements: %w", err)
		}

		now := s.now()
		for _, m := range deleted {
			if err := s.repo.ApplyInventoryDelta(ctx, m.ProductID, m.QuantityChange.Neg(), actor.ID, now); err != nil {
				return fmt.Errorf("apply inventory delta: %w", err)
			}
		}
		reversed = deleted
		return nil
	})
	if err != nil {
		return nil, err
	}

	return reversed, nil
}

// CheckAvailability locks the inventory rows of every requested product and
// fails with INSUFFICIENT_STOCK naming the first shortfall.
// Must be called inside the transaction that deducts the stock.
func (s *Service) CheckAvailability(ctx context.Context, requested map[id.ID]types.Quantity) error {
	productIDs := make([]id.ID, 0, len(requested))
	for pid := range requested {
		productIDs = append(productIDs, pid)
	}
	slices.SortFunc(productIDs, id.Compare)

	for _, pid := range productIDs {
		if err := s.repo.EnsureInventory(ctx, pid); err != nil {
			return err
		}
	}

	locked, err := s.repo.LockInventory(ctx, productIDs)
	if err != nil {
		return fmt.Errorf("lock inventory: %w", err)
	}

	for _, pid := range productIDs {
		available := locked[pid].Quantity
		if requested[pid].GreaterThan(available) {
			return apperror.NewInsufficientStock(pid.String(), requested[pid], available)
		}
	}
	return nil
}

// AdjustInput is a manual stock adjustment.
type AdjustInput struct {
	ProductID      id.ID
	QuantityChange types.Quantity
	Reason         AdjustmentReason
	Notes          string
}

// Adjust records a manual adjustment and returns the resulting snapshot.
func (s *Service) Adjust(ctx context.Context, actor security.Actor, in AdjustInput) (id.ID, InventoryView, error) {
	if err := actor.Require(security.CapStockAdjust); err != nil {
		return id.ID{}, InventoryView{}, err
	}
	if _, err := ParseReason(string(in.Reason)); err != nil {
		return id.ID{}, InventoryView{}, err
	}

	reason := in.Reason
	var (
		movementID id.ID
		view       InventoryView
	)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		movementID, err = s.RecordMovement(ctx, actor, MovementInput{
			ProductID:      in.ProductID,
			Type:           MovementAdjustment,
			QuantityChange: in.QuantityChange,
			Reason:         &reason,
			Notes:          in.Notes,
		})
		if err != nil {
			return err
		}
		view, err = s.repo.GetInventory(ctx, in.ProductID)
		return err
	})
	if err != nil {
		return id.ID{}, InventoryView{}, err
	}

	logger.Info(ctx, "stock adjusted",
		"product_id", in.ProductID,
		"change", in.QuantityChange.String(),
		"reason", in.Reason,
		"quantity", view.Quantity.String(),
	)
	return movementID, view, nil
}

// GetInventory returns the snapshot of one product.
func (s *Service) GetInventory(ctx context.Context, actor security.Actor, productID id.ID) (InventoryView, error) {
	if err := actor.Require(security.CapStockRead); err != nil {
		return InventoryView{}, err
	}
	view, err := s.repo.GetInventory(ctx, productID)
	if apperror.IsNotFound(err) {
		return InventoryView{}, apperror.NewNotFound("inventory", productID.String())
	}
	return view, err
}

// ListInventory lists snapshots with optional low-stock filtering.
func (s *Service) ListInventory(ctx context.Context, actor security.Actor, filter InventoryFilter) (domain.ListResult[InventoryView], error) {
	if err := actor.Require(security.CapStockRead); err != nil {
		return domain.ListResult[InventoryView]{}, err
	}
	return s.repo.ListInventory(ctx, filter)
}

// ListMovements returns movement history, newest first.
func (s *Service) ListMovements(ctx context.Context, actor security.Actor, filter MovementFilter) (domain.ListResult[Movement], error) {
	if err := actor.Require(security.CapStockRead); err != nil {
		return domain.ListResult[Movement]{}, err
	}
	return s.repo.ListMovements(ctx, filter)
}

// Verify compares a product's snapshot with its movement sum.
func (s *Service) Verify(ctx context.Context, productID id.ID) (snapshot, ledger types.Quantity, err error) {
	view, err := s.repo.GetInventory(ctx, productID)
	if err != nil {
		return snapshot, ledger, err
	}
	ledger, err = s.repo.SumMovements(ctx, productID)
	if err != nil {
		return snapshot, ledger, err
	}
	return view.Quantity, ledger, nil
}

// RebuildInventory recomputes every snapshot from movement sums.
func (s *Service) RebuildInventory(ctx context.Context, actor security.Actor) (int64, error) {
	if err := actor.Require(security.CapLedgerAdmin); err != nil {
		return 0, err
	}

	var changed int64
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		changed, err = s.repo.RebuildInventory(ctx, actor.ID, s.now())
		return err
	})
	if err != nil {
		return 0, err
	}

	logger.Info(ctx, "inventory rebuilt from movements", "changed_rows", changed)
	return changed, nil
}

// CurrentQuantity returns a product's on-hand quantity without locking.
func (s *Service) CurrentQuantity(ctx context.Context, productID id.ID) (types.Quantity, error) {
	view, err := s.repo.GetInventory(ctx, productID)
	if err != nil {
		return types.Quantity{}, err
	}
	return view.Quantity, nil
}

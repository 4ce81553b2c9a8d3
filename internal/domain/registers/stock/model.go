// Package stock provides the stock movement ledger and the inventory aggregator.
//
// Every change to on-hand quantity is a signed Movement. The Inventory row of a
// product always equals the sum of its movements; it is written only by
// RecordMovement, ReverseMovementsForItem and RebuildInventory.
package stock

import (
	"time"

	"hwshop/internal/core/apperror"
	"hwshop/internal/core/id"
	"hwshop/internal/core/types"
)

// MovementType is the cause of a movement.
type MovementType string

const (
	MovementPurchase   MovementType = "purchase"
	MovementSale       MovementType = "sale"
	MovementAdjustment MovementType = "adjustment"
)

// Valid reports whether t is a known movement type.
func (t MovementType) Valid() bool {
	switch t {
	case MovementPurchase, MovementSale, MovementAdjustment:
		return true
	}
	return false
}

// AdjustmentReason explains a manual adjustment.
type AdjustmentReason string

const (
	// ReasonCorrection may drive stock below zero to fix known-bad history.
	ReasonCorrection AdjustmentReason = "correction"
	ReasonExpired    AdjustmentReason = "expired"
	ReasonDamaged    AdjustmentReason = "damaged"
	ReasonLost       AdjustmentReason = "lost"
	ReasonTheft      AdjustmentReason = "theft"
	ReasonBreakage   AdjustmentReason = "breakage"
	ReasonFound      AdjustmentReason = "found"
	ReasonRecount    AdjustmentReason = "recount"
)

// ParseReason validates an adjustment reason.
func ParseReason(s string) (AdjustmentReason, error) {
	r := AdjustmentReason(s)
	switch r {
	case ReasonCorrection, ReasonExpired, ReasonDamaged, ReasonLost,
		ReasonTheft, ReasonBreakage, ReasonFound, ReasonRecount:
		return r, nil
	}
	return "", apperror.NewValidation("unknown adjustment reason").WithDetail("reason", s)
}

// Movement is one audit-log entry of the stock ledger.
type Movement struct {
	ID               id.ID             `db:"id" json:"id"`
	ProductID        id.ID             `db:"product_id" json:"productId"`
	MovementType     MovementType      `db:"movement_type" json:"movementType"`
	QuantityChange   types.Quantity    `db:"quantity_change" json:"quantityChange"`
	SaleItemID       *id.ID            `db:"sale_item_id" json:"saleItemId,omitempty"`
	PurchaseItemID   *id.ID            `db:"purchase_item_id" json:"purchaseItemId,omitempty"`
	AdjustmentReason *AdjustmentReason `db:"adjustment_reason" json:"adjustmentReason,omitempty"`
	Notes            string            `db:"notes" json:"notes,omitempty"`
	CreatedBy        string            `db:"created_by" json:"createdBy"`
	CreatedAt        time.Time         `db:"created_at" json:"createdAt"`
}

// Inventory is the current-quantity snapshot of one product.
type Inventory struct {
	ProductID   id.ID          `db:"product_id" json:"productId"`
	Quantity    types.Quantity `db:"quantity" json:"quantity"`
	LastUpdated time.Time      `db:"last_updated" json:"lastUpdated"`
	UpdatedBy   string         `db:"updated_by" json:"updatedBy,omitempty"`
}

// InventoryView joins inventory with product fields for listings.
type InventoryView struct {
	Inventory

	SKU             string         `db:"sku" json:"sku"`
	Name            string         `db:"name" json:"name"`
	Unit            string         `db:"unit" json:"unit"`
	IsActive        bool           `db:"is_active" json:"isActive"`
	MinStockLevel   types.Quantity `db:"min_stock_level" json:"minStockLevel"`
	ReorderQuantity types.Quantity `db:"reorder_quantity" json:"reorderQuantity"`
}

// IsLowStock reports quantity at or below the product's minimum level.
func (v InventoryView) IsLowStock() bool {
	return v.Quantity.LessThanOrEqual(v.MinStockLevel)
}

// ItemRef names the document line a sale or purchase movement belongs to.
type ItemRef struct {
	Type   MovementType
	ItemID id.ID
}

// SaleItem returns the reference of a sale line.
func SaleItem(itemID id.ID) ItemRef { return ItemRef{Type: MovementSale, ItemID: itemID} }

// PurchaseItem returns the reference of a purchase line.
func PurchaseItem(itemID id.ID) ItemRef { return ItemRef{Type: MovementPurchase, ItemID: itemID} }

// MovementInput is the argument of RecordMovement.
type MovementInput struct {
	ProductID      id.ID
	Type           MovementType
	QuantityChange types.Quantity
	Reason         *AdjustmentReason
	Source         *ItemRef
	Notes          string
}

// validate checks the ledger preconditions that need no store access.
func (in MovementInput) validate() error {
	if id.IsNil(in.ProductID) {
		return apperror.NewValidation("product id is required").WithDetail("field", "productId")
	}
	if !in.Type.Valid() {
		return apperror.NewValidation("unknown movement type").WithDetail("type", string(in.Type))
	}
	if in.QuantityChange.IsZero() {
		return apperror.NewValidation("quantity change must not be zero").WithDetail("field", "quantityChange")
	}
	if !types.HasQuantityPrecision(in.QuantityChange) {
		return apperror.NewValidation("quantity allows at most 3 decimal places").WithDetail("field", "quantityChange")
	}

	switch in.Type {
	case MovementAdjustment:
		if in.Reason == nil {
			return apperror.NewValidation("adjustment reason is required").WithDetail("field", "reason")
		}
		if _, err := ParseReason(string(*in.Reason)); err != nil {
			return err
		}
		if in.Source != nil {
			return apperror.NewValidation("adjustments must not reference a document line")
		}
	default:
		if in.Reason != nil {
			return apperror.NewValidation("reason is only allowed for adjustments").WithDetail("field", "reason")
		}
		if in.Source == nil || in.Source.Type != in.Type || id.IsNil(in.Source.ItemID) {
			return apperror.NewValidation("sale and purchase movements must reference exactly one line of their type")
		}
		if in.Type == MovementSale && in.QuantityChange.IsPositive() {
			return apperror.NewValidation("sale movements must decrease stock")
		}
		if in.Type == MovementPurchase && in.QuantityChange.IsNegative() {
			return apperror.NewValidation("purchase movements must increase stock")
		}
	}
	return nil
}

// MovementFilter for movement history queries.
type MovementFilter struct {
	ProductID *id.ID
	Type      *MovementType
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// InventoryFilter for inventory listings.
type InventoryFilter struct {
	Search       string
	LowStockOnly bool
	ActiveOnly   bool
	Limit        int
	Offset       int
}

// Package product provides the Product catalog.
package product

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"hwshop/internal/core/apperror"
	"hwshop/internal/core/entity"
	"hwshop/internal/core/types"
)

// Product is a sellable item. SKU is unique across the catalog.
type Product struct {
	entity.Catalog

	SKU             string              `db:"sku" json:"sku"`
	Name            string              `db:"name" json:"name"`
	Description     string              `db:"description" json:"description,omitempty"`
	Category        string              `db:"category" json:"category,omitempty"`
	Unit            string              `db:"unit" json:"unit"`
	PurchasePrice   types.Money         `db:"purchase_price" json:"purchasePrice"`
	RetailPrice     types.Money         `db:"retail_price" json:"retailPrice"`
	WholesalePrice  decimal.NullDecimal `db:"wholesale_price" json:"wholesalePrice"`
	MinStockLevel   types.Quantity      `db:"min_stock_level" json:"minStockLevel"`
	ReorderQuantity types.Quantity      `db:"reorder_quantity" json:"reorderQuantity"`
}

// NewProduct creates an active product with generated ID.
func NewProduct(sku, name, unit string) *Product {
	return &Product{
		Catalog: entity.NewCatalog(),
		SKU:     sku,
		Name:    name,
		Unit:    unit,
	}
}

// Validate checks price and stock-level invariants.
func (p *Product) Validate(_ context.Context) error {
	p.SKU = strings.TrimSpace(p.SKU)
	p.Name = strings.TrimSpace(p.Name)

	switch {
	case p.SKU == "":
		return apperror.NewValidation("sku is required").WithDetail("field", "sku")
	case p.Name == "":
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	case p.Unit == "":
		return apperror.NewValidation("unit is required").WithDetail("field", "unit")
	case p.PurchasePrice.IsNegative():
		return apperror.NewValidation("purchase price must not be negative").WithDetail("field", "purchasePrice")
	case p.RetailPrice.LessThan(p.PurchasePrice):
		return apperror.NewValidation("retail price must be at least the purchase price").
			WithDetail("field", "retailPrice")
	case p.WholesalePrice.Valid && p.WholesalePrice.Decimal.IsNegative():
		return apperror.NewValidation("wholesale price must not be negative").WithDetail("field", "wholesalePrice")
	case p.WholesalePrice.Valid && p.WholesalePrice.Decimal.GreaterThan(p.RetailPrice):
		return apperror.NewValidation("wholesale price must not exceed the retail price").
			WithDetail("field", "wholesalePrice")
	case p.MinStockLevel.IsNegative():
		return apperror.NewValidation("min stock level must not be negative").WithDetail("field", "minStockLevel")
	case p.ReorderQuantity.IsNegative():
		return apperror.NewValidation("reorder quantity must not be negative").WithDetail("field", "reorderQuantity")
	}

	if !types.HasMoneyPrecision(p.PurchasePrice) || !types.HasMoneyPrecision(p.RetailPrice) ||
		(p.WholesalePrice.Valid && !types.HasMoneyPrecision(p.WholesalePrice.Decimal)) {
		return apperror.NewValidation("prices allow at most 2 decimal places")
	}
	if !types.HasQuantityPrecision(p.MinStockLevel) || !types.HasQuantityPrecision(p.ReorderQuantity) {
		return apperror.NewValidation("quantities allow at most 3 decimal places")
	}

	return nil
}

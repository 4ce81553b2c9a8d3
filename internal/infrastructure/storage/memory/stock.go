package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"hwshop/internal/core/apperror"
	"hwshop/internal/core/id"
	"hwshop/internal/core/types"
	"hwshop/internal/domain"
	"hwshop/internal/domain/registers/stock"
)

// StockRepo implements stock.Repository.
type StockRepo struct {
	s *Store
}

var _ stock.Repository = (*StockRepo)(nil)

func (r *StockRepo) EnsureInventory(ctx context.Context, productID id.ID) error {
	return r.s.do(ctx, "stock.EnsureInventory", func(st *state) error {
		if _, ok := st.products[productID]; !ok {
			return apperror.NewNotFound("product", productID.String())
		}
		if _, ok := st.inventory[productID]; !ok {
			st.inventory[productID] = stock.Inventory{ProductID: productID, LastUpdated: time.Now().UTC()}
		}
		return nil
	})
}

func (r *StockRepo) LockInventory(ctx context.Context, productIDs []id.ID) (map[id.ID]stock.Inventory, error) {
	out := make(map[id.ID]stock.Inventory, len(productIDs))
	err := r.s.do(ctx, "stock.LockInventory", func(st *state) error {
		for _, pid := range productIDs {
			if inv, ok := st.inventory[pid]; ok {
				out[pid] = inv
			}
		}
		return nil
	})
	return out, err
}

func (r *StockRepo) InsertMovement(ctx context.Context, m *stock.Movement) error {
	return r.s.do(ctx, "stock.InsertMovement", func(st *state) error {
		if _, ok := st.products[m.ProductID]; !ok {
			return apperror.NewNotFound("product", m.ProductID.String())
		}
		if m.SaleItemID != nil {
			if _, ok := st.saleItems[*m.SaleItemID]; !ok {
				return apperror.NewNotFound("sale item", m.SaleItemID.String())
			}
		}
		if m.PurchaseItemID != nil {
			if _, ok := st.purchaseItems[*m.PurchaseItemID]; !ok {
				return apperror.NewNotFound("purchase item", m.PurchaseItemID.String())
			}
		}
		st.movements[m.ID] = *m
		return nil
	})
}

func (r *StockRepo) ApplyInventoryDelta(ctx context.Context, productID id.ID, delta types.Quantity, actorID string, at time.Time) error {
	return r.s.do(ctx, "stock.ApplyInventoryDelta", func(st *state) error {
		inv := st.inventory[productID]
		inv.ProductID = productID
		inv.Quantity = inv.Quantity.Add(delta)
		inv.LastUpdated = at
		inv.UpdatedBy = actorID
		st.inventory[productID] = inv
		return nil
	})
}

func (r *StockRepo) DeleteMovementsByItem(ctx context.Context, ref stock.ItemRef) ([]stock.Movement, error) {
	var deleted []stock.Movement
	err := r.s.do(ctx, "stock.DeleteMovementsByItem", func(st *state) error {
		for mid, m := range st.movements {
			var itemID *id.ID
			switch ref.Type {
			case stock.MovementSale:
				itemID = m.SaleItemID
			case stock.MovementPurchase:
				itemID = m.PurchaseItemID
			}
			if itemID != nil && *itemID == ref.ItemID {
				deleted = append(deleted, m)
				delete(st.movements, mid)
			}
		}
		return nil
	})
	return deleted, err
}

func (r *StockRepo) GetInventory(ctx context.Context, productID id.ID) (stock.InventoryView, error) {
	var view stock.InventoryView
	err := r.s.do(ctx, "stock.GetInventory", func(st *state) error {
		inv, ok := st.inventory[productID]
		if !ok {
			return apperror.NewNotFound("inventory", productID.String())
		}
		view = inventoryView(st, inv)
		return nil
	})
	return view, err
}

func inventoryView(st *state, inv stock.Inventory) stock.InventoryView {
	p := st.products[inv.ProductID]
	return stock.InventoryView{
		Inventory:       inv,
		SKU:             p.SKU,
		Name:            p.Name,
		Unit:            p.Unit,
		IsActive:        p.IsActive,
		MinStockLevel:   p.MinStockLevel,
		ReorderQuantity: p.ReorderQuantity,
	}
}

func (r *StockRepo) ListInventory(ctx context.Context, filter stock.InventoryFilter) (domain.ListResult[stock.InventoryView], error) {
	var out domain.ListResult[stock.InventoryView]
	err := r.s.do(ctx, "stock.ListInventory", func(st *state) error {
		search := strings.ToLower(strings.TrimSpace(filter.Search))
		var items []stock.InventoryView
		for _, inv := range st.inventory {
			v := inventoryView(st, inv)
			if filter.ActiveOnly && !v.IsActive {
				continue
			}
			if filter.LowStockOnly && !v.IsLowStock() {
				continue
			}
			if search != "" && !containsFold(search, v.SKU, v.Name) {
				continue
			}
			items = append(items, v)
		}
		slices.SortFunc(items, func(a, b stock.InventoryView) int {
			if c := strings.Compare(a.Name, b.Name); c != 0 {
				return c
			}
			return id.Compare(a.ProductID, b.ProductID)
		})
		out = domain.Paginate(items, filter.Limit, filter.Offset)
		return nil
	})
	return out, err
}

func (r *StockRepo) ListMovements(ctx context.Context, filter stock.MovementFilter) (domain.ListResult[stock.Movement], error) {
	var out domain.ListResult[stock.Movement]
	err := r.s.do(ctx, "stock.ListMovements", func(st *state) error {
		var items []stock.Movement
		for _, m := range st.movements {
			if filter.ProductID != nil && m.ProductID != *filter.ProductID {
				continue
			}
			if filter.Type != nil && m.MovementType != *filter.Type {
				continue
			}
			if filter.From != nil && m.CreatedAt.Before(*filter.From) {
				continue
			}
			if filter.To != nil && !m.CreatedAt.Before(*filter.To) {
				continue
			}
			items = append(items, m)
		}
		slices.SortFunc(items, func(a, b stock.Movement) int {
			if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
				return c
			}
			return id.Compare(b.ID, a.ID)
		})
		out = domain.Paginate(items, filter.Limit, filter.Offset)
		return nil
	})
	return out, err
}

func (r *StockRepo) SumMovements(ctx context.Context, productID id.ID) (types.Quantity, error) {
	var sum types.Quantity
	err := r.s.do(ctx, "stock.SumMovements", func(st *state) error {
		sum = movementSum(st, productID)
		return nil
	})
	return sum, err
}

func movementSum(st *state, productID id.ID) types.Quantity {
	var sum types.Quantity
	for _, m := range st.movements {
		if m.ProductID == productID {
			sum = sum.Add(m.QuantityChange)
		}
	}
	return sum
}

func (r *StockRepo) RebuildInventory(ctx context.Context, actorID string, at time.Time) (int64, error) {
	var changed int64
	err := r.s.do(ctx, "stock.RebuildInventory", func(st *state) error {
		for pid := range st.products {
			want := movementSum(st, pid)
			inv, ok := st.inventory[pid]
			if ok && inv.Quantity.Equal(want) {
				continue
			}
			st.inventory[pid] = stock.Inventory{ProductID: pid, Quantity: want, LastUpdated: at, UpdatedBy: actorID}
			changed++
		}
		return nil
	})
	return changed, err
}

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
	"hwshop/internal/domain/documents"
	"hwshop/internal/domain/documents/purchase"
	"hwshop/internal/domain/documents/sale"
)

// SaleRepo implements sale.Repository.
type SaleRepo struct {
	s *Store
}

var _ sale.Repository = (*SaleRepo)(nil)

func (r *SaleRepo) Create(ctx context.Context, s *sale.Sale) error {
	return r.s.do(ctx, "sale.Create", func(st *state) error {
		for _, other := range st.sales {
			if other.Number == s.Number {
				return apperror.NewDuplicate("sale", "number", s.Number)
			}
		}
		if s.CustomerID != nil {
			if _, ok := st.customers[*s.CustomerID]; !ok {
				return apperror.NewNotFound("customer", s.CustomerID.String())
			}
		}
		row := *s
		row.Items = nil
		st.sales[s.ID] = row
		return nil
	})
}

func (r *SaleRepo) InsertItems(ctx context.Context, items []sale.SaleItem) error {
	return r.s.do(ctx, "sale.InsertItems", func(st *state) error {
		for _, it := range items {
			if _, ok := st.sales[it.SaleID]; !ok {
				return apperror.NewNotFound("sale", it.SaleID.String())
			}
			if _, ok := st.products[it.ProductID]; !ok {
				return apperror.NewNotFound("product", it.ProductID.String())
			}
			st.saleItems[it.ID] = it
		}
		return nil
	})
}

func (r *SaleRepo) GetByID(ctx context.Context, saleID id.ID) (*sale.Sale, error) {
	var out *sale.Sale
	err := r.s.do(ctx, "sale.GetByID", func(st *state) error {
		s, ok := st.sales[saleID]
		if !ok {
			return apperror.NewNotFound("sale", saleID.String())
		}
		out = &s
		return nil
	})
	return out, err
}

func (r *SaleRepo) GetForUpdate(ctx context.Context, saleID id.ID) (*sale.Sale, error) {
	return r.GetByID(ctx, saleID)
}

func (r *SaleRepo) GetItems(ctx context.Context, saleID id.ID) ([]sale.SaleItem, error) {
	var items []sale.SaleItem
	err := r.s.do(ctx, "sale.GetItems", func(st *state) error {
		for _, it := range st.saleItems {
			if it.SaleID == saleID {
				items = append(items, it)
			}
		}
		slices.SortFunc(items, func(a, b sale.SaleItem) int { return a.LineNo - b.LineNo })
		return nil
	})
	return items, err
}

// Delete refuses while movements or payments still reference the sale.
func (r *SaleRepo) Delete(ctx context.Context, saleID id.ID) error {
	return r.s.do(ctx, "sale.Delete", func(st *state) error {
		if _, ok := st.sales[saleID]; !ok {
			return apperror.NewNotFound("sale", saleID.String())
		}
		for _, p := range st.payments {
			if p.SaleID == saleID {
				return apperror.NewReferenced("sale", saleID.String())
			}
		}
		for itemID, it := range st.saleItems {
			if it.SaleID != saleID {
				continue
			}
			for _, m := range st.movements {
				if m.SaleItemID != nil && *m.SaleItemID == itemID {
					return apperror.NewReferenced("sale item", itemID.String())
				}
			}
		}
		for itemID, it := range st.saleItems {
			if it.SaleID == saleID {
				delete(st.saleItems, itemID)
			}
		}
		delete(st.sales, saleID)
		return nil
	})
}

func (r *SaleRepo) List(ctx context.Context, filter sale.ListFilter) (domain.ListResult[*sale.Sale], error) {
	var out domain.ListResult[*sale.Sale]
	err := r.s.do(ctx, "sale.List", func(st *state) error {
		search := strings.ToLower(strings.TrimSpace(filter.Search))
		var items []*sale.Sale
		for _, s := range st.sales {
			if filter.CustomerID != nil && (s.CustomerID == nil || *s.CustomerID != *filter.CustomerID) {
				continue
			}
			if filter.Status != nil && s.PaymentStatus != *filter.Status {
				continue
			}
			if !inRange(s.SaleDate, filter.From, filter.To) {
				continue
			}
			if search != "" && !containsFold(search, s.Number, s.Notes) {
				continue
			}
			items = append(items, &s)
		}
		slices.SortFunc(items, func(a, b *sale.Sale) int {
			if c := b.SaleDate.Compare(a.SaleDate); c != 0 {
				return c
			}
			return strings.Compare(b.Number, a.Number)
		})
		out = domain.Paginate(items, filter.Limit, filter.Offset)
		return nil
	})
	return out, err
}

func (r *SaleRepo) UpdatePaymentState(ctx context.Context, saleID id.ID, amountPaid types.Money, status documents.PaymentStatus, at time.Time) error {
	return r.s.do(ctx, "sale.UpdatePaymentState", func(st *state) error {
		s, ok := st.sales[saleID]
		if !ok {
			return apperror.NewNotFound("sale", saleID.String())
		}
		s.AmountPaid = amountPaid
		s.PaymentStatus = status
		s.UpdatedAt = at
		st.sales[saleID] = s
		return nil
	})
}

func (r *SaleRepo) ListOpenByCustomer(ctx context.Context, customerID id.ID) ([]*sale.Sale, error) {
	var items []*sale.Sale
	err := r.s.do(ctx, "sale.ListOpenByCustomer", func(st *state) error {
		for _, s := range st.sales {
			if s.CustomerID != nil && *s.CustomerID == customerID && s.PaymentStatus.Open() {
				items = append(items, &s)
			}
		}
		slices.SortFunc(items, func(a, b *sale.Sale) int {
			if c := a.SaleDate.Compare(b.SaleDate); c != 0 {
				return c
			}
			return strings.Compare(a.Number, b.Number)
		})
		return nil
	})
	return items, err
}

func (r *SaleRepo) ListCreditSaleIDs(ctx context.Context) ([]id.ID, error) {
	var ids []id.ID
	err := r.s.do(ctx, "sale.ListCreditSaleIDs", func(st *state) error {
		for saleID, s := range st.sales {
			if s.IsCredit() {
				ids = append(ids, saleID)
			}
		}
		slices.SortFunc(ids, id.Compare)
		return nil
	})
	return ids, err
}

// PurchaseRepo implements purchase.Repository.
type PurchaseRepo struct {
	s *Store
}

var _ purchase.Repository = (*PurchaseRepo)(nil)

func (r *PurchaseRepo) Create(ctx context.Context, p *purchase.Purchase) error {
	return r.s.do(ctx, "purchase.Create", func(st *state) error {
		for _, other := range st.purchases {
			if other.Number == p.Number {
				return apperror.NewDuplicate("purchase", "number", p.Number)
			}
		}
		if _, ok := st.suppliers[p.SupplierID]; !ok {
			return apperror.NewNotFound("supplier", p.SupplierID.String())
		}
		row := *p
		row.Items = nil
		st.purchases[p.ID] = row
		return nil
	})
}

func (r *PurchaseRepo) InsertItems(ctx context.Context, items []purchase.PurchaseItem) error {
	return r.s.do(ctx, "purchase.InsertItems", func(st *state) error {
		for _, it := range items {
			if _, ok := st.purchases[it.PurchaseID]; !ok {
				return apperror.NewNotFound("purchase", it.PurchaseID.String())
			}
			if _, ok := st.products[it.ProductID]; !ok {
				return apperror.NewNotFound("product", it.ProductID.String())
			}
			st.purchaseItems[it.ID] = it
		}
		return nil
	})
}

func (r *PurchaseRepo) GetByID(ctx context.Context, purchaseID id.ID) (*purchase.Purchase, error) {
	var out *purchase.Purchase
	err := r.s.do(ctx, "purchase.GetByID", func(st *state) error {
		p, ok := st.purchases[purchaseID]
		if !ok {
			return apperror.NewNotFound("purchase", purchaseID.String())
		}
		out = &p
		return nil
	})
	return out, err
}

func (r *PurchaseRepo) GetForUpdate(ctx context.Context, purchaseID id.ID) (*purchase.Purchase, error) {
	return r.GetByID(ctx, purchaseID)
}

func (r *PurchaseRepo) GetItems(ctx context.Context, purchaseID id.ID) ([]purchase.PurchaseItem, error) {
	var items []purchase.PurchaseItem
	err := r.s.do(ctx, "purchase.GetItems", func(st *state) error {
		for _, it := range st.purchaseItems {
			if it.PurchaseID == purchaseID {
				items = append(items, it)
			}
		}
		slices.SortFunc(items, func(a, b purchase.PurchaseItem) int { return a.LineNo - b.LineNo })
		return nil
	})
	return items, err
}

// Delete refuses while movements still reference the purchase lines.
func (r *PurchaseRepo) Delete(ctx context.Context, purchaseID id.ID) error {
	return r.s.do(ctx, "purchase.Delete", func(st *state) error {
		if _, ok := st.purchases[purchaseID]; !ok {
			return apperror.NewNotFound("purchase", purchaseID.String())
		}
		for itemID, it := range st.purchaseItems {
			if it.PurchaseID != purchaseID {
				continue
			}
			for _, m := range st.movements {
				if m.PurchaseItemID != nil && *m.PurchaseItemID == itemID {
					return apperror.NewReferenced("purchase item", itemID.String())
				}
			}
		}
		for itemID, it := range st.purchaseItems {
			if it.PurchaseID == purchaseID {
				delete(st.purchaseItems, itemID)
			}
		}
		delete(st.purchases, purchaseID)
		return nil
	})
}

func (r *PurchaseRepo) List(ctx context.Context, filter purchase.ListFilter) (domain.ListResult[*purchase.Purchase], error) {
	var out domain.ListResult[*purchase.Purchase]
	err := r.s.do(ctx, "purchase.List", func(st *state) error {
		search := strings.ToLower(strings.TrimSpace(filter.Search))
		var items []*purchase.Purchase
		for _, p := range st.purchases {
			if filter.SupplierID != nil && p.SupplierID != *filter.SupplierID {
				continue
			}
			if filter.Status != nil && p.PaymentStatus != *filter.Status {
				continue
			}
			if !inRange(p.PurchaseDate, filter.From, filter.To) {
				continue
			}
			if search != "" && !containsFold(search, p.Number, p.InvoiceNumber, p.Notes) {
				continue
			}
			items = append(items, &p)
		}
		slices.SortFunc(items, func(a, b *purchase.Purchase) int {
			if c := b.PurchaseDate.Compare(a.PurchaseDate); c != 0 {
				return c
			}
			return strings.Compare(b.Number, a.Number)
		})
		out = domain.Paginate(items, filter.Limit, filter.Offset)
		return nil
	})
	return out, err
}

func (r *PurchaseRepo) SetPaymentStatus(ctx context.Context, purchaseID id.ID, status documents.PaymentStatus, at time.Time) error {
	return r.s.do(ctx, "purchase.SetPaymentStatus", func(st *state) error {
		p, ok := st.purchases[purchaseID]
		if !ok {
			return apperror.NewNotFound("purchase", purchaseID.String())
		}
		p.PaymentStatus = status
		p.UpdatedAt = at
		st.purchases[purchaseID] = p
		return nil
	})
}

// inRange reports from <= t < to for the bounds that are set.
func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && !t.Before(*to) {
		return false
	}
	return true
}

package memory

import (
	"context"
	"slices"
	"strings"

	"hwshop/internal/core/apperror"
	"hwshop/internal/core/id"
	"hwshop/internal/core/types"
	"hwshop/internal/domain"
	"hwshop/internal/domain/catalogs/customer"
	"hwshop/internal/domain/catalogs/product"
	"hwshop/internal/domain/catalogs/supplier"
)

// table describes one catalog table.
type table[T any] struct {
	name       string
	rows       func(st *state) map[id.ID]T
	label      func(row *T) string
	matches    func(row *T, search string) bool
	unique     func(st *state, row *T) error
	referenced func(st *state, rowID id.ID) bool
}

type catalogRow[T any] interface {
	*T
	domain.CatalogEntity
	SetActive(active bool)
}

type catalogRepo[T any, P catalogRow[T]] struct {
	s *Store
	t table[T]
}

func newCatalogRepo[T any, P catalogRow[T]](s *Store, t table[T]) *catalogRepo[T, P] {
	return &catalogRepo[T, P]{s: s, t: t}
}

func (r *catalogRepo[T, P]) Create(ctx context.Context, e P) error {
	return r.s.do(ctx, r.t.name+".Create", func(st *state) error {
		rows := r.t.rows(st)
		if _, ok := rows[e.GetID()]; ok {
			return apperror.NewDuplicate(r.t.name, "id", e.GetID().String())
		}
		if r.t.unique != nil {
			if err := r.t.unique(st, (*T)(e)); err != nil {
				return err
			}
		}
		rows[e.GetID()] = *e
		return nil
	})
}

func (r *catalogRepo[T, P]) GetByID(ctx context.Context, rowID id.ID) (P, error) {
	var out P
	err := r.s.do(ctx, r.t.name+".GetByID", func(st *state) error {
		v, ok := r.t.rows(st)[rowID]
		if !ok {
			return apperror.NewNotFound(r.t.name, rowID.String())
		}
		out = P(&v)
		return nil
	})
	return out, err
}

// GetForUpdate is GetByID; the caller's transaction already holds the store.
func (r *catalogRepo[T, P]) GetForUpdate(ctx context.Context, rowID id.ID) (P, error) {
	return r.GetByID(ctx, rowID)
}

func (r *catalogRepo[T, P]) Update(ctx context.Context, e P) error {
	return r.s.do(ctx, r.t.name+".Update", func(st *state) error {
		rows := r.t.rows(st)
		if _, ok := rows[e.GetID()]; !ok {
			return apperror.NewNotFound(r.t.name, e.GetID().String())
		}
		if r.t.unique != nil {
			if err := r.t.unique(st, (*T)(e)); err != nil {
				return err
			}
		}
		rows[e.GetID()] = *e
		return nil
	})
}

func (r *catalogRepo[T, P]) SetActive(ctx context.Context, rowID id.ID, active bool) error {
	return r.s.do(ctx, r.t.name+".SetActive", func(st *state) error {
		rows := r.t.rows(st)
		v, ok := rows[rowID]
		if !ok {
			return apperror.NewNotFound(r.t.name, rowID.String())
		}
		P(&v).SetActive(active)
		rows[rowID] = v
		return nil
	})
}

func (r *catalogRepo[T, P]) Delete(ctx context.Context, rowID id.ID) error {
	return r.s.do(ctx, r.t.name+".Delete", func(st *state) error {
		rows := r.t.rows(st)
		if _, ok := rows[rowID]; !ok {
			return apperror.NewNotFound(r.t.name, rowID.String())
		}
		if r.t.referenced != nil && r.t.referenced(st, rowID) {
			return apperror.NewReferenced(r.t.name, rowID.String())
		}
		delete(rows, rowID)
		return nil
	})
}

func (r *catalogRepo[T, P]) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[P], error) {
	var out domain.ListResult[P]
	err := r.s.do(ctx, r.t.name+".List", func(st *state) error {
		search := strings.ToLower(strings.TrimSpace(filter.Search))
		var items []P
		for _, v := range r.t.rows(st) {
			p := P(&v)
			if len(filter.IDs) > 0 && !slices.Contains(filter.IDs, p.GetID()) {
				continue
			}
			if filter.Active != nil && p.Active() != *filter.Active {
				continue
			}
			if search != "" && !r.t.matches(&v, search) {
				continue
			}
			items = append(items, p)
		}
		slices.SortFunc(items, func(a, b P) int {
			if c := strings.Compare(r.t.label((*T)(a)), r.t.label((*T)(b))); c != 0 {
				return c
			}
			return strings.Compare(a.GetID().String(), b.GetID().String())
		})
		out = domain.Paginate(items, filter.Limit, filter.Offset)
		return nil
	})
	return out, err
}

func (r *catalogRepo[T, P]) Exists(ctx context.Context, rowID id.ID) (bool, error) {
	var ok bool
	err := r.s.do(ctx, r.t.name+".Exists", func(st *state) error {
		_, ok = r.t.rows(st)[rowID]
		return nil
	})
	return ok, err
}

func containsFold(search string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

// --- Products ---

var productTable = table[product.Product]{
	name:  "product",
	rows:  func(st *state) map[id.ID]product.Product { return st.products },
	label: func(p *product.Product) string { return p.Name },
	matches: func(p *product.Product, search string) bool {
		return containsFold(search, p.SKU, p.Name, p.Category)
	},
	unique: func(st *state, p *product.Product) error {
		for _, other := range st.products {
			if other.SKU == p.SKU && other.ID != p.ID {
				return apperror.NewDuplicate("product", "sku", p.SKU)
			}
		}
		return nil
	},
	referenced: productReferenced,
}

func productReferenced(st *state, productID id.ID) bool {
	for _, m := range st.movements {
		if m.ProductID == productID {
			return true
		}
	}
	for _, it := range st.saleItems {
		if it.ProductID == productID {
			return true
		}
	}
	for _, it := range st.purchaseItems {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}

// ProductRepo implements product.Repository.
type ProductRepo struct {
	*catalogRepo[product.Product, *product.Product]
}

var _ product.Repository = (*ProductRepo)(nil)

// Delete also drops the product's inventory row.
func (r *ProductRepo) Delete(ctx context.Context, productID id.ID) error {
	return r.s.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := r.catalogRepo.Delete(ctx, productID); err != nil {
			return err
		}
		return r.s.do(ctx, "inventory.Delete", func(st *state) error {
			delete(st.inventory, productID)
			return nil
		})
	})
}

func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*product.Product, error) {
	var out *product.Product
	err := r.s.do(ctx, "product.GetBySKU", func(st *state) error {
		for _, p := range st.products {
			if p.SKU == sku {
				out = &p
				return nil
			}
		}
		return apperror.NewNotFound("product", sku)
	})
	return out, err
}

func (r *ProductRepo) IsReferenced(ctx context.Context, productID id.ID) (bool, error) {
	var referenced bool
	err := r.s.do(ctx, "product.IsReferenced", func(st *state) error {
		referenced = productReferenced(st, productID)
		return nil
	})
	return referenced, err
}

// --- Suppliers ---

var supplierTable = table[supplier.Supplier]{
	name:  "supplier",
	rows:  func(st *state) map[id.ID]supplier.Supplier { return st.suppliers },
	label: func(s *supplier.Supplier) string { return s.Name },
	matches: func(s *supplier.Supplier, search string) bool {
		return containsFold(search, s.Name, s.ContactPerson, s.Phone, s.Email)
	},
	referenced: func(st *state, supplierID id.ID) bool {
		for _, p := range st.purchases {
			if p.SupplierID == supplierID {
				return true
			}
		}
		return false
	},
}

// SupplierRepo implements supplier.Repository.
type SupplierRepo struct {
	*catalogRepo[supplier.Supplier, *supplier.Supplier]
}

var _ supplier.Repository = (*SupplierRepo)(nil)

// --- Customers ---

var customerTable = table[customer.Customer]{
	name:  "customer",
	rows:  func(st *state) map[id.ID]customer.Customer { return st.customers },
	label: func(c *customer.Customer) string { return c.Name },
	matches: func(c *customer.Customer, search string) bool {
		return containsFold(search, c.Name, c.Phone, c.Email)
	},
	referenced: func(st *state, customerID id.ID) bool {
		for _, s := range st.sales {
			if s.CustomerID != nil && *s.CustomerID == customerID {
				return true
			}
		}
		for _, p := range st.payments {
			if p.CustomerID == customerID {
				return true
			}
		}
		return false
	},
}

// CustomerRepo implements customer.Repository.
type CustomerRepo struct {
	*catalogRepo[customer.Customer, *customer.Customer]
}

var _ customer.Repository = (*CustomerRepo)(nil)

// Create stores a new customer with a zero balance.
func (r *CustomerRepo) Create(ctx context.Context, c *customer.Customer) error {
	row := *c
	row.CurrentBalance = types.Money{}
	if err := r.catalogRepo.Create(ctx, &row); err != nil {
		return err
	}
	c.CurrentBalance = row.CurrentBalance
	return nil
}

// Update keeps the stored balance; only SetBalance writes it.
func (r *CustomerRepo) Update(ctx context.Context, c *customer.Customer) error {
	return r.s.do(ctx, "customer.Update", func(st *state) error {
		existing, ok := st.customers[c.ID]
		if !ok {
			return apperror.NewNotFound("customer", c.ID.String())
		}
		row := *c
		row.CurrentBalance = existing.CurrentBalance
		st.customers[c.ID] = row
		c.CurrentBalance = existing.CurrentBalance
		return nil
	})
}

func (r *CustomerRepo) SetBalance(ctx context.Context, customerID id.ID, balance types.Money) error {
	return r.s.do(ctx, "customer.SetBalance", func(st *state) error {
		c, ok := st.customers[customerID]
		if !ok {
			return apperror.NewNotFound("customer", customerID.String())
		}
		c.CurrentBalance = balance
		st.customers[customerID] = c
		return nil
	})
}

func (r *CustomerRepo) ListIDs(ctx context.Context) ([]id.ID, error) {
	var ids []id.ID
	err := r.s.do(ctx, "customer.ListIDs", func(st *state) error {
		ids = sortedKeys(st.customers)
		return nil
	})
	return ids, err
}

func sortedKeys[V any](m map[id.ID]V) []id.ID {
	keys := make([]id.ID, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, id.Compare)
	return keys
}

package dto

import (
	"github.com/shopspring/decimal"

	"hwshop/internal/domain/catalogs/customer"
	"hwshop/internal/domain/catalogs/product"
	"hwshop/internal/domain/catalogs/supplier"
)

// SetActiveRequest deactivates or reactivates a catalog entry.
type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// --- Product ---

// CreateProductRequest for POST /products.
type CreateProductRequest struct {
	SKU             string           `json:"sku" binding:"required,max=64"`
	Name            string           `json:"name" binding:"required,max=200"`
	Description     string           `json:"description" binding:"max=2000"`
	Category        string           `json:"category" binding:"max=100"`
	Unit            string           `json:"unit" binding:"required,max=20"`
	PurchasePrice   decimal.Decimal  `json:"purchasePrice"`
	RetailPrice     decimal.Decimal  `json:"retailPrice"`
	WholesalePrice  *decimal.Decimal `json:"wholesalePrice"`
	MinStockLevel   decimal.Decimal  `json:"minStockLevel"`
	ReorderQuantity decimal.Decimal  `json:"reorderQuantity"`
}

// ToEntity maps the request to a new product.
func (r CreateProductRequest) ToEntity() *product.Product {
	p := product.NewProduct(r.SKU, r.Name, r.Unit)
	p.Description = r.Description
	p.Category = r.Category
	p.PurchasePrice = r.PurchasePrice
	p.RetailPrice = r.RetailPrice
	p.WholesalePrice = nullDecimal(r.WholesalePrice)
	p.MinStockLevel = r.MinStockLevel
	p.ReorderQuantity = r.ReorderQuantity
	return p
}

// UpdateProductRequest for PUT /products/:id. Absent fields keep their value.
type UpdateProductRequest struct {
	SKU             *string          `json:"sku" binding:"omitempty,max=64"`
	Name            *string          `json:"name" binding:"omitempty,max=200"`
	Description     *string          `json:"description" binding:"omitempty,max=2000"`
	Category        *string          `json:"category" binding:"omitempty,max=100"`
	Unit            *string          `json:"unit" binding:"omitempty,max=20"`
	PurchasePrice   *decimal.Decimal `json:"purchasePrice"`
	RetailPrice     *decimal.Decimal `json:"retailPrice"`
	WholesalePrice  *decimal.Decimal `json:"wholesalePrice"`
	MinStockLevel   *decimal.Decimal `json:"minStockLevel"`
	ReorderQuantity *decimal.Decimal `json:"reorderQuantity"`
}

// Apply copies the present fields onto p.
func (r UpdateProductRequest) Apply(p *product.Product) *product.Product {
	setString(&p.SKU, r.SKU)
	setString(&p.Name, r.Name)
	setString(&p.Description, r.Description)
	setString(&p.Category, r.Category)
	setString(&p.Unit, r.Unit)
	setDecimal(&p.PurchasePrice, r.PurchasePrice)
	setDecimal(&p.RetailPrice, r.RetailPrice)
	if r.WholesalePrice != nil {
		p.WholesalePrice = nullDecimal(r.WholesalePrice)
	}
	setDecimal(&p.MinStockLevel, r.MinStockLevel)
	setDecimal(&p.ReorderQuantity, r.ReorderQuantity)
	return p
}

// --- Supplier ---

// SupplierRequest for POST and PUT /suppliers.
type SupplierRequest struct {
	Name          string `json:"name" binding:"required,max=200"`
	ContactPerson string `json:"contactPerson" binding:"max=200"`
	Phone         string `json:"phone" binding:"max=50"`
	Email         string `json:"email" binding:"omitempty,email,max=200"`
	Address       string `json:"address" binding:"max=500"`
}

// ToEntity maps the request to a new supplier.
func (r SupplierRequest) ToEntity() *supplier.Supplier {
	return r.Apply(supplier.NewSupplier(r.Name))
}

// Apply overwrites s with the request fields.
func (r SupplierRequest) Apply(s *supplier.Supplier) *supplier.Supplier {
	s.Name = r.Name
	s.ContactPerson = r.ContactPerson
	s.Phone = r.Phone
	s.Email = r.Email
	s.Address = r.Address
	return s
}

// --- Customer ---

// CustomerRequest for POST and PUT /customers. The balance is derived and
// never accepted from clients.
type CustomerRequest struct {
	Name        string          `json:"name" binding:"required,max=200"`
	Phone       string          `json:"phone" binding:"max=50"`
	Email       string          `json:"email" binding:"omitempty,email,max=200"`
	Address     string          `json:"address" binding:"max=500"`
	CreditLimit decimal.Decimal `json:"creditLimit"`
}

// ToEntity maps the request to a new customer.
func (r CustomerRequest) ToEntity() *customer.Customer {
	return r.Apply(customer.NewCustomer(r.Name))
}

// Apply overwrites c with the request fields.
func (r CustomerRequest) Apply(c *customer.Customer) *customer.Customer {
	c.Name = r.Name
	c.Phone = r.Phone
	c.Email = r.Email
	c.Address = r.Address
	c.CreditLimit = r.CreditLimit
	return c
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDecimal(dst *decimal.Decimal, v *decimal.Decimal) {
	if v != nil {
		*dst = *v
	}
}

func nullDecimal(v *decimal.Decimal) decimal.NullDecimal {
	if v == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*v)
}

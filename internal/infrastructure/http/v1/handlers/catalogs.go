package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"hwshop/internal/core/apperror"
	"hwshop/internal/domain/catalogs/customer"
	"hwshop/internal/domain/catalogs/product"
	"hwshop/internal/domain/catalogs/supplier"
	"hwshop/internal/infrastructure/http/v1/dto"
)

// ProductHandler serves the product catalog.
type ProductHandler struct {
	*CatalogHandler[*product.Product, dto.CreateProductRequest, dto.UpdateProductRequest]
	service *product.Service
}

// NewProductHandler creates a product handler.
func NewProductHandler(base *BaseHandler, service *product.Service) *ProductHandler {
	return &ProductHandler{
		CatalogHandler: NewCatalogHandler(base, CatalogHandlerConfig[*product.Product, dto.CreateProductRequest, dto.UpdateProductRequest]{
			Service:      service.CatalogService,
			MapCreateDTO: dto.CreateProductRequest.ToEntity,
			MapUpdateDTO: dto.UpdateProductRequest.Apply,
		}),
		service: service,
	}
}

// GetBySKU handles GET /products/by-sku/:sku.
func (h *ProductHandler) GetBySKU(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	sku := strings.TrimSpace(c.Param("sku"))
	if sku == "" {
		h.Error(c, apperror.NewValidation("sku is required").WithDetail("field", "sku"))
		return
	}

	p, err := h.service.GetBySKU(c.Request.Context(), actor, sku)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// SupplierHandler serves the supplier catalog.
type SupplierHandler = CatalogHandler[*supplier.Supplier, dto.SupplierRequest, dto.SupplierRequest]

// NewSupplierHandler creates a supplier handler.
func NewSupplierHandler(base *BaseHandler, service *supplier.Service) *SupplierHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[*supplier.Supplier, dto.SupplierRequest, dto.SupplierRequest]{
		Service:      service.CatalogService,
		MapCreateDTO: dto.SupplierRequest.ToEntity,
		MapUpdateDTO: dto.SupplierRequest.Apply,
	})
}

// CustomerHandler serves the customer catalog.
type CustomerHandler = CatalogHandler[*customer.Customer, dto.CustomerRequest, dto.CustomerRequest]

// NewCustomerHandler creates a customer handler.
func NewCustomerHandler(base *BaseHandler, service *customer.Service) *CustomerHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[*customer.Customer, dto.CustomerRequest, dto.CustomerRequest]{
		Service:      service.CatalogService,
		MapCreateDTO: dto.CustomerRequest.ToEntity,
		MapUpdateDTO: dto.CustomerRequest.Apply,
	})
}

package handlers

import (
	"github.com/gin-gonic/gin"

	"hwshop/internal/domain/documents/sale"
	"hwshop/internal/domain/settlement"
	"hwshop/internal/infrastructure/http/v1/dto"
)

// SaleHandler handles HTTP requests for sales.
type SaleHandler struct {
	*BaseHandler
	service    *sale.Service
	settlement *settlement.Service
}

// NewSaleHandler creates a new sale handler.
func NewSaleHandler(base *BaseHandler, service *sale.Service, settlement *settlement.Service) *SaleHandler {
	return &SaleHandler{BaseHandler: base, service: service, settlement: settlement}
}

// Create handles POST /sales. Creation is not idempotent; a retried request
// records a second sale.
func (h *SaleHandler) Create(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req dto.CreateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	ctx := c.Request.Context()
	created, err := h.service.Create(ctx, actor, in)
	if err != nil {
		h.Error(c, err)
		return
	}
	detail, err := h.service.Get(ctx, actor, created.ID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, detail)
}

// Get handles GET /sales/:id.
func (h *SaleHandler) Get(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	saleID, ok := h.ParseID(c)
	if !ok {
		return
	}

	detail, err := h.service.Get(c.Request.Context(), actor, saleID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, detail)
}

// List handles GET /sales.
func (h *SaleHandler) List(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var q dto.SaleListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}
	q.Defaults()

	result, err := h.service.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	Page(c, q.PageRequest, result)
}

// Delete handles DELETE /sales/:id. Stock is restored and payments removed.
func (h *SaleHandler) Delete(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	saleID, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, saleID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// Payments handles GET /sales/:id/payments.
func (h *SaleHandler) Payments(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	saleID, ok := h.ParseID(c)
	if !ok {
		return
	}

	payments, err := h.settlement.ListSalePayments(c.Request.Context(), actor, saleID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if payments == nil {
		payments = []settlement.Payment{}
	}
	h.OK(c, payments)
}

package handlers

import (
	"github.com/gin-gonic/gin"

	"hwshop/internal/domain/documents"
	"hwshop/internal/domain/documents/purchase"
	"hwshop/internal/infrastructure/http/v1/dto"
)

// PurchaseHandler handles HTTP requests for purchases.
type PurchaseHandler struct {
	*BaseHandler
	service *purchase.Service
}

// NewPurchaseHandler creates a new purchase handler.
func NewPurchaseHandler(base *BaseHandler, service *purchase.Service) *PurchaseHandler {
	return &PurchaseHandler{BaseHandler: base, service: service}
}

// Create handles POST /purchases.
func (h *PurchaseHandler) Create(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req dto.CreatePurchaseRequest
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

// Get handles GET /purchases/:id.
func (h *PurchaseHandler) Get(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	purchaseID, ok := h.ParseID(c)
	if !ok {
		return
	}

	detail, err := h.service.Get(c.Request.Context(), actor, purchaseID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, detail)
}

// List handles GET /purchases.
func (h *PurchaseHandler) List(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var q dto.PurchaseListQuery
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

// UpdatePaymentStatus handles PATCH /purchases/:id/payment-status.
func (h *PurchaseHandler) UpdatePaymentStatus(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	purchaseID, ok := h.ParseID(c)
	if !ok {
		return
	}
	var req dto.PaymentStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	status, err := documents.ParsePaymentStatus(req.PaymentStatus)
	if err != nil {
		h.Error(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := h.service.UpdatePaymentStatus(ctx, actor, purchaseID, status); err != nil {
		h.Error(c, err)
		return
	}
	detail, err := h.service.Get(ctx, actor, purchaseID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, detail)
}

// Delete handles DELETE /purchases/:id. Received stock is withdrawn even if
// that leaves a product negative.
func (h *PurchaseHandler) Delete(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	purchaseID, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, purchaseID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

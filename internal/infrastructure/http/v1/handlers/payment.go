package handlers

import (
	"github.com/gin-gonic/gin"

	"hwshop/internal/domain/settlement"
	"hwshop/internal/infrastructure/http/v1/dto"
)

// PaymentHandler handles customer payments against credit sales.
type PaymentHandler struct {
	*BaseHandler
	service *settlement.Service
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(base *BaseHandler, service *settlement.Service) *PaymentHandler {
	return &PaymentHandler{BaseHandler: base, service: service}
}

// Record handles POST /payments.
func (h *PaymentHandler) Record(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req dto.RecordPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	payment, err := h.service.RecordPayment(c.Request.Context(), actor, in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, payment)
}

// Delete handles DELETE /payments/:id.
func (h *PaymentHandler) Delete(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	paymentID, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.DeletePayment(c.Request.Context(), actor, paymentID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// Outstanding handles GET /customers/:id/outstanding.
func (h *PaymentHandler) Outstanding(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	customerID, ok := h.ParseID(c)
	if !ok {
		return
	}

	out, err := h.service.GetCustomerOutstanding(c.Request.Context(), actor, customerID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, out)
}

// CustomerPayments handles GET /customers/:id/payments.
func (h *PaymentHandler) CustomerPayments(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	customerID, ok := h.ParseID(c)
	if !ok {
		return
	}
	var page dto.PageRequest
	if !h.BindQuery(c, &page) {
		return
	}
	page.Defaults()

	result, err := h.service.ListCustomerPayments(c.Request.Context(), actor, customerID, page.Limit, page.Offset())
	if err != nil {
		h.Error(c, err)
		return
	}
	Page(c, page, result)
}

// Recompute handles POST /admin/balances/recompute.
func (h *PaymentHandler) Recompute(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	report, err := h.service.RecomputeAll(c.Request.Context(), actor)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}

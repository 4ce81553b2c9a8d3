package handlers

import (
	"github.com/gin-gonic/gin"

	"hwshop/internal/domain/expense"
	"hwshop/internal/infrastructure/http/v1/dto"
)

// ExpenseHandler handles HTTP requests for expenses.
type ExpenseHandler struct {
	*BaseHandler
	service *expense.Service
}

// NewExpenseHandler creates a new expense handler.
func NewExpenseHandler(base *BaseHandler, service *expense.Service) *ExpenseHandler {
	return &ExpenseHandler{BaseHandler: base, service: service}
}

// Create handles POST /expenses.
func (h *ExpenseHandler) Create(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req dto.ExpenseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	e := req.Apply(&expense.Expense{})
	if err := h.service.Create(c.Request.Context(), actor, e); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, e)
}

// Get handles GET /expenses/:id.
func (h *ExpenseHandler) Get(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	expenseID, ok := h.ParseID(c)
	if !ok {
		return
	}

	e, err := h.service.Get(c.Request.Context(), actor, expenseID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, e)
}

// Update handles PUT /expenses/:id.
func (h *ExpenseHandler) Update(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	expenseID, ok := h.ParseID(c)
	if !ok {
		return
	}
	var req dto.ExpenseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	existing, err := h.service.Get(ctx, actor, expenseID)
	if err != nil {
		h.Error(c, err)
		return
	}
	e := req.Apply(existing)
	if err := h.service.Update(ctx, actor, e); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, e)
}

// Delete handles DELETE /expenses/:id.
func (h *ExpenseHandler) Delete(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	expenseID, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, expenseID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// List handles GET /expenses.
func (h *ExpenseHandler) List(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var q dto.ExpenseListQuery
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

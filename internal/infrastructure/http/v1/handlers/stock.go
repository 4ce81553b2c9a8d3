package handlers

import (
	"github.com/gin-gonic/gin"

	"hwshop/internal/domain/registers/stock"
	"hwshop/internal/infrastructure/http/v1/dto"
)

// StockHandler serves the stock ledger and inventory snapshot.
type StockHandler struct {
	*BaseHandler
	service *stock.Service
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, service *stock.Service) *StockHandler {
	return &StockHandler{BaseHandler: base, service: service}
}

// Inventory handles GET /stock/inventory.
func (h *StockHandler) Inventory(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var q dto.InventoryQuery
	if !h.BindQuery(c, &q) {
		return
	}
	q.Defaults()

	result, err := h.service.ListInventory(c.Request.Context(), actor, q.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}
	Page(c, q.PageRequest, result)
}

// LowStock handles GET /stock/low-stock: active products at or below their minimum.
func (h *StockHandler) LowStock(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var q dto.InventoryQuery
	if !h.BindQuery(c, &q) {
		return
	}
	q.Defaults()
	q.LowStockOnly = true
	q.ActiveOnly = true

	result, err := h.service.ListInventory(c.Request.Context(), actor, q.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}
	Page(c, q.PageRequest, result)
}

// ProductInventory handles GET /stock/inventory/:id.
func (h *StockHandler) ProductInventory(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	productID, ok := h.ParseID(c)
	if !ok {
		return
	}

	view, err := h.service.GetInventory(c.Request.Context(), actor, productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, view)
}

// Movements handles GET /stock/movements.
func (h *StockHandler) Movements(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var q dto.MovementQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}
	q.Defaults()

	result, err := h.service.ListMovements(c.Request.Context(), actor, filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	Page(c, q.PageRequest, result)
}

type adjustmentResponse struct {
	MovementID string              `json:"movementId"`
	Inventory  stock.InventoryView `json:"inventory"`
}

// Adjust handles POST /stock/adjustments.
func (h *StockHandler) Adjust(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req dto.AdjustmentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	movementID, view, err := h.service.Adjust(c.Request.Context(), actor, in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, adjustmentResponse{MovementID: movementID.String(), Inventory: view})
}

// Rebuild handles POST /admin/inventory/rebuild.
func (h *StockHandler) Rebuild(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	n, err := h.service.RebuildInventory(c.Request.Context(), actor)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"products": n})
}

package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"hwshop/internal/domain"
	"hwshop/internal/infrastructure/http/v1/dto"
)

// CatalogHandler provides generic HTTP handlers for catalog entities.
type CatalogHandler[T domain.CatalogEntity, CreateDTO any, UpdateDTO any] struct {
	*BaseHandler
	service *domain.CatalogService[T]

	mapCreateDTO func(req CreateDTO) T
	mapUpdateDTO func(req UpdateDTO, existing T) T
}

// CatalogHandlerConfig configures the catalog handler.
type CatalogHandlerConfig[T domain.CatalogEntity, CreateDTO any, UpdateDTO any] struct {
	Service      *domain.CatalogService[T]
	MapCreateDTO func(req CreateDTO) T
	MapUpdateDTO func(req UpdateDTO, existing T) T
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler[T domain.CatalogEntity, CreateDTO any, UpdateDTO any](
	base *BaseHandler,
	cfg CatalogHandlerConfig[T, CreateDTO, UpdateDTO],
) *CatalogHandler[T, CreateDTO, UpdateDTO] {
	return &CatalogHandler[T, CreateDTO, UpdateDTO]{
		BaseHandler:  base,
		service:      cfg.Service,
		mapCreateDTO: cfg.MapCreateDTO,
		mapUpdateDTO: cfg.MapUpdateDTO,
	}
}

type catalogListQuery struct {
	dto.PageRequest
	Search  string `form:"search"`
	Active  *bool  `form:"active"`
	OrderBy string `form:"orderBy"`
}

// List handles GET /{entity}.
func (h *CatalogHandler[T, CreateDTO, UpdateDTO]) List(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var q catalogListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	q.Defaults()

	filter := domain.DefaultListFilter()
	filter.Search = strings.TrimSpace(q.Search)
	filter.Active = q.Active
	if q.OrderBy != "" {
		filter.OrderBy = q.OrderBy
	}
	filter.Limit = q.Limit
	filter.Offset = q.Offset()

	result, err := h.service.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	Page(c, q.PageRequest, result)
}

// Get handles GET /{entity}/:id.
func (h *CatalogHandler[T, CreateDTO, UpdateDTO]) Get(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	entityID, ok := h.ParseID(c)
	if !ok {
		return
	}

	entity, err := h.service.GetByID(c.Request.Context(), actor, entityID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, entity)
}

// Create handles POST /{entity}.
func (h *CatalogHandler[T, CreateDTO, UpdateDTO]) Create(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req CreateDTO
	if !h.BindJSON(c, &req) {
		return
	}

	entity := h.mapCreateDTO(req)
	if err := h.service.Create(c.Request.Context(), actor, entity); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, entity)
}

// Update handles PUT /{entity}/:id.
func (h *CatalogHandler[T, CreateDTO, UpdateDTO]) Update(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	entityID, ok := h.ParseID(c)
	if !ok {
		return
	}
	var req UpdateDTO
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	existing, err := h.service.GetByID(ctx, actor, entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	updated := h.mapUpdateDTO(req, existing)
	if err := h.service.Update(ctx, actor, updated); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, updated)
}

// SetActive handles PATCH /{entity}/:id/active.
func (h *CatalogHandler[T, CreateDTO, UpdateDTO]) SetActive(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	entityID, ok := h.ParseID(c)
	if !ok {
		return
	}
	var req dto.SetActiveRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	if err := h.service.SetActive(ctx, actor, entityID, *req.Active); err != nil {
		h.Error(c, err)
		return
	}
	entity, err := h.service.GetByID(ctx, actor, entityID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, entity)
}

// Delete handles DELETE /{entity}/:id. Referenced entries fail with 409.
func (h *CatalogHandler[T, CreateDTO, UpdateDTO]) Delete(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	entityID, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, entityID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

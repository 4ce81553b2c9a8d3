package v1

import (
	"github.com/gin-gonic/gin"

	"hwshop/internal/core/security"
	"hwshop/internal/infrastructure/http/v1/middleware"
	"hwshop/internal/infrastructure/metrics"
)

// CatalogRouteHandler defines the interface for catalog handlers.
type CatalogRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	SetActive(c *gin.Context)
	Delete(c *gin.Context)
}

// CatalogCaps are the capabilities guarding a catalog's routes.
type CatalogCaps struct {
	Read, Write, Delete security.Capability
}

// RegisterCatalogRoutes registers the standard catalog routes.
//
//	RegisterCatalogRoutes(api.Group("/suppliers"), supplierHandler, CatalogCaps{...})
func RegisterCatalogRoutes(group *gin.RouterGroup, handler CatalogRouteHandler, caps CatalogCaps) {
	group.GET("", middleware.RequireCapability(caps.Read), handler.List)
	group.POST("", middleware.RequireCapability(caps.Write), handler.Create)
	group.GET("/:id", middleware.RequireCapability(caps.Read), handler.Get)
	group.PUT("/:id", middleware.RequireCapability(caps.Write), handler.Update)
	group.PATCH("/:id/active", middleware.RequireCapability(caps.Write), handler.SetActive)
	group.DELETE("/:id", middleware.RequireCapability(caps.Delete), handler.Delete)
}

// ledger wraps a ledger-writing handler with its capability check and the
// outcome counter.
func ledger(m *metrics.Metrics, operation string, cp security.Capability, h gin.HandlerFunc) []gin.HandlerFunc {
	chain := []gin.HandlerFunc{middleware.RequireCapability(cp)}
	if m != nil {
		chain = append(chain, middleware.LedgerOp(m, operation))
	}
	return append(chain, h)
}

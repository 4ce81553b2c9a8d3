// Package v1 provides HTTP API version 1.
package v1

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"hwshop/internal/app"
	"hwshop/internal/core/security"
	"hwshop/internal/infrastructure/http/v1/handlers"
	"hwshop/internal/infrastructure/http/v1/middleware"
	"hwshop/internal/infrastructure/metrics"
	"hwshop/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Services *app.Services

	// DB is pinged by the readiness probe. Nil for the in-memory store.
	DB handlers.Pinger

	Logger *logger.Logger

	// Metrics enables /metrics and request/ledger counters when set.
	Metrics *metrics.Metrics

	TokenValidator middleware.TokenValidator

	// AllowedOrigins for CORS. Empty disables the CORS middleware.
	AllowedOrigins []string

	// Development switches gin to debug mode.
	Development bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Development {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()

	// Global middleware. Recovery sits inside ErrorHandler so a panic is
	// rendered as a 500 envelope.
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	if cfg.Metrics != nil {
		router.Use(middleware.Metrics(cfg.Metrics))
	}
	if len(cfg.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
			ExposeHeaders:    []string{middleware.HeaderRequestID, middleware.HeaderTraceID, "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Recovery())

	healthHandler := handlers.NewHealthHandler(cfg.DB)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := router.Group("/api/v1")
	api.Use(middleware.Auth(cfg.TokenValidator))
	api.Use(middleware.InvalidateOnWrite(cfg.Services.Reports))

	registerRoutes(api, cfg.Services, cfg.Metrics)

	return router
}

func registerRoutes(api *gin.RouterGroup, svc *app.Services, m *metrics.Metrics) {
	base := handlers.NewBaseHandler()

	// --- Catalogs ---
	productHandler := handlers.NewProductHandler(base, svc.Products)
	products := api.Group("/products")
	products.GET("/by-sku/:sku", middleware.RequireCapability(security.CapProductRead), productHandler.GetBySKU)
	RegisterCatalogRoutes(products, productHandler, CatalogCaps{
		Read: security.CapProductRead, Write: security.CapProductWrite, Delete: security.CapProductDelete,
	})

	RegisterCatalogRoutes(api.Group("/suppliers"), handlers.NewSupplierHandler(base, svc.Suppliers), CatalogCaps{
		Read: security.CapSupplierRead, Write: security.CapSupplierWrite, Delete: security.CapSupplierDelete,
	})

	paymentHandler := handlers.NewPaymentHandler(base, svc.Settlement)
	customers := api.Group("/customers")
	RegisterCatalogRoutes(customers, handlers.NewCustomerHandler(base, svc.Customers), CatalogCaps{
		Read: security.CapCustomerRead, Write: security.CapCustomerWrite, Delete: security.CapCustomerDelete,
	})
	customers.GET("/:id/outstanding", middleware.RequireCapability(security.CapCustomerRead), paymentHandler.Outstanding)
	customers.GET("/:id/payments", middleware.RequireCapability(security.CapCustomerRead), paymentHandler.CustomerPayments)

	// --- Stock ledger ---
	stockHandler := handlers.NewStockHandler(base, svc.Stock)
	stock := api.Group("/stock")
	{
		stock.GET("/inventory", middleware.RequireCapability(security.CapStockRead), stockHandler.Inventory)
		stock.GET("/inventory/:id", middleware.RequireCapability(security.CapStockRead), stockHandler.ProductInventory)
		stock.GET("/low-stock", middleware.RequireCapability(security.CapStockRead), stockHandler.LowStock)
		stock.GET("/movements", middleware.RequireCapability(security.CapStockRead), stockHandler.Movements)
		stock.POST("/adjustments", ledger(m, "stock.adjust", security.CapStockAdjust, stockHandler.Adjust)...)
	}

	// --- Documents ---
	saleHandler := handlers.NewSaleHandler(base, svc.Sales, svc.Settlement)
	sales := api.Group("/sales")
	{
		sales.GET("", middleware.RequireCapability(security.CapSaleRead), saleHandler.List)
		sales.POST("", ledger(m, "sale.create", security.CapSaleCreate, saleHandler.Create)...)
		sales.GET("/:id", middleware.RequireCapability(security.CapSaleRead), saleHandler.Get)
		sales.GET("/:id/payments", middleware.RequireCapability(security.CapSaleRead), saleHandler.Payments)
		sales.DELETE("/:id", ledger(m, "sale.delete", security.CapSaleDelete, saleHandler.Delete)...)
	}

	purchaseHandler := handlers.NewPurchaseHandler(base, svc.Purchases)
	purchases := api.Group("/purchases")
	{
		purchases.GET("", middleware.RequireCapability(security.CapPurchaseRead), purchaseHandler.List)
		purchases.POST("", ledger(m, "purchase.create", security.CapPurchaseCreate, purchaseHandler.Create)...)
		purchases.GET("/:id", middleware.RequireCapability(security.CapPurchaseRead), purchaseHandler.Get)
		purchases.PATCH("/:id/payment-status", middleware.RequireCapability(security.CapPurchaseUpdate), purchaseHandler.UpdatePaymentStatus)
		purchases.DELETE("/:id", ledger(m, "purchase.delete", security.CapPurchaseDelete, purchaseHandler.Delete)...)
	}

	payments := api.Group("/payments")
	{
		payments.POST("", ledger(m, "payment.record", security.CapPaymentRecord, paymentHandler.Record)...)
		payments.DELETE("/:id", ledger(m, "payment.delete", security.CapPaymentDelete, paymentHandler.Delete)...)
	}

	// --- Expenses ---
	expenseHandler := handlers.NewExpenseHandler(base, svc.Expenses)
	expenses := api.Group("/expenses")
	{
		expenses.GET("", middleware.RequireCapability(security.CapExpenseRead), expenseHandler.List)
		expenses.POST("", middleware.RequireCapability(security.CapExpenseWrite), expenseHandler.Create)
		expenses.GET("/:id", middleware.RequireCapability(security.CapExpenseRead), expenseHandler.Get)
		expenses.PUT("/:id", middleware.RequireCapability(security.CapExpenseWrite), expenseHandler.Update)
		expenses.DELETE("/:id", middleware.RequireCapability(security.CapExpenseWrite), expenseHandler.Delete)
	}

	// --- Reports ---
	reportsHandler := handlers.NewReportsHandler(base, svc.Reports)
	reports := api.Group("/reports", middleware.RequireCapability(security.CapReportRead))
	{
		reports.GET("/dashboard", reportsHandler.Dashboard)
		reports.GET("/sales-summary", reportsHandler.SalesSummary)
		reports.GET("/sales-summary/export", reportsHandler.ExportSales)
		reports.GET("/product-performance", reportsHandler.ProductPerformance)
		reports.GET("/financial-summary", reportsHandler.FinancialSummary)
	}

	// --- Ledger maintenance ---
	admin := api.Group("/admin")
	{
		admin.POST("/inventory/rebuild", ledger(m, "inventory.rebuild", security.CapLedgerAdmin, stockHandler.Rebuild)...)
		admin.POST("/balances/recompute", ledger(m, "balances.recompute", security.CapLedgerAdmin, paymentHandler.Recompute)...)
	}
}

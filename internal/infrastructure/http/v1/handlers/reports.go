package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"hwshop/internal/domain/reports"
	"hwshop/internal/infrastructure/export"
	"hwshop/internal/infrastructure/http/v1/dto"
)

// ReportsHandler serves the read-only report endpoints.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{BaseHandler: base, service: service}
}

func (h *ReportsHandler) period(c *gin.Context) (dto.PeriodQuery, reports.Period, bool) {
	var q dto.PeriodQuery
	if !h.BindQuery(c, &q) {
		return q, reports.Period{}, false
	}
	from, to, err := q.Days()
	if err != nil {
		h.Error(c, err)
		return q, reports.Period{}, false
	}
	return q, reports.Period{From: from, To: to}, true
}

// Dashboard handles GET /reports/dashboard.
func (h *ReportsHandler) Dashboard(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	d, err := h.service.Dashboard(c.Request.Context(), actor)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, d)
}

// SalesSummary handles GET /reports/sales-summary?from=&to=.
func (h *ReportsHandler) SalesSummary(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	_, period, ok := h.period(c)
	if !ok {
		return
	}

	summary, err := h.service.SalesSummary(c.Request.Context(), actor, period)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, summary)
}

// ProductPerformance handles GET /reports/product-performance?from=&to=&limit=.
func (h *ReportsHandler) ProductPerformance(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	q, period, ok := h.period(c)
	if !ok {
		return
	}

	rows, err := h.service.ProductPerformance(c.Request.Context(), actor, reports.PerformanceFilter{
		Period: period,
		Limit:  q.Limit,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rows)
}

// FinancialSummary handles GET /reports/financial-summary?from=&to=.
func (h *ReportsHandler) FinancialSummary(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	_, period, ok := h.period(c)
	if !ok {
		return
	}

	fs, err := h.service.FinancialSummary(c.Request.Context(), actor, period)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, fs)
}

// ExportSales handles GET /reports/sales-summary/export and returns an xlsx
// workbook with the daily summary and product performance.
func (h *ReportsHandler) ExportSales(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	q, period, ok := h.period(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	summary, err := h.service.SalesSummary(ctx, actor, period)
	if err != nil {
		h.Error(c, err)
		return
	}
	products, err := h.service.ProductPerformance(ctx, actor, reports.PerformanceFilter{
		Period: summary.Period,
		Limit:  q.Limit,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.SalesWorkbook(&buf, summary, products); err != nil {
		h.Error(c, fmt.Errorf("export sales: %w", err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename(summary.Period)))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"hwshop/internal/infrastructure/metrics"
)

// Metrics records request counts and latency labelled by route template.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// LedgerOp counts the outcome of the ledger operation served by the route.
func LedgerOp(m *metrics.Metrics, operation string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		var err error
		if len(c.Errors) > 0 {
			err = c.Errors.Last().Err
		}
		m.ObserveLedger(operation, err)
	}
}

// Invalidator drops cached read models.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// InvalidateOnWrite drops cached reports after a successful write request.
func InvalidateOnWrite(inv Invalidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			return
		}
		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		inv.Invalidate(c.Request.Context())
	}
}

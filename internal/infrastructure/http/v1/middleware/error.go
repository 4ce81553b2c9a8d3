package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hwshop/internal/core/apperror"
	"hwshop/pkg/logger"
)

// ErrorHandler renders the last handler error as the error envelope.
// Handlers only call c.Error; this is the one place responses for failures are written.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		if appErr, ok := apperror.AsAppError(err); ok {
			if appErr.Err != nil {
				logger.Error(c.Request.Context(), "request error",
					"code", appErr.Code,
					"cause", appErr.Err,
				)
			}

			details := appErr.Details
			if appErr.HTTPStatus >= http.StatusInternalServerError {
				details = map[string]any{"request_id": c.GetString("request_id")}
			}
			if appErr.Retryable {
				c.Header("Retry-After", "1")
			}

			c.JSON(appErr.HTTPStatus, gin.H{
				"status":  "error",
				"code":    appErr.Code,
				"message": appErr.Message,
				"details": details,
			})
			return
		}

		logger.Error(c.Request.Context(), "unhandled error", "error", err)

		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"code":    apperror.CodeInternal,
			"message": "Internal server error",
			"details": map[string]any{"request_id": c.GetString("request_id")},
		})
	}
}

package middleware

import (
	"github.com/gin-gonic/gin"

	"hwshop/internal/core/apperror"
	"hwshop/internal/core/security"
)

// RequireCapability rejects the request early unless the actor's role holds
// every listed capability. Services check again on their own.
func RequireCapability(caps ...security.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			_ = c.Error(apperror.NewUnauthorized("authentication required"))
			c.Abort()
			return
		}

		for _, cp := range caps {
			if err := actor.Require(cp); err != nil {
				_ = c.Error(err)
				c.Abort()
				return
			}
		}

		c.Next()
	}
}

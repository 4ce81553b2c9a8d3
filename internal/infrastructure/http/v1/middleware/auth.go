package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"hwshop/internal/core/apperror"
	appctx "hwshop/internal/core/context"
	"hwshop/internal/core/security"
)

const actorKey = "actor"

// TokenValidator turns a bearer token into the acting principal.
type TokenValidator interface {
	ValidateToken(tokenString string) (security.Actor, error)
}

// Claims are the identity-provider claims the ledger relies on:
// the subject is the actor id and role is one of the shop roles.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTValidator verifies HS256 tokens issued by the identity provider.
type JWTValidator struct {
	secret []byte
	parser *jwt.Parser
}

// NewJWTValidator creates a validator. An empty issuer disables the iss check.
func NewJWTValidator(secret, issuer string) *JWTValidator {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	return &JWTValidator{secret: []byte(secret), parser: jwt.NewParser(opts...)}
}

// ValidateToken checks signature, expiry and issuer, then maps claims to an Actor.
func (v *JWTValidator) ValidateToken(tokenString string) (security.Actor, error) {
	var claims Claims
	_, err := v.parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		msg := "invalid token"
		if errors.Is(err, jwt.ErrTokenExpired) {
			msg = "token expired"
		}
		return security.Actor{}, apperror.NewUnauthorized(msg).WithCause(err)
	}
	if claims.Subject == "" {
		return security.Actor{}, apperror.NewUnauthorized("token has no subject")
	}

	role, err := security.ParseRole(claims.Role)
	if err != nil {
		return security.Actor{}, err
	}
	return security.Actor{ID: claims.Subject, Role: role}, nil
}

// Auth validates the bearer token and stores the actor on the request.
func Auth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		actor, err := validator.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		ctx := appctx.WithUser(c.Request.Context(), &appctx.RequestUser{
			ActorID: actor.ID,
			Role:    string(actor.Role),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Set(actorKey, actor)

		c.Next()
	}
}

// ActorFrom returns the actor stored by Auth.
func ActorFrom(c *gin.Context) (security.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return security.Actor{}, false
	}
	actor, ok := v.(security.Actor)
	return actor, ok
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}

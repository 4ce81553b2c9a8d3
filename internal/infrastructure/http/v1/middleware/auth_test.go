package middleware

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hwshop/internal/core/apperror"
	"hwshop/internal/core/security"
)

func sign(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func claims(subject, role, issuer string, ttl time.Duration) Claims {
	return Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
}

func TestJWTValidator(t *testing.T) {
	secret := []byte("secret")
	v := NewJWTValidator(string(secret), "shop-idp")

	t.Run("valid", func(t *testing.T) {
		actor, err := v.ValidateToken(sign(t, jwt.SigningMethodHS256, secret, claims("u1", "manager", "shop-idp", time.Hour)))
		require.NoError(t, err)
		assert.Equal(t, security.Actor{ID: "u1", Role: security.RoleManager}, actor)
	})

	rejected := []struct {
		name    string
		token   string
		message string
	}{
		{"expired", sign(t, jwt.SigningMethodHS256, secret, claims("u1", "owner", "shop-idp", -time.Minute)), "token expired"},
		{"wrong issuer", sign(t, jwt.SigningMethodHS256, secret, claims("u1", "owner", "elsewhere", time.Hour)), "invalid token"},
		{"wrong secret", sign(t, jwt.SigningMethodHS256, []byte("other"), claims("u1", "owner", "shop-idp", time.Hour)), "invalid token"},
		{"wrong algorithm", sign(t, jwt.SigningMethodHS512, secret, claims("u1", "owner", "shop-idp", time.Hour)), "invalid token"},
		{"no subject", sign(t, jwt.SigningMethodHS256, secret, claims("", "owner", "shop-idp", time.Hour)), "token has no subject"},
	}
	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.ValidateToken(tt.token)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
			assert.Equal(t, tt.message, appErr.Message)
		})
	}

	t.Run("unknown role", func(t *testing.T) {
		_, err := v.ValidateToken(sign(t, jwt.SigningMethodHS256, secret, claims("u1", "janitor", "shop-idp", time.Hour)))
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
	})

	t.Run("missing expiry", func(t *testing.T) {
		c := claims("u1", "owner", "shop-idp", 0)
		c.ExpiresAt = nil
		_, err := v.ValidateToken(sign(t, jwt.SigningMethodHS256, secret, c))
		require.Error(t, err)
	})
}

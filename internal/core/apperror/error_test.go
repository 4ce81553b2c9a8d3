package apperror

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCategoryOf(t *testing.T) {
	ten := decimal.NewFromInt(10)
	six := decimal.NewFromInt(6)

	tests := []struct {
		name string
		err  error
		want Category
	}{
		{"validation", NewValidation("bad"), CategoryValidation},
		{"not found", NewNotFound("product", "x"), CategoryNotFound},
		{"insufficient stock", NewInsufficientStock("p", ten, six), CategoryConflict},
		{"payment exceeds", NewPaymentExceedsBalance("s", ten, six), CategoryConflict},
		{"negative stock", NewNegativeStock("p", six, ten.Neg(), "damaged"), CategoryConflict},
		{"referenced", NewReferenced("product", "x"), CategoryConflict},
		{"duplicate", NewDuplicate("product", "sku", "A-1"), CategoryConflict},
		{"database", NewDatabase(fmt.Errorf("boom")), CategoryIntegrity},
		{"timeout", NewTimeout(context.DeadlineExceeded), CategoryTransient},
		{"lock", NewConcurrentModification("inventory", "x"), CategoryTransient},
		{"forbidden", NewForbidden("no"), CategoryAuth},
		{"plain error", fmt.Errorf("plain"), CategoryInternal},
		{"wrapped", fmt.Errorf("create sale: %w", NewValidation("bad")), CategoryValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CategoryOf(tt.err))
		})
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewTimeout(nil)))
	assert.True(t, IsRetryable(fmt.Errorf("wrap: %w", NewConcurrentModification("sale", 1))))
	assert.False(t, IsRetryable(NewConflict("x")))
	assert.False(t, IsRetryable(fmt.Errorf("plain")))
}

func TestInsufficientStockDetails(t *testing.T) {
	err := NewInsufficientStock("p-1", decimal.RequireFromString("6"), decimal.RequireFromString("4"))

	assert.Equal(t, http.StatusConflict, GetHTTPStatus(err))
	assert.Equal(t, "6", err.Details["requested"])
	assert.Equal(t, "4", err.Details["available"])
	assert.Contains(t, err.Message, "insufficient stock")
}

package v1

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hwshop/internal/app"
	"hwshop/internal/infrastructure/export"
	"hwshop/internal/infrastructure/http/v1/dto"
	"hwshop/internal/infrastructure/http/v1/middleware"
	"hwshop/internal/infrastructure/metrics"
	"hwshop/pkg/logger"
)

const (
	testSecret = "test-secret"
	testIssuer = "hwshop-test"
)

type envelope struct {
	Status     string          `json:"status"`
	Data       json.RawMessage `json:"data"`
	Pagination *dto.Pagination `json:"pagination"`
	Code       string          `json:"code"`
	Message    string          `json:"message"`
	Details    map[string]any  `json:"details"`
}

type apiClient struct {
	t       *testing.T
	handler http.Handler
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	svc, _ := app.NewMemory()
	router := NewRouter(RouterConfig{
		Services:       svc,
		Logger:         logger.Nop(),
		Metrics:        metrics.New("test"),
		TokenValidator: middleware.NewJWTValidator(testSecret, testIssuer),
	})
	return &apiClient{t: t, handler: router}
}

func token(t *testing.T, subject, role string, ttl time.Duration) string {
	t.Helper()
	claims := middleware.Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    testIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (a *apiClient) raw(method, path, bearer string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *apiClient) do(method, path, bearer string, body any, wantStatus int) envelope {
	a.t.Helper()
	rec := a.raw(method, path, bearer, body)
	require.Equalf(a.t, wantStatus, rec.Code, "%s %s: %s", method, path, rec.Body.String())

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

type created struct {
	ID     string `json:"id"`
	Number string `json:"number"`
}

type saleBody struct {
	Number        string          `json:"number"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	AmountPaid    decimal.Decimal `json:"amountPaid"`
	PaymentStatus string          `json:"paymentStatus"`
	Items         []struct {
		SKU       string          `json:"sku"`
		LineTotal decimal.Decimal `json:"lineTotal"`
	} `json:"items"`
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func (a *apiClient) seedProduct(bearer, sku string) string {
	a.t.Helper()
	env := a.do(http.MethodPost, "/api/v1/products", bearer, map[string]any{
		"sku":           sku,
		"name":          "Claw hammer",
		"unit":          "pcs",
		"purchasePrice": "5",
		"retailPrice":   "8.50",
		"minStockLevel": "2",
	}, http.StatusCreated)
	return decode[created](a.t, env).ID
}

func (a *apiClient) seedStock(bearer, productID, quantity string) {
	a.t.Helper()
	supplier := decode[created](a.t, a.do(http.MethodPost, "/api/v1/suppliers", bearer,
		map[string]any{"name": "Acme Tools"}, http.StatusCreated))

	env := a.do(http.MethodPost, "/api/v1/purchases", bearer, map[string]any{
		"supplierId": supplier.ID,
		"items": []map[string]any{
			{"productId": productID, "quantity": quantity, "unitPrice": "5"},
		},
	}, http.StatusCreated)
	assert.True(a.t, strings.HasPrefix(decode[created](a.t, env).Number, "PO-"))
}

func TestHealth(t *testing.T) {
	api := newAPI(t)

	env := api.do(http.MethodGet, "/health/live", "", nil, http.StatusOK)
	assert.Equal(t, "ok", env.Status)

	env = api.do(http.MethodGet, "/health/ready", "", nil, http.StatusOK)
	assert.Equal(t, "ok", env.Status)
}

func TestAuthentication(t *testing.T) {
	api := newAPI(t)

	tests := []struct {
		name   string
		bearer string
	}{
		{"missing token", ""},
		{"garbage token", "not-a-jwt"},
		{"expired token", token(t, "u1", "owner", -time.Minute)},
		{"unknown role", token(t, "u1", "janitor", time.Hour)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := api.do(http.MethodGet, "/api/v1/products", tt.bearer, nil, http.StatusUnauthorized)
			assert.Equal(t, "error", env.Status)
			assert.Equal(t, "UNAUTHORIZED", env.Code)
		})
	}
}

func TestCapabilityDenied(t *testing.T) {
	api := newAPI(t)
	cashier := token(t, "cashier-1", "cashier", time.Hour)

	env := api.do(http.MethodDelete, "/api/v1/sales/0190a5c4-7d2e-7c3a-9d1e-2b3c4d5e6f70", cashier, nil, http.StatusForbidden)
	assert.Equal(t, "FORBIDDEN", env.Code)

	env = api.do(http.MethodPost, "/api/v1/admin/inventory/rebuild", cashier, nil, http.StatusForbidden)
	assert.Equal(t, "FORBIDDEN", env.Code)
}

func TestProductDuplicateSKU(t *testing.T) {
	api := newAPI(t)
	owner := token(t, "owner-1", "owner", time.Hour)

	productID := api.seedProduct(owner, "HAM-01")

	body := map[string]any{"sku": "HAM-01", "name": "Other", "unit": "pcs"}
	env := api.do(http.MethodPost, "/api/v1/products", owner, body, http.StatusConflict)
	assert.Equal(t, "DUPLICATE_ENTRY", env.Code)

	env = api.do(http.MethodGet, "/api/v1/products/by-sku/HAM-01", owner, nil, http.StatusOK)
	assert.Equal(t, productID, decode[created](t, env).ID)
}

func TestCashSaleFlow(t *testing.T) {
	api := newAPI(t)
	owner := token(t, "owner-1", "owner", time.Hour)
	cashier := token(t, "cashier-1", "cashier", time.Hour)

	productID := api.seedProduct(owner, "HAM-01")
	api.seedStock(owner, productID, "10")

	env := api.do(http.MethodPost, "/api/v1/sales", cashier, map[string]any{
		"paymentMethod": "cash",
		"items": []map[string]any{
			{"productId": productID, "quantity": "3", "unitPrice": "8.50"},
		},
	}, http.StatusCreated)
	s := decode[saleBody](t, env)
	assert.True(t, strings.HasPrefix(s.Number, "INV-"))
	assert.Equal(t, "paid", s.PaymentStatus)
	requireDecimal(t, "25.5", s.TotalAmount)
	requireDecimal(t, "25.5", s.AmountPaid)
	require.Len(t, s.Items, 1)
	assert.Equal(t, "HAM-01", s.Items[0].SKU)

	env = api.do(http.MethodGet, "/api/v1/stock/inventory/"+productID, cashier, nil, http.StatusOK)
	inv := decode[struct {
		Quantity decimal.Decimal `json:"quantity"`
	}](t, env)
	requireDecimal(t, "7", inv.Quantity)

	env = api.do(http.MethodPost, "/api/v1/sales", cashier, map[string]any{
		"paymentMethod": "card",
		"items": []map[string]any{
			{"productId": productID, "quantity": "8", "unitPrice": "8.50"},
		},
	}, http.StatusConflict)
	assert.Equal(t, "INSUFFICIENT_STOCK", env.Code)

	env = api.do(http.MethodGet, "/api/v1/stock/movements?productId="+productID, owner, nil, http.StatusOK)
	require.NotNil(t, env.Pagination)
	assert.EqualValues(t, 2, env.Pagination.Total)

	env = api.do(http.MethodGet, "/api/v1/sales?page=1&limit=1", owner, nil, http.StatusOK)
	require.NotNil(t, env.Pagination)
	assert.EqualValues(t, 1, env.Pagination.Total)
	assert.Equal(t, 1, env.Pagination.TotalPages)
}

func TestCreditSaleSettlement(t *testing.T) {
	api := newAPI(t)
	owner := token(t, "owner-1", "owner", time.Hour)
	cashier := token(t, "cashier-1", "cashier", time.Hour)

	productID := api.seedProduct(owner, "DRL-02")
	api.seedStock(owner, productID, "5")

	customer := decode[created](t, api.do(http.MethodPost, "/api/v1/customers", cashier,
		map[string]any{"name": "Builder Bob", "creditLimit": "100"}, http.StatusCreated))

	env := api.do(http.MethodPost, "/api/v1/sales", cashier, map[string]any{
		"customerId":    customer.ID,
		"paymentMethod": "credit",
		"items": []map[string]any{
			{"productId": productID, "quantity": "2", "unitPrice": "10"},
		},
	}, http.StatusCreated)
	s := decode[created](t, env)
	assert.Equal(t, "pending", decode[saleBody](t, env).PaymentStatus)

	type outstanding struct {
		CurrentBalance decimal.Decimal `json:"currentBalance"`
		OpenSales      []struct {
			Remaining decimal.Decimal `json:"remaining"`
		} `json:"openSales"`
	}
	out := decode[outstanding](t, api.do(http.MethodGet, "/api/v1/customers/"+customer.ID+"/outstanding", cashier, nil, http.StatusOK))
	requireDecimal(t, "20", out.CurrentBalance)
	require.Len(t, out.OpenSales, 1)
	requireDecimal(t, "20", out.OpenSales[0].Remaining)

	env = api.do(http.MethodPost, "/api/v1/payments", cashier, map[string]any{
		"saleId": s.ID, "amount": "25", "paymentMethod": "cash",
	}, http.StatusConflict)
	assert.Equal(t, "PAYMENT_EXCEEDS_BALANCE", env.Code)

	api.do(http.MethodPost, "/api/v1/payments", cashier, map[string]any{
		"saleId": s.ID, "amount": "20", "paymentMethod": "mobile_money",
	}, http.StatusCreated)

	out = decode[outstanding](t, api.do(http.MethodGet, "/api/v1/customers/"+customer.ID+"/outstanding", cashier, nil, http.StatusOK))
	requireDecimal(t, "0", out.CurrentBalance)
	assert.Empty(t, out.OpenSales)

	env = api.do(http.MethodGet, "/api/v1/sales/"+s.ID, cashier, nil, http.StatusOK)
	assert.Equal(t, "paid", decode[saleBody](t, env).PaymentStatus)

	env = api.do(http.MethodGet, "/api/v1/sales/"+s.ID+"/payments", cashier, nil, http.StatusOK)
	assert.Len(t, decode[[]created](t, env), 1)
}

func TestValidationErrors(t *testing.T) {
	api := newAPI(t)
	owner := token(t, "owner-1", "owner", time.Hour)

	env := api.do(http.MethodPost, "/api/v1/sales", owner, map[string]any{
		"paymentMethod": "cash",
		"items":         []any{},
	}, http.StatusBadRequest)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)
	fields, ok := env.Details["fields"].(map[string]any)
	require.True(t, ok, "details: %v", env.Details)
	assert.Contains(t, fields, "items")

	env = api.do(http.MethodGet, "/api/v1/sales?limit=500", owner, nil, http.StatusBadRequest)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)

	env = api.do(http.MethodGet, "/api/v1/sales/not-a-uuid", owner, nil, http.StatusBadRequest)
	assert.Equal(t, "invalid id format", env.Message)

	env = api.do(http.MethodGet, "/api/v1/sales?from=yesterday", owner, nil, http.StatusBadRequest)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)
}

func TestExportSales(t *testing.T) {
	api := newAPI(t)
	owner := token(t, "owner-1", "owner", time.Hour)

	productID := api.seedProduct(owner, "HAM-01")
	api.seedStock(owner, productID, "4")
	api.do(http.MethodPost, "/api/v1/sales", owner, map[string]any{
		"paymentMethod": "cash",
		"items":         []map[string]any{{"productId": productID, "quantity": "1", "unitPrice": "8.50"}},
	}, http.StatusCreated)

	rec := api.raw(http.MethodGet, "/api/v1/reports/sales-summary/export", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, export.ContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "sales_")
	assert.NotZero(t, rec.Body.Len())
}

func TestLedgerMetrics(t *testing.T) {
	api := newAPI(t)
	owner := token(t, "owner-1", "owner", time.Hour)

	productID := api.seedProduct(owner, "HAM-01")
	api.seedStock(owner, productID, "2")
	api.do(http.MethodPost, "/api/v1/sales", owner, map[string]any{
		"paymentMethod": "cash",
		"items":         []map[string]any{{"productId": productID, "quantity": "1", "unitPrice": "8.50"}},
	}, http.StatusCreated)

	rec := api.raw(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `test_ledger_operations_total{operation="sale.create",outcome="ok"} 1`)
	assert.Contains(t, body, `test_ledger_operations_total{operation="purchase.create",outcome="ok"} 1`)
}

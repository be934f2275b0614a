package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dukerupert/tawseel/internal/domain"
	"github.com/dukerupert/tawseel/internal/storefront"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID_GeneratesWhenMissing(t *testing.T) {
	var captured string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders", nil))

	require.NotEmpty(t, captured)
	assert.Equal(t, captured, rec.Header().Get(RequestIDHeader))
}

func TestRequestID_PreservesExisting(t *testing.T) {
	var captured string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	req.Header.Set(RequestIDHeader, "upstream-id-42")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "upstream-id-42", captured)
}

func TestWithShop_FromHeader(t *testing.T) {
	var shop *domain.Shop
	handler := WithShop(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		shop = domain.ShopFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/webhooks/orders/create", nil)
	req.Header.Set(storefront.HeaderShopDomain, "manama-sweets.example.com")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, shop)
	assert.Equal(t, "manama-sweets.example.com", shop.Key)
}

func TestWithShop_FromQueryParam(t *testing.T) {
	var shopKey string
	handler := WithShop(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		shopKey = domain.ShopKeyFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/orders?shop=manama-sweets.example.com", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "manama-sweets.example.com", shopKey)
}

func TestRequireShop_RejectsWithoutShop(t *testing.T) {
	called := false
	handler := RequireShop(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), domain.EINVALID)
}

func TestErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{domain.EINVALID, http.StatusBadRequest},
		{domain.EUNAUTHORIZED, http.StatusUnauthorized},
		{domain.ENOTFOUND, http.StatusNotFound},
		{domain.EUNPROCESSABLE, http.StatusUnprocessableEntity},
		{domain.EUNAVAILABLE, http.StatusBadGateway},
		{domain.EINTERNAL, http.StatusInternalServerError},
		{"bogus", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, ErrorCodeToHTTPStatus(tt.code), tt.code)
	}
}

func TestMaxBodySize_RejectsOversizedBody(t *testing.T) {
	handler := MaxBodySize(16)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	body := strings.NewReader(strings.Repeat("x", 64))
	req := httptest.NewRequest(http.MethodPost, "/webhooks/orders/create", body)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

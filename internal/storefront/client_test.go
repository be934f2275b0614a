package storefront_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukerupert/tawseel/internal/domain"
	"github.com/dukerupert/tawseel/internal/storefront"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *storefront.HTTPClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := storefront.NewHTTPClient(storefront.HTTPClientConfig{
		Sessions: &storefront.MockSessionStore{},
		BaseURL:  server.URL,
	})
	require.NoError(t, err)
	return client
}

func TestNewHTTPClient_RequiresSessions(t *testing.T) {
	_, err := storefront.NewHTTPClient(storefront.HTTPClientConfig{})
	assert.ErrorIs(t, err, storefront.ErrMissingSessions)
}

func TestHTTPClient_GetStoreProfile(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/api/2024-10/shop.json", r.URL.Path)
		assert.Equal(t, "mock-token", r.Header.Get("X-Storefront-Access-Token"))
		w.Write([]byte(`{"shop":{"name":"Manama Sweets","address1":"Building 2733, Road 3953","city":"Al Hajiyat","zip":"939"}}`))
	}))

	profile, err := client.GetStoreProfile(context.Background(), "manama-sweets.example.com")

	require.NoError(t, err)
	assert.Equal(t, "Manama Sweets", profile.Name)
	assert.Equal(t, "939", profile.Zip)
	assert.True(t, profile.HasAddress())
}

func TestHTTPClient_GetOrder(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/api/2024-10/orders/4521930572.json", r.URL.Path)
		w.Write([]byte(`{"order":{"id":4521930572,"name":"#1001","currency":"BHD","total_price":"12.500","financial_status":"pending","line_items":[{"id":1,"title":"Baklava box","quantity":2,"price":"6.250","grams":500}]}}`))
	}))

	order, err := client.GetOrder(context.Background(), "manama-sweets.example.com", 4521930572)

	require.NoError(t, err)
	assert.Equal(t, int64(4521930572), order.ID)
	assert.Equal(t, "#1001", order.Name)
	require.Len(t, order.LineItems, 1)
	assert.Equal(t, 2, order.LineItems[0].Quantity)
}

func TestHTTPClient_ListOrders(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/api/2024-10/orders.json", r.URL.Path)
		assert.Equal(t, "open", r.URL.Query().Get("status"))
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		assert.Equal(t, "100", r.URL.Query().Get("since_id"))
		w.Write([]byte(`{"orders":[
			{"id":101,"name":"#1001","currency":"BHD","total_price":"12.500","line_items":[{"id":1,"title":"Baklava box","quantity":2,"price":"6.250","grams":500}]},
			{"id":102,"currency":"BHD","total_price":"3.000","line_items":[]},
			{"id":103,"name":"#1003","currency":"BHD","total_price":"6.250","line_items":[{"id":2,"title":"Kunafa tray","quantity":1,"price":"6.250","grams":900}]}
		]}`))
	}))

	orders, err := client.ListOrders(context.Background(), "manama-sweets.example.com", storefront.OrderListOptions{
		Status:  "open",
		Limit:   25,
		SinceID: 100,
	})

	require.NoError(t, err)
	// Order 102 fails payload validation and is dropped from the page.
	require.Len(t, orders, 2)
	assert.Equal(t, int64(101), orders[0].ID)
	assert.Equal(t, int64(103), orders[1].ID)
}

func TestHTTPClient_ListOrders_NoFilters(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/api/2024-10/orders.json", r.URL.Path)
		assert.Empty(t, r.URL.RawQuery)
		w.Write([]byte(`{"orders":[]}`))
	}))

	orders, err := client.ListOrders(context.Background(), "manama-sweets.example.com", storefront.OrderListOptions{})

	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestHTTPClient_GetOrder_InvalidPayload(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"order":{"id":4521930572,"currency":"BHD","total_price":"12.500","line_items":[]}}`))
	}))

	_, err := client.GetOrder(context.Background(), "manama-sweets.example.com", 4521930572)

	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
}

func TestHTTPClient_StatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantCode string
	}{
		{"not found", http.StatusNotFound, domain.ENOTFOUND},
		{"unauthorized", http.StatusUnauthorized, domain.EUNAUTHORIZED},
		{"forbidden", http.StatusForbidden, domain.EUNAUTHORIZED},
		{"server error", http.StatusInternalServerError, domain.EUNAVAILABLE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			_, err := client.GetStoreProfile(context.Background(), "manama-sweets.example.com")

			require.Error(t, err)
			assert.Equal(t, tt.wantCode, domain.ErrorCode(err))
		})
	}
}

func TestHTTPClient_SessionLookupFailurePropagates(t *testing.T) {
	client, err := storefront.NewHTTPClient(storefront.HTTPClientConfig{
		Sessions: storefront.NewStaticSessions(nil),
	})
	require.NoError(t, err)

	_, err = client.GetStoreProfile(context.Background(), "unknown.example.com")

	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}

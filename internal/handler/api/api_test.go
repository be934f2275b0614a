package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dukerupert/tawseel/internal/address"
	"github.com/dukerupert/tawseel/internal/cache"
	"github.com/dukerupert/tawseel/internal/domain"
	"github.com/dukerupert/tawseel/internal/logistics"
	"github.com/dukerupert/tawseel/internal/masterdata"
	"github.com/dukerupert/tawseel/internal/service"
	"github.com/dukerupert/tawseel/internal/storefront"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testShop = "manama-sweets.example.com"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func stubSource() *masterdata.MockSource {
	return &masterdata.MockSource{
		ListBlocksFunc: func(ctx context.Context, search string) ([]masterdata.Record, error) {
			return []masterdata.Record{{ID: 12, Code: "939", Name: "Block 939 Al Hajiyat"}}, nil
		},
		ListRoadsFunc: func(ctx context.Context, blockID int64, search string) ([]masterdata.Record, error) {
			return []masterdata.Record{{ID: 52, Code: "3953", Name: "Road 3953"}}, nil
		},
		ListBuildingsFunc: func(ctx context.Context, roadID, blockID int64, search string) ([]masterdata.Record, error) {
			return []masterdata.Record{{ID: 73, Code: "2733", Name: "Building 2733"}}, nil
		},
	}
}

func stubOrder(id int64) *domain.SourceOrder {
	return &domain.SourceOrder{
		ID:              id,
		Name:            "#1001",
		Currency:        "BHD",
		TotalPrice:      "12.500",
		FinancialStatus: "pending",
		Customer: &domain.SourceCustomer{
			FirstName: "Fatima",
			LastName:  "Ahmed",
			Phone:     "+97333000000",
		},
		ShippingAddress: &domain.SourceAddress{
			FirstName: "Fatima",
			LastName:  "Ahmed",
			Address1:  "Building: 2733, Road: 3953,",
			Address2:  "Flat 21",
			City:      "Al Hajiyat",
			Zip:       "939",
			Phone:     "+97333000000",
		},
		LineItems: []domain.SourceLineItem{
			{Title: "Baklava box", Quantity: 2, Price: "6.250", Grams: 500},
		},
	}
}

func newTestHandler(sf *storefront.MockClient, ledger *domain.MockLedger, provider *logistics.MockProvider) *Handler {
	source := stubSource()
	if sf.GetStoreProfileFunc == nil {
		sf.GetStoreProfileFunc = func(ctx context.Context, shopKey string) (*storefront.StoreProfile, error) {
			return &storefront.StoreProfile{
				Name:     "Manama Sweets",
				Phone:    "+97317000000",
				Address1: "Building: 2733, Road: 3953,",
				Address2: "Flat 21",
				City:     "Al Hajiyat",
				Zip:      "939",
			}, nil
		}
	}

	parser := address.NewParser(nil)
	resolver := masterdata.NewResolver(source, nil)
	pickups := service.NewPickupResolver(sf, parser, resolver, cache.NewMemory(), service.PickupDefaults{}, nil)
	transformer := service.NewTransformer(parser, resolver, pickups, service.TransformConfig{}, nil)
	processor := service.NewProcessor(ledger, transformer, provider, source, time.Millisecond, nil)

	return NewHandler(sf, processor, ledger, provider, discardLogger())
}

func shopRequest(method, target, body string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Accept", "application/json")
	ctx := domain.NewContextWithShop(req.Context(), &domain.Shop{Key: testShop})
	return req.WithContext(ctx)
}

func TestHandleSync_ProcessesBatch(t *testing.T) {
	sf := &storefront.MockClient{
		GetOrderFunc: func(ctx context.Context, shopKey string, orderID int64) (*domain.SourceOrder, error) {
			return stubOrder(orderID), nil
		},
	}
	ledger := &domain.MockLedger{}
	provider := &logistics.MockProvider{
		CreateOrderFunc: func(ctx context.Context, order *logistics.Order) (*logistics.CreateResult, error) {
			return &logistics.CreateResult{OrderID: "TWS-8842", TrackingURL: "https://courier.example/track/TWS-8842"}, nil
		},
	}
	h := newTestHandler(sf, ledger, provider)

	req := shopRequest(http.MethodPost, "/api/sync", `{"order_ids": [101, 102]}`)
	rec := httptest.NewRecorder()
	h.HandleSync(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Shop      string `json:"shop"`
		Submitted int    `json:"submitted"`
		Succeeded int    `json:"succeeded"`
		Failed    int    `json:"failed"`
		Results   []struct {
			OrderID         int64  `json:"order_id"`
			Status          string `json:"status"`
			ProviderOrderID string `json:"provider_order_id"`
		} `json:"results"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.Equal(t, testShop, resp.Shop)
	assert.Equal(t, 2, resp.Submitted)
	assert.Equal(t, 2, resp.Succeeded)
	assert.Zero(t, resp.Failed)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "processed", resp.Results[0].Status)
	assert.Equal(t, "TWS-8842", resp.Results[0].ProviderOrderID)
	assert.Equal(t, 2, provider.CreateCalls)
}

func TestHandleSync_ReportsFetchFailures(t *testing.T) {
	sf := &storefront.MockClient{
		GetOrderFunc: func(ctx context.Context, shopKey string, orderID int64) (*domain.SourceOrder, error) {
			if orderID == 102 {
				return nil, domain.NotFound("storefront.get_order", "order", "102")
			}
			return stubOrder(orderID), nil
		},
	}
	ledger := &domain.MockLedger{}
	provider := &logistics.MockProvider{
		CreateOrderFunc: func(ctx context.Context, order *logistics.Order) (*logistics.CreateResult, error) {
			return &logistics.CreateResult{OrderID: "TWS-8842"}, nil
		},
	}
	h := newTestHandler(sf, ledger, provider)

	req := shopRequest(http.MethodPost, "/api/sync", `{"order_ids": [101, 102]}`)
	rec := httptest.NewRecorder()
	h.HandleSync(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Succeeded int `json:"succeeded"`
		Failed    int `json:"failed"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Succeeded)
	assert.Equal(t, 1, resp.Failed)
}

func TestHandleSync_FillsBatchFromOrderListing(t *testing.T) {
	var gotOpts storefront.OrderListOptions
	sf := &storefront.MockClient{
		ListOrdersFunc: func(ctx context.Context, shopKey string, opts storefront.OrderListOptions) ([]*domain.SourceOrder, error) {
			gotOpts = opts
			return []*domain.SourceOrder{stubOrder(101), stubOrder(102)}, nil
		},
	}
	ledger := &domain.MockLedger{}
	provider := &logistics.MockProvider{
		CreateOrderFunc: func(ctx context.Context, order *logistics.Order) (*logistics.CreateResult, error) {
			return &logistics.CreateResult{OrderID: "TWS-8842"}, nil
		},
	}
	h := newTestHandler(sf, ledger, provider)

	req := shopRequest(http.MethodPost, "/api/sync", `{"status": "open", "limit": 10, "since_id": 100}`)
	rec := httptest.NewRecorder()
	h.HandleSync(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, sf.ListCalls)
	assert.Zero(t, sf.OrderCalls)
	assert.Equal(t, storefront.OrderListOptions{Status: "open", Limit: 10, SinceID: 100}, gotOpts)

	var resp struct {
		Submitted int `json:"submitted"`
		Succeeded int `json:"succeeded"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 2, resp.Submitted)
	assert.Equal(t, 2, resp.Succeeded)
}

func TestHandleSync_ListingDefaultsToBatchCap(t *testing.T) {
	sf := &storefront.MockClient{
		ListOrdersFunc: func(ctx context.Context, shopKey string, opts storefront.OrderListOptions) ([]*domain.SourceOrder, error) {
			assert.Equal(t, maxSyncBatch, opts.Limit)
			return nil, nil
		},
	}
	h := newTestHandler(sf, &domain.MockLedger{}, &logistics.MockProvider{})

	req := shopRequest(http.MethodPost, "/api/sync", `{}`)
	rec := httptest.NewRecorder()
	h.HandleSync(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, sf.ListCalls)
}

func TestHandleSync_RequiresShop(t *testing.T) {
	h := newTestHandler(&storefront.MockClient{}, &domain.MockLedger{}, &logistics.MockProvider{})

	req := httptest.NewRequest(http.MethodPost, "/api/sync", strings.NewReader(`{"order_ids": [1]}`))
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.HandleSync(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSync_RejectsOversizedBatch(t *testing.T) {
	h := newTestHandler(&storefront.MockClient{}, &domain.MockLedger{}, &logistics.MockProvider{})

	ids := make([]string, 51)
	for i := range ids {
		ids[i] = "1"
	}
	body := `{"order_ids": [` + strings.Join(ids, ",") + `]}`

	req := shopRequest(http.MethodPost, "/api/sync", body)
	rec := httptest.NewRecorder()
	h.HandleSync(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHandleListOrders_ReturnsLedgerEntries(t *testing.T) {
	ledger := &domain.MockLedger{
		ListByShopFunc: func(ctx context.Context, shop string, limit int) ([]domain.OrderLogEntry, error) {
			return []domain.OrderLogEntry{
				{
					Shop:            shop,
					SourceOrderID:   4521930572,
					ProviderOrderID: "TWS-8842",
					Status:          domain.StatusProcessed,
					TotalPrice:      decimal.RequireFromString("12.5"),
					Currency:        "BHD",
					CustomerName:    "Fatima Ahmed",
				},
			}, nil
		},
	}
	h := newTestHandler(&storefront.MockClient{}, ledger, &logistics.MockProvider{})

	req := shopRequest(http.MethodGet, "/api/orders?shop="+testShop, "")
	rec := httptest.NewRecorder()
	h.HandleListOrders(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Orders []struct {
			SourceOrderID   int64  `json:"source_order_id"`
			ProviderOrderID string `json:"provider_order_id"`
			Status          string `json:"status"`
			TotalPrice      string `json:"total_price"`
		} `json:"orders"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Orders, 1)
	assert.Equal(t, int64(4521930572), resp.Orders[0].SourceOrderID)
	assert.Equal(t, "TWS-8842", resp.Orders[0].ProviderOrderID)
	assert.Equal(t, "12.5", resp.Orders[0].TotalPrice)
}

func TestHandleListOrders_RejectsBadLimit(t *testing.T) {
	h := newTestHandler(&storefront.MockClient{}, &domain.MockLedger{}, &logistics.MockProvider{})

	req := shopRequest(http.MethodGet, "/api/orders?limit=zero", "")
	rec := httptest.NewRecorder()
	h.HandleListOrders(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleTrackOrder_ReturnsTracking(t *testing.T) {
	provider := &logistics.MockProvider{
		TrackOrderFunc: func(ctx context.Context, providerOrderID string) (*logistics.TrackingInfo, error) {
			return &logistics.TrackingInfo{
				OrderID: providerOrderID,
				Status:  "OUT_FOR_DELIVERY",
			}, nil
		},
	}
	h := newTestHandler(&storefront.MockClient{}, &domain.MockLedger{}, provider)

	req := shopRequest(http.MethodGet, "/api/track/TWS-8842", "")
	req.SetPathValue("id", "TWS-8842")
	rec := httptest.NewRecorder()
	h.HandleTrackOrder(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var info logistics.TrackingInfo
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&info))
	assert.Equal(t, "TWS-8842", info.OrderID)
	assert.Equal(t, "OUT_FOR_DELIVERY", info.Status)
}

func TestHandleTrackOrder_MapsNotFound(t *testing.T) {
	provider := &logistics.MockProvider{
		TrackOrderFunc: func(ctx context.Context, providerOrderID string) (*logistics.TrackingInfo, error) {
			return nil, logistics.ErrOrderNotFound
		},
	}
	h := newTestHandler(&storefront.MockClient{}, &domain.MockLedger{}, provider)

	req := shopRequest(http.MethodGet, "/api/track/nope", "")
	req.SetPathValue("id", "nope")
	rec := httptest.NewRecorder()
	h.HandleTrackOrder(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

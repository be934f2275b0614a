package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dukerupert/tawseel/internal/domain"
)

const defaultAPIVersion = "2024-10"

// ErrMissingSessions is returned when the client is constructed without
// a session store.
var ErrMissingSessions = errors.New("storefront: session store is required")

// HTTPClient implements Client against the platform's admin REST API.
// Each request is authenticated with the shop's session token.
type HTTPClient struct {
	sessions   SessionStore
	apiVersion string
	// baseURL overrides the per-shop https://{shop} host. Tests only.
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

var _ Client = (*HTTPClient)(nil)

// HTTPClientConfig configures an HTTPClient.
type HTTPClientConfig struct {
	Sessions   SessionStore
	APIVersion string
	BaseURL    string
	Timeout    time.Duration
	Logger     *slog.Logger
}

// NewHTTPClient creates a storefront API client.
func NewHTTPClient(cfg HTTPClientConfig) (*HTTPClient, error) {
	if cfg.Sessions == nil {
		return nil, ErrMissingSessions
	}

	version := cfg.APIVersion
	if version == "" {
		version = defaultAPIVersion
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &HTTPClient{
		sessions:   cfg.Sessions,
		apiVersion: version,
		baseURL:    cfg.BaseURL,
		http:       &http.Client{Timeout: timeout},
		logger:     logger.With("component", "storefront_client"),
	}, nil
}

type shopResponse struct {
	Shop StoreProfile `json:"shop"`
}

// GetStoreProfile fetches the shop record, including the merchant's
// address used as the pickup location.
func (c *HTTPClient) GetStoreProfile(ctx context.Context, shopKey string) (*StoreProfile, error) {
	body, err := c.get(ctx, shopKey, "shop.json")
	if err != nil {
		return nil, err
	}

	var resp shopResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, domain.Internal(err, "storefront.get_store_profile", "failed to parse shop response")
	}
	return &resp.Shop, nil
}

// GetOrder fetches a single order by ID. The payload is decoded and
// validated the same way webhook payloads are.
func (c *HTTPClient) GetOrder(ctx context.Context, shopKey string, orderID int64) (*domain.SourceOrder, error) {
	body, err := c.get(ctx, shopKey, fmt.Sprintf("orders/%d.json", orderID))
	if err != nil {
		return nil, err
	}

	var resp struct {
		Order json.RawMessage `json:"order"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, domain.Internal(err, "storefront.get_order", "failed to parse order response")
	}
	if len(resp.Order) == 0 {
		return nil, domain.NotFound("storefront.get_order", "order", fmt.Sprintf("%d", orderID))
	}
	return domain.DecodeSourceOrder(resp.Order)
}

// ListOrders fetches a page of orders, newest cursor first. Orders that
// fail payload validation are skipped with a warning rather than failing
// the whole page.
func (c *HTTPClient) ListOrders(ctx context.Context, shopKey string, opts OrderListOptions) ([]*domain.SourceOrder, error) {
	params := url.Values{}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.SinceID > 0 {
		params.Set("since_id", strconv.FormatInt(opts.SinceID, 10))
	}
	path := "orders.json"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	body, err := c.get(ctx, shopKey, path)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Orders []json.RawMessage `json:"orders"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, domain.Internal(err, "storefront.list_orders", "failed to parse orders response")
	}

	orders := make([]*domain.SourceOrder, 0, len(resp.Orders))
	for _, raw := range resp.Orders {
		order, err := domain.DecodeSourceOrder(raw)
		if err != nil {
			c.logger.Warn("skipping undecodable order in listing", "shop", shopKey, "error", err)
			continue
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (c *HTTPClient) get(ctx context.Context, shopKey, path string) ([]byte, error) {
	const op = "storefront.get"

	session, err := c.sessions.GetSession(ctx, shopKey)
	if err != nil {
		return nil, err
	}

	host := c.baseURL
	if host == "" {
		host = "https://" + shopKey
	}
	url := fmt.Sprintf("%s/admin/api/%s/%s", host, c.apiVersion, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Storefront-Access-Token", session.AccessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, domain.Unavailable(err, op, "storefront API unreachable")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.Unavailable(err, op, "failed to read storefront response")
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.NotFound(op, "resource", path)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, domain.Unauthorized(op, "storefront rejected the session token")
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.logger.Error("storefront API error",
			"shop", shopKey,
			"path", path,
			"status", resp.StatusCode,
			"body", string(body))
		return nil, domain.Unavailable(nil, op, fmt.Sprintf("storefront API error (status %d)", resp.StatusCode))
	}
	return body, nil
}

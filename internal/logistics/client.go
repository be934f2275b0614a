package logistics

import (
	"bytes"
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

	"github.com/dukerupert/tawseel/internal/masterdata"
)

const defaultTimeout = 30 * time.Second

// Client implements Provider and masterdata.Source against the courier's
// REST API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *slog.Logger
}

// Compile-time checks for the two interfaces the client serves.
var (
	_ Provider          = (*Client)(nil)
	_ masterdata.Source = (*Client)(nil)
)

// ClientConfig contains configuration for the courier API client.
type ClientConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration // Optional: defaults to 30s
	Logger  *slog.Logger  // Optional: defaults to slog.Default()
}

// NewClient creates a new courier API client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}, nil
}

// ============================================================================
// Provider
// ============================================================================

// EstimateShipping returns the courier's advisory delivery cost.
func (c *Client) EstimateShipping(ctx context.Context, order *Order) (*Estimate, error) {
	if order.Destination.BlockID == 0 {
		return nil, ErrMissingDestinationBlock
	}

	var estimate Estimate
	if err := c.post(ctx, "/api/v1/orders/estimate", order, &estimate); err != nil {
		return nil, err
	}

	c.logger.Debug("shipping estimate fetched",
		"reference", order.Reference,
		"cost", estimate.Cost,
	)
	return &estimate, nil
}

// CreateOrder submits an order to the courier. A 2xx response without a
// courier order ID is treated as a malformed response and fails hard.
func (c *Client) CreateOrder(ctx context.Context, order *Order) (*CreateResult, error) {
	if order.Destination.BlockID == 0 {
		return nil, ErrMissingDestinationBlock
	}
	if order.Pickup.BlockID == 0 || order.Pickup.Phone == "" {
		return nil, ErrMissingPickup
	}
	if len(order.Packages) == 0 {
		return nil, ErrNoPackages
	}

	logger := c.logger.With("reference", order.Reference)
	logger.Info("creating courier order",
		"destination_block_id", order.Destination.BlockID,
		"is_cod", order.IsCOD,
	)

	var result CreateResult
	if err := c.post(ctx, "/api/v1/orders", order, &result); err != nil {
		logger.Error("courier order creation failed", "error", err)
		return nil, err
	}

	if result.OrderID == "" {
		logger.Error("courier returned success without an order ID")
		return nil, ErrMalformedResponse
	}

	logger.Info("courier order created", "provider_order_id", result.OrderID)
	return &result, nil
}

// TrackOrder returns courier tracking state for an order.
func (c *Client) TrackOrder(ctx context.Context, providerOrderID string) (*TrackingInfo, error) {
	var info TrackingInfo
	err := c.get(ctx, "/api/v1/orders/"+url.PathEscape(providerOrderID)+"/tracking", nil, &info)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &info, nil
}

// ============================================================================
// masterdata.Source
// ============================================================================

// listResponse is the courier's collection envelope.
type listResponse struct {
	Data []masterdata.Record `json:"data"`
}

// ListServiceTypes returns the courier's delivery service types.
func (c *Client) ListServiceTypes(ctx context.Context, search string) ([]masterdata.Record, error) {
	return c.list(ctx, "/api/v1/servicetypes", url.Values{"search": {search}})
}

// ListBlocks returns blocks matching the search term.
func (c *Client) ListBlocks(ctx context.Context, search string) ([]masterdata.Record, error) {
	return c.list(ctx, "/api/v1/blocks", url.Values{"search": {search}})
}

// ListRoads returns roads within a block.
func (c *Client) ListRoads(ctx context.Context, blockID int64, search string) ([]masterdata.Record, error) {
	path := "/api/v1/blocks/" + strconv.FormatInt(blockID, 10) + "/roads"
	return c.list(ctx, path, url.Values{"search": {search}})
}

// ListBuildings returns buildings on a road within a block.
func (c *Client) ListBuildings(ctx context.Context, roadID, blockID int64, search string) ([]masterdata.Record, error) {
	path := "/api/v1/roads/" + strconv.FormatInt(roadID, 10) + "/buildings"
	return c.list(ctx, path, url.Values{
		"block_id": {strconv.FormatInt(blockID, 10)},
		"search":   {search},
	})
}

func (c *Client) list(ctx context.Context, path string, query url.Values) ([]masterdata.Record, error) {
	var resp listResponse
	if err := c.get(ctx, path, query, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// ============================================================================
// HTTP plumbing
// ============================================================================

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, path, out)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, path, out)
}

func (c *Client) do(req *http.Request, path string, out any) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Endpoint:   path,
			Detail:     string(body),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

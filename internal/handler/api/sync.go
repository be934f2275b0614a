package api

import (
	"encoding/json"
	"net/http"

	"github.com/dukerupert/tawseel/internal/domain"
	"github.com/dukerupert/tawseel/internal/handler"
	"github.com/dukerupert/tawseel/internal/storefront"
)

// maxSyncBatch bounds one manual sync request. Batches run
// sequentially with an inter-order delay, so large batches tie up the
// request for minutes.
const maxSyncBatch = 50

type syncRequest struct {
	// OrderIDs names the orders to sync. When empty, the batch is
	// filled from a storefront order listing using the filters below.
	OrderIDs []int64 `json:"order_ids"`
	Status   string  `json:"status,omitempty"`
	Limit    int     `json:"limit,omitempty"`
	SinceID  int64   `json:"since_id,omitempty"`
}

type syncResult struct {
	OrderID         int64  `json:"order_id"`
	Status          string `json:"status"`
	ProviderOrderID string `json:"provider_order_id,omitempty"`
	TrackingURL     string `json:"tracking_url,omitempty"`
	ShippingCharge  string `json:"shipping_charge,omitempty"`
	Error           string `json:"error,omitempty"`
}

type syncResponse struct {
	Shop      string       `json:"shop"`
	Submitted int          `json:"submitted"`
	Succeeded int          `json:"succeeded"`
	Skipped   int          `json:"skipped"`
	Failed    int          `json:"failed"`
	Results   []syncResult `json:"results"`
}

// HandleSync re-drives a batch of storefront orders through the
// pipeline. The batch is either named explicitly by order_ids or
// filled from a storefront order listing with status/limit/since_id
// filters. Orders that were already processed are skipped by the
// idempotency check, so re-syncing a range is safe.
func (h *Handler) HandleSync(w http.ResponseWriter, r *http.Request) {
	shopKey := domain.ShopKeyFromContext(r.Context())
	if shopKey == "" {
		handler.BadRequestResponse(w, r, "Missing shop identity")
		return
	}

	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.BadRequestResponse(w, r, "Invalid JSON body")
		return
	}
	if len(req.OrderIDs) > maxSyncBatch {
		handler.ErrorResponse(w, r, domain.Errorf(domain.ETOOLARGE, "api.sync",
			"at most %d orders per sync request", maxSyncBatch))
		return
	}
	if req.Limit < 0 || req.Limit > maxSyncBatch {
		handler.ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "api.sync",
			"limit must be between 1 and %d", maxSyncBatch))
		return
	}

	logger := handler.Logger(r).With("shop", shopKey)

	var (
		orders    []*domain.SourceOrder
		results   []syncResult
		submitted int
	)
	if len(req.OrderIDs) > 0 {
		orders = make([]*domain.SourceOrder, 0, len(req.OrderIDs))
		results = make([]syncResult, 0, len(req.OrderIDs))
		for _, id := range req.OrderIDs {
			order, err := h.storefront.GetOrder(r.Context(), shopKey, id)
			if err != nil {
				logger.Warn("failed to fetch order from storefront", "order_id", id, "error", err)
				results = append(results, syncResult{
					OrderID: id,
					Status:  "failed",
					Error:   domain.ErrorMessage(err),
				})
				continue
			}
			orders = append(orders, order)
		}
		submitted = len(req.OrderIDs)
	} else {
		opts := storefront.OrderListOptions{
			Status:  req.Status,
			Limit:   req.Limit,
			SinceID: req.SinceID,
		}
		if opts.Limit == 0 {
			opts.Limit = maxSyncBatch
		}
		listed, err := h.storefront.ListOrders(r.Context(), shopKey, opts)
		if err != nil {
			handler.ErrorResponse(w, r, err)
			return
		}
		orders = listed
		results = make([]syncResult, 0, len(listed))
		submitted = len(listed)
	}

	for _, res := range h.processor.ProcessBatch(r.Context(), orders, shopKey) {
		sr := syncResult{
			OrderID:         res.SourceOrderID,
			ProviderOrderID: res.ProviderOrderID,
			TrackingURL:     res.TrackingURL,
		}
		switch {
		case res.Skipped:
			sr.Status = "skipped"
		case res.Success:
			sr.Status = "processed"
		default:
			sr.Status = "failed"
			if res.Error != nil {
				sr.Error = domain.ErrorMessage(res.Error)
			}
		}
		if res.ShippingCharge != nil {
			sr.ShippingCharge = res.ShippingCharge.String()
		}
		results = append(results, sr)
	}

	resp := syncResponse{
		Shop:      shopKey,
		Submitted: submitted,
		Results:   results,
	}
	for _, sr := range results {
		switch sr.Status {
		case "processed":
			resp.Succeeded++
		case "skipped":
			resp.Skipped++
		default:
			resp.Failed++
		}
	}

	logger.Info("sync batch finished",
		"submitted", resp.Submitted,
		"succeeded", resp.Succeeded,
		"skipped", resp.Skipped,
		"failed", resp.Failed,
	)

	handler.JSON(w, http.StatusOK, resp)
}

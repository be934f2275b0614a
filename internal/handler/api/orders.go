package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dukerupert/tawseel/internal/domain"
	"github.com/dukerupert/tawseel/internal/handler"
)

const (
	defaultOrderListLimit = 50
	maxOrderListLimit     = 200
)

type orderLogResponse struct {
	SourceOrderID   int64     `json:"source_order_id"`
	ProviderOrderID string    `json:"provider_order_id,omitempty"`
	Status          string    `json:"status"`
	ErrorMessage    string    `json:"error_message,omitempty"`
	TotalPrice      string    `json:"total_price"`
	Currency        string    `json:"currency"`
	CustomerName    string    `json:"customer_name,omitempty"`
	FinancialStatus string    `json:"financial_status,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// HandleListOrders returns the most recent ledger entries for a shop.
func (h *Handler) HandleListOrders(w http.ResponseWriter, r *http.Request) {
	shopKey := domain.ShopKeyFromContext(r.Context())
	if shopKey == "" {
		handler.BadRequestResponse(w, r, "Missing shop identity")
		return
	}

	limit := defaultOrderListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			handler.BadRequestResponse(w, r, "limit must be a positive integer")
			return
		}
		if n > maxOrderListLimit {
			n = maxOrderListLimit
		}
		limit = n
	}

	entries, err := h.ledger.ListByShop(r.Context(), shopKey, limit)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	out := make([]orderLogResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, orderLogResponse{
			SourceOrderID:   e.SourceOrderID,
			ProviderOrderID: e.ProviderOrderID,
			Status:          e.Status,
			ErrorMessage:    e.ErrorMessage,
			TotalPrice:      e.TotalPrice.String(),
			Currency:        e.Currency,
			CustomerName:    e.CustomerName,
			FinancialStatus: e.FinancialStatus,
			CreatedAt:       e.CreatedAt,
			UpdatedAt:       e.UpdatedAt,
		})
	}

	handler.JSON(w, http.StatusOK, map[string]any{
		"shop":   shopKey,
		"orders": out,
	})
}

package webhook

import (
	"io"
	"net/http"
	"time"

	"github.com/dukerupert/tawseel/internal/domain"
	"github.com/dukerupert/tawseel/internal/handler"
	"github.com/dukerupert/tawseel/internal/queue"
	"github.com/dukerupert/tawseel/internal/storefront"
	"github.com/dukerupert/tawseel/internal/telemetry"
)

const topicOrderCreate = "orders/create"

// HandleOrderCreate receives an order creation webhook, verifies the
// HMAC signature, and enqueues the order for async processing.
//
// Decode and enqueue failures are still acknowledged with 200: the
// payload will not get better on retry, and a retry storm from the
// storefront helps nobody. The failure is logged and counted instead.
func (h *Handler) HandleOrderCreate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	shopKey := r.Header.Get(storefront.HeaderShopDomain)
	if shopKey == "" {
		h.countInvalid("", "missing_shop")
		handler.BadRequestResponse(w, r, "Missing shop domain header")
		return
	}

	logger := handler.Logger(r).With("shop", shopKey, "topic", topicOrderCreate)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Warn("failed to read webhook body", "error", err)
		h.countInvalid(shopKey, "bad_payload")
		handler.BadRequestResponse(w, r, "Unreadable request body")
		return
	}

	if !h.verifier.Verify(body, r.Header.Get(storefront.HeaderHMAC)) {
		logger.Warn("webhook signature verification failed")
		h.countInvalid(shopKey, "bad_signature")
		handler.UnauthorizedResponse(w, r)
		return
	}

	if telemetry.Business != nil {
		telemetry.Business.WebhookReceived.WithLabelValues(shopKey, topicOrderCreate).Inc()
	}

	order, err := h.decodeAndEnqueue(r, shopKey, body)
	if err != nil {
		// Acknowledged anyway; see package comment.
		logger.Error("webhook accepted but not queued", "error", err)
	} else {
		logger.Info("order queued",
			"order_id", order.ID,
			"order_name", order.Name,
		)
	}

	if telemetry.Business != nil {
		telemetry.Business.WebhookLatency.WithLabelValues(shopKey, topicOrderCreate).
			Observe(time.Since(start).Seconds())
	}

	handler.JSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

func (h *Handler) decodeAndEnqueue(r *http.Request, shopKey string, body []byte) (*orderSummary, error) {
	order, err := h.decodeOrder(shopKey, body)
	if err != nil {
		return nil, err
	}

	task := queue.Task{Shop: shopKey, Order: order}
	if err := h.queue.Publish(r.Context(), task); err != nil {
		if telemetry.Business != nil {
			telemetry.Business.QueueFailures.WithLabelValues("publish").Inc()
		}
		return nil, err
	}

	if telemetry.Business != nil {
		telemetry.Business.OrdersEnqueued.WithLabelValues(shopKey).Inc()
	}

	return &orderSummary{ID: order.ID, Name: order.Name}, nil
}

func (h *Handler) decodeOrder(shopKey string, body []byte) (*domain.SourceOrder, error) {
	order, err := domain.DecodeSourceOrder(body)
	if err != nil {
		h.countInvalid(shopKey, "bad_payload")
		return nil, err
	}
	return order, nil
}

func (h *Handler) countInvalid(shopKey, reason string) {
	if telemetry.Business != nil {
		telemetry.Business.WebhookInvalid.WithLabelValues(shopKey, reason).Inc()
	}
}

// orderSummary is what the handler logs after a successful enqueue.
type orderSummary struct {
	ID   int64
	Name string
}

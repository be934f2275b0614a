package webhook

import (
	"io"
	"net/http"

	"github.com/dukerupert/tawseel/internal/handler"
	"github.com/dukerupert/tawseel/internal/storefront"
	"github.com/dukerupert/tawseel/internal/telemetry"
)

const topicAppUninstalled = "app/uninstalled"

// HandleAppUninstalled tears down everything we hold for a shop:
// ledger entries, the cached pickup location, and the API session.
// Cleanup steps are independent; one failing does not stop the others.
func (h *Handler) HandleAppUninstalled(w http.ResponseWriter, r *http.Request) {
	shopKey := r.Header.Get(storefront.HeaderShopDomain)
	if shopKey == "" {
		h.countInvalid("", "missing_shop")
		handler.BadRequestResponse(w, r, "Missing shop domain header")
		return
	}

	logger := handler.Logger(r).With("shop", shopKey, "topic", topicAppUninstalled)

	// Uninstall payloads vary by storefront; the signature still has to match.
	body, err := io.ReadAll(r.Body)
	if err != nil {
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
		telemetry.Business.WebhookReceived.WithLabelValues(shopKey, topicAppUninstalled).Inc()
	}

	ctx := r.Context()

	if err := h.ledger.DeleteShop(ctx, shopKey); err != nil {
		logger.Error("failed to delete ledger entries", "error", err)
	}

	if err := h.pickups.EvictShop(ctx, shopKey); err != nil {
		logger.Warn("failed to evict pickup cache", "error", err)
	}

	if err := h.sessions.DeleteSession(ctx, shopKey); err != nil {
		logger.Warn("failed to delete session", "error", err)
	}

	logger.Info("shop data removed")
	handler.JSON(w, http.StatusOK, map[string]string{"status": "uninstalled"})
}

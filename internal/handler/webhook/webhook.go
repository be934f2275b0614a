// Package webhook receives storefront webhook deliveries.
//
// Order webhooks are verified, decoded, and queued. The storefront
// retries deliveries that do not get a 2xx within its timeout, so the
// handlers acknowledge quickly and never block on courier calls.
// Processing failures are recorded in the ledger by the worker; only a
// bad signature or missing shop header earns a non-2xx response.
package webhook

import (
	"log/slog"

	"github.com/dukerupert/tawseel/internal/domain"
	"github.com/dukerupert/tawseel/internal/queue"
	"github.com/dukerupert/tawseel/internal/service"
	"github.com/dukerupert/tawseel/internal/storefront"
)

// Handler handles storefront webhook endpoints.
type Handler struct {
	verifier *storefront.WebhookVerifier
	queue    queue.Queue
	ledger   domain.Ledger
	pickups  *service.PickupResolver
	sessions storefront.SessionStore
	logger   *slog.Logger
}

// NewHandler creates a webhook handler.
func NewHandler(
	verifier *storefront.WebhookVerifier,
	q queue.Queue,
	ledger domain.Ledger,
	pickups *service.PickupResolver,
	sessions storefront.SessionStore,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		verifier: verifier,
		queue:    q,
		ledger:   ledger,
		pickups:  pickups,
		sessions: sessions,
		logger:   logger,
	}
}

package routes

import (
	"github.com/dukerupert/tawseel/internal/middleware"
	"github.com/dukerupert/tawseel/internal/router"
)

// RegisterWebhookRoutes registers the storefront webhook routes.
//
// Note: webhook routes do NOT have authentication middleware. Each
// handler verifies the delivery's HMAC signature itself.
func RegisterWebhookRoutes(r *router.Router, deps WebhookDeps) {
	group := r.Group(middleware.MaxBodySize())

	group.Post("/webhooks/orders/create", deps.Handler.HandleOrderCreate)
	group.Post("/webhooks/app/uninstalled", deps.Handler.HandleAppUninstalled)
}

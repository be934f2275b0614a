package routes

import (
	"github.com/dukerupert/tawseel/internal/middleware"
	"github.com/dukerupert/tawseel/internal/router"
)

// RegisterAPIRoutes registers the operator API. Shop identity comes
// from the ?shop= query param; sync gets a long timeout because it
// submits orders to the courier sequentially.
func RegisterAPIRoutes(r *router.Router, deps APIDeps) {
	shopScoped := r.Group(middleware.RequireShop)

	shopScoped.Post("/api/sync", deps.Handler.HandleSync, middleware.Timeout(middleware.SyncTimeout))
	shopScoped.Get("/api/orders", deps.Handler.HandleListOrders, middleware.Timeout())

	r.Get("/api/track/{id}", deps.Handler.HandleTrackOrder, middleware.Timeout())
}

// RegisterOpsRoutes registers health and metrics endpoints.
func RegisterOpsRoutes(r *router.Router, deps OpsDeps) {
	r.Get("/health", deps.Health)
	r.Handle("GET", "/metrics", deps.Metrics)
}

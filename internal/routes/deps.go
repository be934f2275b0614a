// Package routes wires handlers onto the router. Route registration is
// kept separate from handler construction so cmd/server stays a flat
// dependency assembly.
package routes

import (
	"net/http"

	"github.com/dukerupert/tawseel/internal/handler/api"
	"github.com/dukerupert/tawseel/internal/handler/webhook"
)

// WebhookDeps contains dependencies for storefront webhook routes.
type WebhookDeps struct {
	Handler *webhook.Handler
}

// APIDeps contains dependencies for the operator API routes.
type APIDeps struct {
	Handler *api.Handler
}

// OpsDeps contains dependencies for health and metrics endpoints.
type OpsDeps struct {
	Health  http.HandlerFunc
	Metrics http.Handler
}

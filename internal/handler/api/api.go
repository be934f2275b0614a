// Package api exposes the operator-facing JSON endpoints: manual batch
// sync, ledger queries, and courier tracking lookups.
package api

import (
	"log/slog"

	"github.com/dukerupert/tawseel/internal/domain"
	"github.com/dukerupert/tawseel/internal/logistics"
	"github.com/dukerupert/tawseel/internal/service"
	"github.com/dukerupert/tawseel/internal/storefront"
)

// Handler handles the operator API endpoints.
type Handler struct {
	storefront storefront.Client
	processor  *service.Processor
	ledger     domain.Ledger
	provider   logistics.Provider
	logger     *slog.Logger
}

// NewHandler creates an API handler.
func NewHandler(
	sf storefront.Client,
	processor *service.Processor,
	ledger domain.Ledger,
	provider logistics.Provider,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		storefront: sf,
		processor:  processor,
		ledger:     ledger,
		provider:   provider,
		logger:     logger,
	}
}

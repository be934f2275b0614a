package api

import (
	"errors"
	"net/http"

	"github.com/dukerupert/tawseel/internal/domain"
	"github.com/dukerupert/tawseel/internal/handler"
	"github.com/dukerupert/tawseel/internal/logistics"
)

// HandleTrackOrder proxies a tracking lookup to the courier. The path
// parameter is the courier's order ID, as returned by sync or stored
// in the ledger.
func (h *Handler) HandleTrackOrder(w http.ResponseWriter, r *http.Request) {
	providerOrderID := r.PathValue("id")
	if providerOrderID == "" {
		handler.BadRequestResponse(w, r, "Missing order id")
		return
	}

	info, err := h.provider.TrackOrder(r.Context(), providerOrderID)
	if err != nil {
		if errors.Is(err, logistics.ErrOrderNotFound) {
			err = domain.NotFound("api.track", "order", providerOrderID)
		}
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.JSON(w, http.StatusOK, info)
}

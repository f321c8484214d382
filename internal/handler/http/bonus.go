package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/commercekit/fulfillment/internal/service"
	"github.com/commercekit/fulfillment/pkg/httputil"
)

// BonusHandler serves read-only bonus ledger lookups.
type BonusHandler struct {
	orders *service.Order
	log    *slog.Logger
}

// NewBonusHandler creates a bonus handler.
func NewBonusHandler(orders *service.Order, log *slog.Logger) *BonusHandler {
	return &BonusHandler{orders: orders, log: log}
}

// Get handles GET /api/v1/bonus-ledger/{userID}.
func (h *BonusHandler) Get(w http.ResponseWriter, r *http.Request) {
	orgID, _ := OrganizationFromContext(r.Context())

	userID, ok := httputil.ParseUUID(w, chi.URLParam(r, "userID"))
	if !ok {
		return
	}

	ledger, err := h.orders.GetBonusLedger(r.Context(), orgID, userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: ledger})
}

package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/commercekit/fulfillment/internal/service"
	"github.com/commercekit/fulfillment/pkg/httputil"
)

// StockHandler serves read-only stock ledger lookups.
type StockHandler struct {
	orders *service.Order
	log    *slog.Logger
}

// NewStockHandler creates a stock handler.
func NewStockHandler(orders *service.Order, log *slog.Logger) *StockHandler {
	return &StockHandler{orders: orders, log: log}
}

// Get handles GET /api/v1/stock/{variantID}/locations/{locationID}.
func (h *StockHandler) Get(w http.ResponseWriter, r *http.Request) {
	orgID, _ := OrganizationFromContext(r.Context())

	variantID, ok := httputil.ParseUUID(w, chi.URLParam(r, "variantID"))
	if !ok {
		return
	}
	locationID, ok := httputil.ParseUUID(w, chi.URLParam(r, "locationID"))
	if !ok {
		return
	}

	rec, err := h.orders.GetStock(r.Context(), orgID, variantID, locationID)
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: rec})
}

// Package http exposes the order fulfillment API over chi.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/commercekit/fulfillment/internal/domain"
	"github.com/commercekit/fulfillment/internal/repository"
	"github.com/commercekit/fulfillment/internal/service"
	"github.com/commercekit/fulfillment/pkg/httputil"
	"github.com/commercekit/fulfillment/pkg/validator"
)

// OrderHandler serves the order lifecycle endpoints.
type OrderHandler struct {
	orders *service.Order
	log    *slog.Logger
}

// NewOrderHandler creates an order handler.
func NewOrderHandler(orders *service.Order, log *slog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, log: log}
}

// Create handles POST /api/v1/orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID, _ := OrganizationFromContext(r.Context())

	var req domain.CreateOrderRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	order, err := h.orders.CreateOrder(r.Context(), orgID, UserFromContext(r.Context()), &req)
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: order})
}

// Complete handles PATCH /api/v1/orders/{orderID}/complete.
func (h *OrderHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orders.CompleteOrder)
}

// Cancel handles PATCH /api/v1/orders/{orderID}/cancel.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orders.CancelOrder)
}

func (h *OrderHandler) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, organizationID, orderID uuid.UUID) (*domain.Order, error)) {
	orgID, _ := OrganizationFromContext(r.Context())

	orderID, ok := httputil.ParseUUID(w, chi.URLParam(r, "orderID"))
	if !ok {
		return
	}

	order, err := op(r.Context(), orgID, orderID)
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}

// Get handles GET /api/v1/orders/{orderID}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orgID, _ := OrganizationFromContext(r.Context())

	orderID, ok := httputil.ParseUUID(w, chi.URLParam(r, "orderID"))
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(r.Context(), orgID, orderID)
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}

// List handles GET /api/v1/orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID, _ := OrganizationFromContext(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	filter := repository.OrderFilter{
		Status: domain.OrderStatus(r.URL.Query().Get("status")),
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	}

	orders, total, err := h.orders.ListOrders(r.Context(), orgID, filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.log)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(orders, total, page, perPage))
}

package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/commercekit/fulfillment/internal/domain"
	"github.com/commercekit/fulfillment/internal/ordernum"
	"github.com/commercekit/fulfillment/internal/repository"
	apperrors "github.com/commercekit/fulfillment/pkg/errors"
	"github.com/commercekit/fulfillment/pkg/logger"
)

// EventPublisher emits order lifecycle events after commit. Implementations
// must be safe to call outside the transaction; failures are logged by the
// orchestrator, never propagated to the caller.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *domain.Order) error
	PublishOrderCompleted(ctx context.Context, order *domain.Order) error
	PublishOrderCancelled(ctx context.Context, order *domain.Order) error
}

// Order orchestrates the transactional order lifecycle: create, complete,
// cancel. Each operation runs in one database transaction composing stock
// reservation, bonus accrual, and the order state transition.
type Order struct {
	store   repository.Store
	numbers *ordernum.Generator
	events  EventPublisher
	log     *slog.Logger
}

// NewOrder creates the order orchestrator.
func NewOrder(store repository.Store, numbers *ordernum.Generator, events EventPublisher, log *slog.Logger) *Order {
	return &Order{store: store, numbers: numbers, events: events, log: log}
}

// CreateOrder validates availability, prices the items, inserts the pending
// order, reserves stock, and accrues pending bonus for authenticated users,
// all in one transaction. An InsufficientStock failure aborts everything and
// surfaces unchanged.
func (s *Order) CreateOrder(ctx context.Context, organizationID uuid.UUID, user *domain.User, req *domain.CreateOrderRequest) (*domain.Order, error) {
	orderID := uuid.New()
	orderNumber := s.numbers.Next(ctx, organizationID)

	order := &domain.Order{
		ID:             orderID,
		OrganizationID: organizationID,
		OrderNumber:    orderNumber,
		Status:         domain.OrderStatusPending,
		Currency:       req.Currency,

		CustomerEmail:    req.CustomerEmail,
		CustomerPhone:    req.CustomerPhone,
		CustomerFullName: req.CustomerFullName,
		ShippingAddress:  req.ShippingAddress,
	}

	if user != nil {
		order.UserID = &user.ID
		if order.CustomerEmail == "" {
			order.CustomerEmail = user.ContactEmail()
		}
		if order.CustomerPhone == "" {
			order.CustomerPhone = user.ContactPhone()
		}
		if order.CustomerFullName == "" {
			order.CustomerFullName = user.FullName()
		}
	}

	err := s.store.WithinTx(ctx, func(ctx context.Context, r repository.Repositories) error {
		reservation := NewReservation(r.Catalog(), r.Stock(), s.log)

		priced, err := reservation.CheckAndPrice(ctx, organizationID, req.Items, req.LocationID)
		if err != nil {
			return err
		}

		order.Subtotal = priced.Subtotal
		order.TotalAmount = priced.Subtotal
		order.Items = priced.Items
		for i := range order.Items {
			order.Items[i].OrderID = orderID
		}

		if err := r.Orders().Insert(ctx, order); err != nil {
			return err
		}

		if err := reservation.Reserve(ctx, organizationID, orderID, order.Items); err != nil {
			return err
		}

		if user != nil {
			bonus := NewBonusAccrual(r.Settings(), r.Bonus(), s.log)
			if _, err := bonus.AccruePending(ctx, organizationID, user.ID, order.Subtotal); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		ordersProcessed.WithLabelValues("create", "error").Inc()
		return nil, err
	}

	ordersProcessed.WithLabelValues("create", "success").Inc()
	logger.FromContext(ctx).Info("order created",
		slog.String("order_id", orderID.String()),
		slog.String("order_number", orderNumber),
		slog.Int64("subtotal", order.Subtotal),
	)

	if err := s.events.PublishOrderCreated(ctx, order); err != nil {
		logger.FromContext(ctx).Error("publish order created event failed",
			slog.String("order_id", orderID.String()),
			slog.String("error", err.Error()),
		)
	}

	return order, nil
}

// CompleteOrder transitions a pending order to completed, consumes the
// reserved stock, and settles the user's pending bonus. Calling it on an
// order that is not pending returns a conflict and touches no ledger.
func (s *Order) CompleteOrder(ctx context.Context, organizationID, orderID uuid.UUID) (*domain.Order, error) {
	var order *domain.Order

	err := s.store.WithinTx(ctx, func(ctx context.Context, r repository.Repositories) error {
		ok, err := r.Orders().TransitionStatus(ctx, organizationID, orderID, domain.OrderStatusPending, domain.OrderStatusCompleted)
		if err != nil {
			return err
		}
		if !ok {
			return s.transitionConflict(ctx, r, organizationID, orderID)
		}

		order, err = r.Orders().GetByID(ctx, organizationID, orderID)
		if err != nil {
			return err
		}

		reservation := NewReservation(r.Catalog(), r.Stock(), s.log)
		if err := reservation.Consume(ctx, organizationID, orderID, order.Items); err != nil {
			return err
		}

		if order.UserID != nil {
			bonus := NewBonusAccrual(r.Settings(), r.Bonus(), s.log)
			if err := bonus.SettleOnCompletion(ctx, organizationID, *order.UserID, order.TotalAmount); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		ordersProcessed.WithLabelValues("complete", "error").Inc()
		return nil, err
	}

	ordersProcessed.WithLabelValues("complete", "success").Inc()
	logger.FromContext(ctx).Info("order completed", slog.String("order_id", orderID.String()))

	if err := s.events.PublishOrderCompleted(ctx, order); err != nil {
		logger.FromContext(ctx).Error("publish order completed event failed",
			slog.String("order_id", orderID.String()),
			slog.String("error", err.Error()),
		)
	}

	return order, nil
}

// CancelOrder transitions a pending order to cancelled, releases its
// reservations, and reverses the user's pending bonus.
func (s *Order) CancelOrder(ctx context.Context, organizationID, orderID uuid.UUID) (*domain.Order, error) {
	var order *domain.Order

	err := s.store.WithinTx(ctx, func(ctx context.Context, r repository.Repositories) error {
		ok, err := r.Orders().TransitionStatus(ctx, organizationID, orderID, domain.OrderStatusPending, domain.OrderStatusCancelled)
		if err != nil {
			return err
		}
		if !ok {
			return s.transitionConflict(ctx, r, organizationID, orderID)
		}

		order, err = r.Orders().GetByID(ctx, organizationID, orderID)
		if err != nil {
			return err
		}

		reservation := NewReservation(r.Catalog(), r.Stock(), s.log)
		if err := reservation.Release(ctx, organizationID, orderID, order.Items); err != nil {
			return err
		}

		if order.UserID != nil {
			bonus := NewBonusAccrual(r.Settings(), r.Bonus(), s.log)
			if err := bonus.ReverseOnCancellation(ctx, organizationID, *order.UserID, order.TotalAmount); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		ordersProcessed.WithLabelValues("cancel", "error").Inc()
		return nil, err
	}

	ordersProcessed.WithLabelValues("cancel", "success").Inc()
	logger.FromContext(ctx).Info("order cancelled", slog.String("order_id", orderID.String()))

	if err := s.events.PublishOrderCancelled(ctx, order); err != nil {
		logger.FromContext(ctx).Error("publish order cancelled event failed",
			slog.String("order_id", orderID.String()),
			slog.String("error", err.Error()),
		)
	}

	return order, nil
}

// transitionConflict distinguishes a missing order from one that already left
// the pending state. Either way the transaction mutates nothing.
func (s *Order) transitionConflict(ctx context.Context, r repository.Repositories, organizationID, orderID uuid.UUID) error {
	existing, err := r.Orders().GetByID(ctx, organizationID, orderID)
	if err != nil {
		return err
	}
	return apperrors.Conflict("order is already " + string(existing.Status))
}

// GetOrder loads one order with its items.
func (s *Order) GetOrder(ctx context.Context, organizationID, orderID uuid.UUID) (*domain.Order, error) {
	return s.store.Orders().GetByID(ctx, organizationID, orderID)
}

// ListOrders returns orders for the organization plus a total for pagination.
func (s *Order) ListOrders(ctx context.Context, organizationID uuid.UUID, filter repository.OrderFilter) ([]domain.Order, int, error) {
	return s.store.Orders().List(ctx, organizationID, filter)
}

// GetStock reads the current ledger counters for one variant and location.
func (s *Order) GetStock(ctx context.Context, organizationID, variantID, locationID uuid.UUID) (*domain.StockRecord, error) {
	return s.store.Stock().Get(ctx, organizationID, variantID, locationID)
}

// GetBonusLedger reads a user's loyalty balance.
func (s *Order) GetBonusLedger(ctx context.Context, organizationID, userID uuid.UUID) (*domain.BonusLedgerRecord, error) {
	return s.store.Bonus().Get(ctx, organizationID, userID)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/commercekit/fulfillment/internal/domain"
	"github.com/commercekit/fulfillment/internal/repository"
	apperrors "github.com/commercekit/fulfillment/pkg/errors"
	"github.com/commercekit/fulfillment/pkg/logger"
)

// Reservation translates order-item intent into stock ledger mutations and
// enforces the oversell guard. All methods must run inside the transaction
// that also mutates the order, so the locking reads in CheckAndPrice cover
// the subsequent Reserve.
type Reservation struct {
	catalog repository.CatalogRepository
	stock   repository.StockRepository
	log     *slog.Logger
}

// NewReservation creates a reservation service over transaction-bound
// repositories.
func NewReservation(catalog repository.CatalogRepository, stock repository.StockRepository, log *slog.Logger) *Reservation {
	return &Reservation{catalog: catalog, stock: stock, log: log}
}

// PricedItems is the result of CheckAndPrice: fully priced order lines and
// their subtotal in minor units.
type PricedItems struct {
	Items    []domain.OrderItem
	Subtotal int64
}

// CheckAndPrice validates availability and prices each requested line. Stock
// rows are read with row locks so a concurrent creation on the same variant
// blocks until this transaction ends. No mutation happens here.
//
// A missing stock record counts as zero available. Backorderable products
// skip the availability check entirely.
func (s *Reservation) CheckAndPrice(ctx context.Context, organizationID uuid.UUID, items []domain.OrderItemRequest, defaultLocation uuid.UUID) (*PricedItems, error) {
	if len(items) == 0 {
		return nil, apperrors.InvalidInput("order must contain at least one item")
	}

	priced := &PricedItems{Items: make([]domain.OrderItem, 0, len(items))}

	// Lines for the same variant and location share one availability budget,
	// so duplicate lines cannot each pass against the same snapshot.
	type stockKey struct {
		variantID  uuid.UUID
		locationID uuid.UUID
	}
	requested := make(map[stockKey]int)

	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, apperrors.InvalidInput("item quantity must be positive")
		}

		variant, err := s.catalog.GetVariant(ctx, organizationID, item.ProductVariantID)
		if err != nil {
			return nil, err
		}
		product, err := s.catalog.GetProduct(ctx, organizationID, variant.ProductID)
		if err != nil {
			return nil, err
		}

		locationID := item.ResolveLocation(defaultLocation)

		available := 0
		rec, err := s.stock.GetForUpdate(ctx, organizationID, item.ProductVariantID, locationID)
		switch {
		case err == nil:
			available = rec.Available()
		case errors.Is(err, apperrors.ErrNotFound):
			// No record yet; first reservation creates it.
		default:
			return nil, err
		}

		key := stockKey{variantID: variant.ID, locationID: locationID}
		requested[key] += item.Quantity
		if available < requested[key] && !product.AllowBackorders {
			insufficientStockRejections.Inc()
			return nil, apperrors.InsufficientStock(variant.ID.String(), variant.SKU, available, requested[key])
		}

		line := domain.OrderItem{
			ID:         uuid.New(),
			VariantID:  variant.ID,
			LocationID: locationID,
			SKU:        variant.SKU,
			Name:       variant.Name,
			Quantity:   item.Quantity,
			UnitPrice:  variant.Price,
			TotalPrice: variant.Price * int64(item.Quantity),
		}
		priced.Items = append(priced.Items, line)
		priced.Subtotal += line.TotalPrice
	}

	return priced, nil
}

// Reserve places holds for every line via atomic upsert increments. No
// availability re-check happens here; CheckAndPrice already validated inside
// the same transaction.
func (s *Reservation) Reserve(ctx context.Context, organizationID, orderID uuid.UUID, items []domain.OrderItem) error {
	for _, item := range items {
		if err := s.stock.AddReserved(ctx, organizationID, item.VariantID, item.LocationID, item.Quantity); err != nil {
			return err
		}
		if err := s.recordMovement(ctx, organizationID, orderID, item, domain.StockMovementReserve); err != nil {
			return err
		}
	}
	return nil
}

// Consume removes completed-order units from both counters, flooring each at
// zero. A clamp means the ledger had drifted from reservation history; it is
// logged and counted rather than failing the completion.
func (s *Reservation) Consume(ctx context.Context, organizationID, orderID uuid.UUID, items []domain.OrderItem) error {
	for _, item := range items {
		rec, err := s.stock.GetForUpdate(ctx, organizationID, item.VariantID, item.LocationID)
		if errors.Is(err, apperrors.ErrNotFound) {
			// Completion with no stock record at all: keep the ledger
			// arithmetically consistent by recording the deficit.
			logger.FromContext(ctx).Warn("consuming stock with no ledger record",
				slog.String("variant_id", item.VariantID.String()),
				slog.String("order_id", orderID.String()),
				slog.Int("quantity", item.Quantity),
			)
			stockClamps.WithLabelValues("consume").Inc()
			rec = &domain.StockRecord{
				VariantID:        item.VariantID,
				OrganizationID:   organizationID,
				LocationID:       item.LocationID,
				Quantity:         -item.Quantity,
				ReservedQuantity: -item.Quantity,
			}
			if err := s.stock.Insert(ctx, rec); err != nil {
				return err
			}
			if err := s.recordMovement(ctx, organizationID, orderID, item, domain.StockMovementConsume); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}

		if clamped := rec.Consume(item.Quantity); clamped {
			logger.FromContext(ctx).Warn("stock consume clamped at zero",
				slog.String("variant_id", item.VariantID.String()),
				slog.String("order_id", orderID.String()),
				slog.Int("quantity", item.Quantity),
			)
			stockClamps.WithLabelValues("consume").Inc()
		}

		if err := s.stock.UpdateQuantities(ctx, rec); err != nil {
			return err
		}
		if err := s.recordMovement(ctx, organizationID, orderID, item, domain.StockMovementConsume); err != nil {
			return err
		}
	}
	return nil
}

// Release returns reserved units to availability on cancellation. On-hand
// quantity is untouched since nothing physically left stock.
func (s *Reservation) Release(ctx context.Context, organizationID, orderID uuid.UUID, items []domain.OrderItem) error {
	for _, item := range items {
		rec, err := s.stock.GetForUpdate(ctx, organizationID, item.VariantID, item.LocationID)
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.FromContext(ctx).Warn("releasing stock with no ledger record",
				slog.String("variant_id", item.VariantID.String()),
				slog.String("order_id", orderID.String()),
			)
			stockClamps.WithLabelValues("release").Inc()
			continue
		}
		if err != nil {
			return err
		}

		if clamped := rec.Release(item.Quantity); clamped {
			logger.FromContext(ctx).Warn("stock release clamped at zero",
				slog.String("variant_id", item.VariantID.String()),
				slog.String("order_id", orderID.String()),
				slog.Int("quantity", item.Quantity),
			)
			stockClamps.WithLabelValues("release").Inc()
		}

		if err := s.stock.UpdateQuantities(ctx, rec); err != nil {
			return err
		}
		if err := s.recordMovement(ctx, organizationID, orderID, item, domain.StockMovementRelease); err != nil {
			return err
		}
	}
	return nil
}

func (s *Reservation) recordMovement(ctx context.Context, organizationID, orderID uuid.UUID, item domain.OrderItem, typ domain.StockMovementType) error {
	m := &domain.StockMovement{
		ID:             uuid.New(),
		VariantID:      item.VariantID,
		OrganizationID: organizationID,
		LocationID:     item.LocationID,
		OrderID:        orderID,
		Type:           typ,
		Quantity:       item.Quantity,
	}
	if err := s.stock.RecordMovement(ctx, m); err != nil {
		return fmt.Errorf("record %s movement: %w", typ, err)
	}
	return nil
}

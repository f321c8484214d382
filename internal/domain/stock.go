package domain

import (
	"time"

	"github.com/google/uuid"
)

// StockRecord tracks on-hand and reserved units for one variant at one
// location within an organization. Created lazily on first reservation,
// never deleted.
type StockRecord struct {
	VariantID        uuid.UUID `json:"variant_id"`
	OrganizationID   uuid.UUID `json:"organization_id"`
	LocationID       uuid.UUID `json:"location_id"`
	Quantity         int       `json:"quantity"`
	ReservedQuantity int       `json:"reserved_quantity"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Available returns the units that can still be promised to new orders.
func (s *StockRecord) Available() int {
	return s.Quantity - s.ReservedQuantity
}

// Reserve adds qty units to the reserved counter.
func (s *StockRecord) Reserve(qty int) {
	s.ReservedQuantity += qty
}

// Consume removes qty units from both counters, flooring each at zero
// independently. It returns true when either counter was clamped, which
// signals a reconciliation problem upstream.
func (s *StockRecord) Consume(qty int) (clamped bool) {
	if s.Quantity < qty || s.ReservedQuantity < qty {
		clamped = true
	}
	s.Quantity = max(s.Quantity-qty, 0)
	s.ReservedQuantity = max(s.ReservedQuantity-qty, 0)
	return clamped
}

// Release returns qty reserved units to availability without touching the
// on-hand quantity. Returns true when the reserved counter was clamped at zero.
func (s *StockRecord) Release(qty int) (clamped bool) {
	if s.ReservedQuantity < qty {
		clamped = true
	}
	s.ReservedQuantity = max(s.ReservedQuantity-qty, 0)
	return clamped
}

// StockMovementType labels an audit entry in the stock movement log.
type StockMovementType string

const (
	StockMovementReserve StockMovementType = "reserve"
	StockMovementConsume StockMovementType = "consume"
	StockMovementRelease StockMovementType = "release"
)

// StockMovement is an append-only audit record of one ledger mutation.
type StockMovement struct {
	ID             uuid.UUID         `json:"id"`
	VariantID      uuid.UUID         `json:"variant_id"`
	OrganizationID uuid.UUID         `json:"organization_id"`
	LocationID     uuid.UUID         `json:"location_id"`
	OrderID        uuid.UUID         `json:"order_id"`
	Type           StockMovementType `json:"type"`
	Quantity       int               `json:"quantity"`
	CreatedAt      time.Time         `json:"created_at"`
}

// Package repository defines the persistence interfaces consumed by the
// service layer. Implementations live in the postgres subpackage.
package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/commercekit/fulfillment/internal/domain"
)

// OrderFilter narrows order listings. Zero values mean "no filter".
type OrderFilter struct {
	Status domain.OrderStatus
	UserID *uuid.UUID
	Limit  int
	Offset int
}

// OrderRepository persists order headers and their immutable line items.
type OrderRepository interface {
	// Insert stores the order header and all items in one shot.
	Insert(ctx context.Context, order *domain.Order) error

	// GetByID loads an order with its items, scoped to the organization.
	// Returns errors.ErrNotFound when no such order exists for the org.
	GetByID(ctx context.Context, organizationID, orderID uuid.UUID) (*domain.Order, error)

	// TransitionStatus moves the order from one status to another with a
	// compare-and-set update. It returns false when no row matched, which
	// means the order is missing or not in the expected status.
	TransitionStatus(ctx context.Context, organizationID, orderID uuid.UUID, from, to domain.OrderStatus) (bool, error)

	// List returns orders for the organization plus the total count for
	// pagination.
	List(ctx context.Context, organizationID uuid.UUID, filter OrderFilter) ([]domain.Order, int, error)
}

// StockRepository mutates the stock ledger. All read-modify-write callers
// must go through GetForUpdate so the row stays locked for the transaction.
type StockRepository interface {
	// Get loads a stock record without locking. Returns errors.ErrNotFound
	// when absent.
	Get(ctx context.Context, organizationID, variantID, locationID uuid.UUID) (*domain.StockRecord, error)

	// GetForUpdate loads a stock record with a row lock held until the
	// enclosing transaction ends. Returns errors.ErrNotFound when absent.
	GetForUpdate(ctx context.Context, organizationID, variantID, locationID uuid.UUID) (*domain.StockRecord, error)

	// AddReserved atomically increments reservedQuantity, creating the
	// record with quantity 0 when absent.
	AddReserved(ctx context.Context, organizationID, variantID, locationID uuid.UUID, qty int) error

	// UpdateQuantities writes both counters of an existing record.
	UpdateQuantities(ctx context.Context, rec *domain.StockRecord) error

	// Insert creates a new stock record with the given counters.
	Insert(ctx context.Context, rec *domain.StockRecord) error

	// RecordMovement appends an audit entry for a ledger mutation.
	RecordMovement(ctx context.Context, m *domain.StockMovement) error
}

// BonusLedgerRepository mutates the per-user loyalty balance.
type BonusLedgerRepository interface {
	// Get loads the ledger record. Returns errors.ErrNotFound when absent.
	Get(ctx context.Context, organizationID, userID uuid.UUID) (*domain.BonusLedgerRecord, error)

	// AddPending atomically adds amount to bonusPending, creating the
	// record when absent.
	AddPending(ctx context.Context, organizationID, userID uuid.UUID, amount int64) error

	// Settle moves amount from bonusPending to bonus. Returns false when
	// no ledger record exists for the user.
	Settle(ctx context.Context, organizationID, userID uuid.UUID, amount int64) (bool, error)

	// DeductPending subtracts amount from bonusPending without flooring.
	// Returns false when no ledger record exists.
	DeductPending(ctx context.Context, organizationID, userID uuid.UUID, amount int64) (bool, error)
}

// CatalogRepository resolves pricing and backorder policy for order lines.
type CatalogRepository interface {
	// GetVariant returns the variant's price, SKU, and parent product id.
	// Returns errors.ErrNotFound when absent.
	GetVariant(ctx context.Context, organizationID, variantID uuid.UUID) (*domain.Variant, error)

	// GetProduct returns the product's name and backorder policy.
	GetProduct(ctx context.Context, organizationID, productID uuid.UUID) (*domain.Product, error)
}

// SettingsRepository reads per-organization configuration.
type SettingsRepository interface {
	// GetBonusPercentage returns the configured whole-number bonus
	// percentage, 0 when unset.
	GetBonusPercentage(ctx context.Context, organizationID uuid.UUID) (int64, error)
}

// Repositories bundles all repositories bound to one query surface, either
// the pool or a single transaction.
type Repositories interface {
	Orders() OrderRepository
	Stock() StockRepository
	Bonus() BonusLedgerRepository
	Catalog() CatalogRepository
	Settings() SettingsRepository
}

// Store is the transactional entry point. WithinTx runs fn with repositories
// bound to a single transaction; a non-nil error rolls everything back.
type Store interface {
	Repositories
	WithinTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/commercekit/fulfillment/internal/domain"
	"github.com/commercekit/fulfillment/pkg/database"
	apperrors "github.com/commercekit/fulfillment/pkg/errors"
)

// StockRepository mutates the stock ledger in PostgreSQL.
type StockRepository struct {
	db database.DBTX
}

// NewStockRepository creates a stock repository over the given query surface.
func NewStockRepository(db database.DBTX) *StockRepository {
	return &StockRepository{db: db}
}

const stockColumns = `variant_id, organization_id, location_id, quantity, reserved_quantity, created_at, updated_at`

func (r *StockRepository) Get(ctx context.Context, organizationID, variantID, locationID uuid.UUID) (*domain.StockRecord, error) {
	return r.get(ctx, organizationID, variantID, locationID, false)
}

func (r *StockRepository) GetForUpdate(ctx context.Context, organizationID, variantID, locationID uuid.UUID) (*domain.StockRecord, error) {
	return r.get(ctx, organizationID, variantID, locationID, true)
}

func (r *StockRepository) get(ctx context.Context, organizationID, variantID, locationID uuid.UUID, forUpdate bool) (*domain.StockRecord, error) {
	query := `
		SELECT ` + stockColumns + `
		FROM stock
		WHERE variant_id = $1 AND organization_id = $2 AND location_id = $3`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var s domain.StockRecord
	err := r.db.QueryRow(ctx, query, variantID, organizationID, locationID).Scan(
		&s.VariantID, &s.OrganizationID, &s.LocationID,
		&s.Quantity, &s.ReservedQuantity, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("stock record", variantID.String())
		}
		return nil, fmt.Errorf("get stock record: %w", err)
	}

	return &s, nil
}

func (r *StockRepository) AddReserved(ctx context.Context, organizationID, variantID, locationID uuid.UUID, qty int) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO stock (variant_id, organization_id, location_id, quantity, reserved_quantity, created_at, updated_at)
		VALUES ($1, $2, $3, 0, $4, NOW(), NOW())
		ON CONFLICT (variant_id, organization_id, location_id)
		DO UPDATE SET reserved_quantity = stock.reserved_quantity + EXCLUDED.reserved_quantity, updated_at = NOW()`,
		variantID, organizationID, locationID, qty,
	)
	if err != nil {
		return fmt.Errorf("add reserved stock: %w", err)
	}
	return nil
}

func (r *StockRepository) UpdateQuantities(ctx context.Context, rec *domain.StockRecord) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE stock
		SET quantity = $4, reserved_quantity = $5, updated_at = NOW()
		WHERE variant_id = $1 AND organization_id = $2 AND location_id = $3`,
		rec.VariantID, rec.OrganizationID, rec.LocationID, rec.Quantity, rec.ReservedQuantity,
	)
	if err != nil {
		return fmt.Errorf("update stock quantities: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("stock record", rec.VariantID.String())
	}
	return nil
}

func (r *StockRepository) Insert(ctx context.Context, rec *domain.StockRecord) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO stock (variant_id, organization_id, location_id, quantity, reserved_quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())`,
		rec.VariantID, rec.OrganizationID, rec.LocationID, rec.Quantity, rec.ReservedQuantity,
	)
	if err != nil {
		return fmt.Errorf("insert stock record: %w", err)
	}
	return nil
}

func (r *StockRepository) RecordMovement(ctx context.Context, m *domain.StockMovement) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO stock_movements (id, variant_id, organization_id, location_id, order_id, movement_type, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`,
		m.ID, m.VariantID, m.OrganizationID, m.LocationID, m.OrderID, m.Type, m.Quantity,
	)
	if err != nil {
		return fmt.Errorf("record stock movement: %w", err)
	}
	return nil
}

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commercekit/fulfillment/internal/domain"
	"github.com/commercekit/fulfillment/pkg/database"
	apperrors "github.com/commercekit/fulfillment/pkg/errors"
)

func TestStockRepository_GetForUpdate(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	orgID := uuid.New()
	variantID := uuid.New()
	locationID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT .+ FROM stock WHERE .+ FOR UPDATE`).
		WithArgs(variantID, orgID, locationID).
		WillReturnRows(pgxmock.NewRows([]string{
			"variant_id", "organization_id", "location_id", "quantity", "reserved_quantity", "created_at", "updated_at",
		}).AddRow(variantID, orgID, locationID, 10, 7, now, now))

	repo := NewStockRepository(mock)
	rec, err := repo.GetForUpdate(context.Background(), orgID, variantID, locationID)

	require.NoError(t, err)
	assert.Equal(t, 10, rec.Quantity)
	assert.Equal(t, 7, rec.ReservedQuantity)
	assert.Equal(t, 3, rec.Available())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockRepository_Get_NotFound(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	orgID := uuid.New()
	variantID := uuid.New()
	locationID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM stock`).
		WithArgs(variantID, orgID, locationID).
		WillReturnRows(pgxmock.NewRows([]string{
			"variant_id", "organization_id", "location_id", "quantity", "reserved_quantity", "created_at", "updated_at",
		}))

	repo := NewStockRepository(mock)
	_, err = repo.Get(context.Background(), orgID, variantID, locationID)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockRepository_AddReserved_Upserts(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	orgID := uuid.New()
	variantID := uuid.New()
	locationID := uuid.New()

	mock.ExpectExec(`INSERT INTO stock .+ ON CONFLICT .+ DO UPDATE SET reserved_quantity`).
		WithArgs(variantID, orgID, locationID, 5).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewStockRepository(mock)
	require.NoError(t, repo.AddReserved(context.Background(), orgID, variantID, locationID, 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockRepository_UpdateQuantities_NotFound(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	rec := &domain.StockRecord{
		VariantID:      uuid.New(),
		OrganizationID: uuid.New(),
		LocationID:     uuid.New(),
		Quantity:       3,
	}

	mock.ExpectExec(`UPDATE stock SET quantity`).
		WithArgs(rec.VariantID, rec.OrganizationID, rec.LocationID, 3, 0).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := NewStockRepository(mock)
	err = repo.UpdateQuantities(context.Background(), rec)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockRepository_RecordMovement(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	m := &domain.StockMovement{
		ID:             uuid.New(),
		VariantID:      uuid.New(),
		OrganizationID: uuid.New(),
		LocationID:     uuid.New(),
		OrderID:        uuid.New(),
		Type:           domain.StockMovementReserve,
		Quantity:       5,
	}

	mock.ExpectExec(`INSERT INTO stock_movements`).
		WithArgs(m.ID, m.VariantID, m.OrganizationID, m.LocationID, m.OrderID, m.Type, m.Quantity).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewStockRepository(mock)
	require.NoError(t, repo.RecordMovement(context.Background(), m))
	assert.NoError(t, mock.ExpectationsWereMet())
}

package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commercekit/fulfillment/internal/repository"
	"github.com/commercekit/fulfillment/pkg/database"
)

func TestStore_WithinTx_CommitsOnSuccess(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	orgID := uuid.New()
	userID := uuid.New()

	mock.ExpectBeginTx(pgx.TxOptions{})
	mock.ExpectExec(`INSERT INTO bonus_ledgers`).
		WithArgs(userID, orgID, int64(100)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	store := NewStore(mock)
	err = store.WithinTx(context.Background(), func(ctx context.Context, r repository.Repositories) error {
		return r.Bonus().AddPending(ctx, orgID, userID, 100)
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_WithinTx_RollsBackAndPreservesError(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBeginTx(pgx.TxOptions{})
	mock.ExpectRollback()

	sentinel := errors.New("stock check failed")
	store := NewStore(mock)
	err = store.WithinTx(context.Background(), func(ctx context.Context, r repository.Repositories) error {
		return sentinel
	})

	assert.ErrorIs(t, err, sentinel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

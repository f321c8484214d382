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

// BonusLedgerRepository mutates the loyalty ledger in PostgreSQL.
type BonusLedgerRepository struct {
	db database.DBTX
}

// NewBonusLedgerRepository creates a bonus ledger repository over the given
// query surface.
func NewBonusLedgerRepository(db database.DBTX) *BonusLedgerRepository {
	return &BonusLedgerRepository{db: db}
}

func (r *BonusLedgerRepository) Get(ctx context.Context, organizationID, userID uuid.UUID) (*domain.BonusLedgerRecord, error) {
	var b domain.BonusLedgerRecord
	err := r.db.QueryRow(ctx, `
		SELECT user_id, organization_id, bonus, bonus_pending, created_at, updated_at
		FROM bonus_ledgers
		WHERE user_id = $1 AND organization_id = $2`,
		userID, organizationID,
	).Scan(&b.UserID, &b.OrganizationID, &b.Bonus, &b.BonusPending, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("bonus ledger", userID.String())
		}
		return nil, fmt.Errorf("get bonus ledger: %w", err)
	}

	return &b, nil
}

func (r *BonusLedgerRepository) AddPending(ctx context.Context, organizationID, userID uuid.UUID, amount int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO bonus_ledgers (user_id, organization_id, bonus, bonus_pending, created_at, updated_at)
		VALUES ($1, $2, 0, $3, NOW(), NOW())
		ON CONFLICT (user_id, organization_id)
		DO UPDATE SET bonus_pending = bonus_ledgers.bonus_pending + EXCLUDED.bonus_pending, updated_at = NOW()`,
		userID, organizationID, amount,
	)
	if err != nil {
		return fmt.Errorf("add pending bonus: %w", err)
	}
	return nil
}

func (r *BonusLedgerRepository) Settle(ctx context.Context, organizationID, userID uuid.UUID, amount int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE bonus_ledgers
		SET bonus = bonus + $3, bonus_pending = bonus_pending - $3, updated_at = NOW()
		WHERE user_id = $1 AND organization_id = $2`,
		userID, organizationID, amount,
	)
	if err != nil {
		return false, fmt.Errorf("settle bonus: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *BonusLedgerRepository) DeductPending(ctx context.Context, organizationID, userID uuid.UUID, amount int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE bonus_ledgers
		SET bonus_pending = bonus_pending - $3, updated_at = NOW()
		WHERE user_id = $1 AND organization_id = $2`,
		userID, organizationID, amount,
	)
	if err != nil {
		return false, fmt.Errorf("deduct pending bonus: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

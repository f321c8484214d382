package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/commercekit/fulfillment/pkg/database"
)

// SettingsRepository reads per-organization configuration from PostgreSQL.
type SettingsRepository struct {
	db database.DBTX
}

// NewSettingsRepository creates a settings repository over the given query surface.
func NewSettingsRepository(db database.DBTX) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetBonusPercentage returns the configured bonus percentage for the
// organization, or 0 when no settings row exists.
func (r *SettingsRepository) GetBonusPercentage(ctx context.Context, organizationID uuid.UUID) (int64, error) {
	var pct int64
	err := r.db.QueryRow(ctx, `
		SELECT bonus_percentage
		FROM organization_settings
		WHERE organization_id = $1`,
		organizationID,
	).Scan(&pct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get bonus percentage: %w", err)
	}

	return pct, nil
}

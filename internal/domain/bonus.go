package domain

import (
	"time"

	"github.com/google/uuid"
)

// BonusLedgerRecord is the per-user loyalty balance within an organization.
// Bonus is confirmed and spendable; BonusPending is tied to orders that have
// not completed yet. Amounts are in minor currency units.
type BonusLedgerRecord struct {
	UserID         uuid.UUID `json:"user_id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Bonus          int64     `json:"bonus"`
	BonusPending   int64     `json:"bonus_pending"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// BonusAmount computes the bonus accrued for a subtotal given the
// organization's configured whole-number percentage. Integer division
// truncates toward zero, so fractional cents are dropped.
func BonusAmount(subtotal, percentage int64) int64 {
	return subtotal * percentage / 100
}

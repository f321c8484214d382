package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/commercekit/fulfillment/internal/domain"
	"github.com/commercekit/fulfillment/internal/repository"
	"github.com/commercekit/fulfillment/pkg/logger"
)

// BonusAccrual applies loyalty ledger deltas derived from the organization's
// configured percentage. The percentage is always read at operation time, so
// completion and cancellation recompute against the current configuration
// rather than whatever was in effect at creation. A percentage change between
// creation and settlement therefore drifts the pending balance; the drift is
// visible in the ledger and in warning logs, not corrected here.
type BonusAccrual struct {
	settings repository.SettingsRepository
	ledger   repository.BonusLedgerRepository
	log      *slog.Logger
}

// NewBonusAccrual creates a bonus service over transaction-bound repositories.
func NewBonusAccrual(settings repository.SettingsRepository, ledger repository.BonusLedgerRepository, log *slog.Logger) *BonusAccrual {
	return &BonusAccrual{settings: settings, ledger: ledger, log: log}
}

// AccruePending adds the computed bonus for a new order to the user's pending
// balance, creating the ledger record on first use. Returns the accrued amount.
func (s *BonusAccrual) AccruePending(ctx context.Context, organizationID, userID uuid.UUID, subtotal int64) (int64, error) {
	pct, err := s.settings.GetBonusPercentage(ctx, organizationID)
	if err != nil {
		return 0, err
	}

	amount := domain.BonusAmount(subtotal, pct)
	if err := s.ledger.AddPending(ctx, organizationID, userID, amount); err != nil {
		return 0, err
	}
	return amount, nil
}

// SettleOnCompletion moves the recomputed bonus from pending to earned. When
// no ledger record exists the settlement is skipped, matching the ledger's
// create-on-accrual lifecycle.
func (s *BonusAccrual) SettleOnCompletion(ctx context.Context, organizationID, userID uuid.UUID, totalAmount int64) error {
	pct, err := s.settings.GetBonusPercentage(ctx, organizationID)
	if err != nil {
		return err
	}

	amount := domain.BonusAmount(totalAmount, pct)
	ok, err := s.ledger.Settle(ctx, organizationID, userID, amount)
	if err != nil {
		return err
	}
	if !ok {
		missingLedgerOnSettle.Inc()
		logger.FromContext(ctx).Warn("bonus settle skipped, no ledger record",
			slog.String("user_id", userID.String()),
			slog.Int64("amount", amount),
		)
	}
	return nil
}

// ReverseOnCancellation removes the recomputed bonus from the pending balance.
// There is no floor; the balance can go negative when the percentage changed
// since creation.
func (s *BonusAccrual) ReverseOnCancellation(ctx context.Context, organizationID, userID uuid.UUID, totalAmount int64) error {
	pct, err := s.settings.GetBonusPercentage(ctx, organizationID)
	if err != nil {
		return err
	}

	amount := domain.BonusAmount(totalAmount, pct)
	ok, err := s.ledger.DeductPending(ctx, organizationID, userID, amount)
	if err != nil {
		return err
	}
	if !ok {
		missingLedgerOnSettle.Inc()
		logger.FromContext(ctx).Warn("bonus reversal skipped, no ledger record",
			slog.String("user_id", userID.String()),
			slog.Int64("amount", amount),
		)
	}
	return nil
}

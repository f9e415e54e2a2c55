package service

import (
	"context"
	"errors"

	"github.com/pointward/rewards-backend/internal/repository"
	"gorm.io/gorm"
)

// EarningsBreakdown re-derives what an account's lifetime earnings should
// total, independently of the stored counter. Discrepancy is stored minus
// calculated; non-zero values point at manual edits, task point changes
// after completion, or bugs.
type EarningsBreakdown struct {
	AccountUID      string
	TaskPoints      int64
	Tier1Bonus      int64
	Tier2Bonus      int64
	TotalCalculated int64
	StoredEarned    int64
	Discrepancy     int64
}

type EarningsService interface {
	Breakdown(ctx context.Context, accountUID string) (*EarningsBreakdown, error)
}

type earningsService struct {
	accounts    repository.AccountRepository
	completions repository.CompletionRepository
	rules       BonusRules
}

// NewEarningsService takes the same BonusRules instance as the settlement
// service so the audit can never drift from the live rates.
func NewEarningsService(accounts repository.AccountRepository, completions repository.CompletionRepository, rules BonusRules) EarningsService {
	return &earningsService{accounts: accounts, completions: completions, rules: rules}
}

// Breakdown is a read-only full scan over the account's two-tier downline.
// It uses current task point values; completions whose task row is gone
// contribute zero rather than failing the report. On-demand diagnostic, not
// a hot path.
func (s *earningsService) Breakdown(ctx context.Context, accountUID string) (*EarningsBreakdown, error) {
	account, err := s.accounts.FindByUID(ctx, accountUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, mapStoreError(err)
	}

	taskPoints, err := s.completions.SumCompletedPoints(ctx, accountUID)
	if err != nil {
		return nil, mapStoreError(err)
	}

	var tier1Bonus, tier2Bonus int64
	directs, err := s.accounts.ListByReferrer(ctx, accountUID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	for _, direct := range directs {
		sum, err := s.completions.SumCompletedPoints(ctx, direct.UID)
		if err != nil {
			return nil, mapStoreError(err)
		}
		tier1Bonus += s.rules.Tier1Bonus(sum)

		seconds, err := s.accounts.ListByReferrer(ctx, direct.UID)
		if err != nil {
			return nil, mapStoreError(err)
		}
		for _, second := range seconds {
			sum, err := s.completions.SumCompletedPoints(ctx, second.UID)
			if err != nil {
				return nil, mapStoreError(err)
			}
			tier2Bonus += s.rules.Tier2Bonus(sum)
		}
	}

	total := taskPoints + tier1Bonus + tier2Bonus
	return &EarningsBreakdown{
		AccountUID:      accountUID,
		TaskPoints:      taskPoints,
		Tier1Bonus:      tier1Bonus,
		Tier2Bonus:      tier2Bonus,
		TotalCalculated: total,
		StoredEarned:    account.TotalEarned,
		Discrepancy:     account.TotalEarned - total,
	}, nil
}

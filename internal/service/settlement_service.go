package service

import (
	"context"
	"errors"
	"time"

	"github.com/pointward/rewards-backend/internal/model"
	"github.com/pointward/rewards-backend/internal/repository"
	"gorm.io/gorm"
)

// TierCredit records one upline bonus applied during a settlement.
type TierCredit struct {
	AccountUID string
	Amount     int64
}

// SettlementResult enumerates exactly which accounts a settlement credited,
// for caller-facing confirmation messages.
type SettlementResult struct {
	AccountUID    string
	PointsAwarded int64
	NewLevel      int
	LeveledUp     bool
	Tier1         *TierCredit
	Tier2         *TierCredit
}

type SettlementService interface {
	// Settle awards a completed task: base points to the account, a tier-1
	// bonus to its referrer and a tier-2 bonus to the referrer's referrer,
	// and marks the completion record completed. Everything happens in one
	// transaction; on any error no state changes at all.
	Settle(ctx context.Context, accountUID string, taskID uint64) (*SettlementResult, error)
}

type settlementService struct {
	tx    repository.TxManager
	rules BonusRules
	now   func() time.Time
}

func NewSettlementService(tx repository.TxManager, rules BonusRules) SettlementService {
	return &settlementService{tx: tx, rules: rules, now: time.Now}
}

func (s *settlementService) Settle(ctx context.Context, accountUID string, taskID uint64) (*SettlementResult, error) {
	var result *SettlementResult
	err := s.tx.InTransaction(ctx, func(r repository.Repos) error {
		res, err := s.settle(ctx, r, accountUID, taskID)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	return result, nil
}

func (s *settlementService) settle(ctx context.Context, r repository.Repos, accountUID string, taskID uint64) (*SettlementResult, error) {
	completion, err := r.Completions.FindByKey(ctx, accountUID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidState
		}
		return nil, err
	}
	if completion.Status != model.CompletionStatusInProgress {
		return nil, ErrInvalidState
	}

	task, err := r.Tasks.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if task.Points <= 0 {
		return nil, ErrInvalidState
	}

	// Locked reads: the absolute level written by ApplyCredit is derived
	// from these totals, so a concurrent settlement crediting the same rows
	// must wait here rather than compute from a stale snapshot.
	account, err := r.Accounts.FindByUIDForUpdate(ctx, accountUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	// Resolve the upline before writing anything. The tier-1 referrer is
	// loaded whenever the link is set, so tier-2 eligibility depends only on
	// the chain's shape, never on how a bonus happened to round. A dangling
	// link is treated as no referrer.
	tier1Referrer, err := s.findReferrer(ctx, r, account.ReferredBy)
	if err != nil {
		return nil, err
	}
	var tier2Referrer *model.Account
	if tier1Referrer != nil {
		tier2Referrer, err = s.findReferrer(ctx, r, tier1Referrer.ReferredBy)
		if err != nil {
			return nil, err
		}
	}

	var tier1Bonus, tier2Bonus int64
	if tier1Referrer != nil {
		tier1Bonus = s.rules.Tier1Bonus(task.Points)
	}
	if tier2Referrer != nil {
		tier2Bonus = s.rules.Tier2Bonus(task.Points)
	}

	// The guarded update is the serialization point: a concurrent settlement
	// of the same pair sees zero rows changed and the whole unit rolls back.
	n, err := r.Completions.CompleteIfInProgress(ctx, accountUID, taskID, s.now())
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrInvalidState
	}

	newLevel := s.rules.Level(account.TotalEarned + task.Points)
	if err := r.Accounts.ApplyCredit(ctx, accountUID, task.Points, newLevel); err != nil {
		return nil, err
	}
	result := &SettlementResult{
		AccountUID:    accountUID,
		PointsAwarded: task.Points,
		NewLevel:      newLevel,
		LeveledUp:     newLevel > account.Level,
	}

	// A bonus that floors to zero credits nothing and leaves the referrer row
	// untouched.
	if tier1Bonus > 0 {
		level := s.rules.Level(tier1Referrer.TotalEarned + tier1Bonus)
		if err := r.Accounts.ApplyCredit(ctx, tier1Referrer.UID, tier1Bonus, level); err != nil {
			return nil, err
		}
		result.Tier1 = &TierCredit{AccountUID: tier1Referrer.UID, Amount: tier1Bonus}
	}
	if tier2Bonus > 0 {
		level := s.rules.Level(tier2Referrer.TotalEarned + tier2Bonus)
		if err := r.Accounts.ApplyCredit(ctx, tier2Referrer.UID, tier2Bonus, level); err != nil {
			return nil, err
		}
		result.Tier2 = &TierCredit{AccountUID: tier2Referrer.UID, Amount: tier2Bonus}
	}
	return result, nil
}

func (s *settlementService) findReferrer(ctx context.Context, r repository.Repos, uid *string) (*model.Account, error) {
	if uid == nil {
		return nil, nil
	}
	referrer, err := r.Accounts.FindByUIDForUpdate(ctx, *uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return referrer, nil
}

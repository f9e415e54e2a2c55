package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pointward/rewards-backend/internal/model"
	"github.com/pointward/rewards-backend/internal/repository"
	"gorm.io/gorm"
)

var ErrBadReferralCode = errors.New("bad_referral_code")

type AccountService interface {
	// Register creates the account for an authenticated uid. Passing a
	// referral code pins ReferredBy to the code's owner; the link is set at
	// creation and never rewritten, so a chain can only point at accounts
	// that already existed and can never loop back. Registering an existing
	// uid returns the stored account unchanged.
	Register(ctx context.Context, uid, displayName, referralCode string) (*model.Account, error)
	Get(ctx context.Context, uid string) (*model.Account, error)
}

type accountService struct {
	accounts repository.AccountRepository
}

func NewAccountService(accounts repository.AccountRepository) AccountService {
	return &accountService{accounts: accounts}
}

func (s *accountService) Register(ctx context.Context, uid, displayName, referralCode string) (*model.Account, error) {
	if uid == "" {
		return nil, errors.New("uid is required")
	}
	if existing, err := s.accounts.FindByUID(ctx, uid); err == nil {
		return existing, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, mapStoreError(err)
	}

	var referredBy *string
	if referralCode != "" {
		referrer, err := s.accounts.FindByReferralCode(ctx, referralCode)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrBadReferralCode
			}
			return nil, mapStoreError(err)
		}
		referredBy = &referrer.UID
	}

	a := &model.Account{
		UID:          uid,
		DisplayName:  displayName,
		Level:        1,
		ReferredBy:   referredBy,
		ReferralCode: uuid.NewString(),
		Role:         model.RoleStandard,
	}
	if err := s.accounts.Create(ctx, a); err != nil {
		return nil, mapStoreError(err)
	}
	return a, nil
}

func (s *accountService) Get(ctx context.Context, uid string) (*model.Account, error) {
	a, err := s.accounts.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, mapStoreError(err)
	}
	return a, nil
}

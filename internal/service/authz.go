package service

import (
	"context"
	"errors"

	"github.com/pointward/rewards-backend/internal/repository"
	"gorm.io/gorm"
)

// Authorizer is the capability check for administrative operations. The
// decision comes from the caller's Account row, not from any hardcoded
// identity.
type Authorizer interface {
	RequireAdmin(ctx context.Context, uid string) error
}

type accountRoleAuthorizer struct {
	accounts repository.AccountRepository
}

func NewAccountRoleAuthorizer(accounts repository.AccountRepository) Authorizer {
	return &accountRoleAuthorizer{accounts: accounts}
}

func (a *accountRoleAuthorizer) RequireAdmin(ctx context.Context, uid string) error {
	if uid == "" {
		return ErrForbidden
	}
	acct, err := a.accounts.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrForbidden
		}
		return mapStoreError(err)
	}
	if !acct.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

package repository

import (
	"context"

	"github.com/pointward/rewards-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) FindByUID(ctx context.Context, uid string) (*model.Account, error) {
	var a model.Account
	if err := r.db.WithContext(ctx).
		Where("uid = ?", uid).
		First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *accountRepository) FindByUIDForUpdate(ctx context.Context, uid string) (*model.Account, error) {
	var a model.Account
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("uid = ?", uid).
		First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *accountRepository) FindByReferralCode(ctx context.Context, code string) (*model.Account, error) {
	var a model.Account
	if err := r.db.WithContext(ctx).
		Where("referral_code = ?", code).
		First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *accountRepository) Create(ctx context.Context, a *model.Account) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *accountRepository) ApplyCredit(ctx context.Context, uid string, amount int64, level int) error {
	res := r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("uid = ?", uid).
		Updates(map[string]interface{}{
			"points":       gorm.Expr("points + ?", amount),
			"total_earned": gorm.Expr("total_earned + ?", amount),
			"level":        level,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *accountRepository) ListByReferrer(ctx context.Context, uid string) ([]model.Account, error) {
	var list []model.Account
	if err := r.db.WithContext(ctx).
		Where("referred_by = ?", uid).
		Order("uid").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *accountRepository) SetDB(db *gorm.DB) {
	r.db = db
}

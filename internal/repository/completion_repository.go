package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/pointward/rewards-backend/internal/model"
	"gorm.io/gorm"
)

type completionRepository struct {
	db *gorm.DB
}

func NewCompletionRepository(db *gorm.DB) CompletionRepository {
	return &completionRepository{db: db}
}

func (r *completionRepository) FindByKey(ctx context.Context, uid string, taskID uint64) (*model.TaskCompletion, error) {
	var c model.TaskCompletion
	if err := r.db.WithContext(ctx).
		Where("account_uid = ? AND task_id = ?", uid, taskID).
		First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *completionRepository) Create(ctx context.Context, c *model.TaskCompletion) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *completionRepository) StartIfAvailable(ctx context.Context, uid string, taskID uint64, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.TaskCompletion{}).
		Where("account_uid = ? AND task_id = ? AND status = ?", uid, taskID, model.CompletionStatusAvailable).
		Updates(map[string]interface{}{
			"status":     model.CompletionStatusInProgress,
			"started_at": at,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *completionRepository) CompleteIfInProgress(ctx context.Context, uid string, taskID uint64, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.TaskCompletion{}).
		Where("account_uid = ? AND task_id = ? AND status = ?", uid, taskID, model.CompletionStatusInProgress).
		Updates(map[string]interface{}{
			"status":       model.CompletionStatusCompleted,
			"completed_at": at,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *completionRepository) ResetToAvailable(ctx context.Context, uid string, taskID uint64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.TaskCompletion{}).
		Where("account_uid = ? AND task_id = ?", uid, taskID).
		Updates(map[string]interface{}{
			"status":       model.CompletionStatusAvailable,
			"started_at":   nil,
			"completed_at": nil,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *completionRepository) ListByAccount(ctx context.Context, uid string) ([]model.TaskCompletion, error) {
	var list []model.TaskCompletion
	if err := r.db.WithContext(ctx).
		Where("account_uid = ?", uid).
		Order("task_id").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *completionRepository) SumCompletedPoints(ctx context.Context, uid string) (int64, error) {
	var total sql.NullInt64
	err := r.db.WithContext(ctx).
		Model(&model.TaskCompletion{}).
		Select("SUM(tasks.points)").
		Joins("JOIN tasks ON tasks.id = task_completions.task_id").
		Where("task_completions.account_uid = ? AND task_completions.status = ?", uid, model.CompletionStatusCompleted).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if !total.Valid {
		return 0, nil
	}
	return total.Int64, nil
}

func (r *completionRepository) SetDB(db *gorm.DB) {
	r.db = db
}

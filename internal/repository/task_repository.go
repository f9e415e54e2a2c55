package repository

import (
	"context"

	"github.com/pointward/rewards-backend/internal/model"
	"gorm.io/gorm"
)

type taskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) FindByID(ctx context.Context, id uint64) (*model.Task, error) {
	var t model.Task
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *taskRepository) Create(ctx context.Context, t *model.Task) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *taskRepository) ListActive(ctx context.Context) ([]model.Task, error) {
	var list []model.Task
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("id").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *taskRepository) SetDB(db *gorm.DB) {
	r.db = db
}

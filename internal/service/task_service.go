package service

import (
	"context"
	"errors"
	"time"

	"github.com/pointward/rewards-backend/internal/model"
	"github.com/pointward/rewards-backend/internal/repository"
	"gorm.io/gorm"
)

type TaskWithStatus struct {
	Task   model.Task
	Status model.CompletionStatus
}

type TaskService interface {
	// ListForAccount returns active tasks joined with the account's
	// completion status, creating missing ledger rows as available.
	ListForAccount(ctx context.Context, uid string) ([]TaskWithStatus, error)
	// Start flips a completion from available to in_progress, the only state
	// settlement accepts.
	Start(ctx context.Context, uid string, taskID uint64) error
	Create(ctx context.Context, title, description string, points int64) (*model.Task, error)
	// Reset reopens a completion as available and clears its timestamps.
	// Balances are not reversed; reconciliation will surface the drift.
	Reset(ctx context.Context, uid string, taskID uint64) error
}

type taskService struct {
	tasks       repository.TaskRepository
	completions repository.CompletionRepository
	now         func() time.Time
}

func NewTaskService(tasks repository.TaskRepository, completions repository.CompletionRepository) TaskService {
	return &taskService{tasks: tasks, completions: completions, now: time.Now}
}

func (s *taskService) ListForAccount(ctx context.Context, uid string) ([]TaskWithStatus, error) {
	active, err := s.tasks.ListActive(ctx)
	if err != nil {
		return nil, mapStoreError(err)
	}
	existing, err := s.completions.ListByAccount(ctx, uid)
	if err != nil {
		return nil, mapStoreError(err)
	}
	statusByTask := make(map[uint64]model.CompletionStatus, len(existing))
	for _, c := range existing {
		statusByTask[c.TaskID] = c.Status
	}

	out := make([]TaskWithStatus, 0, len(active))
	for _, t := range active {
		status, ok := statusByTask[t.ID]
		if !ok {
			c := &model.TaskCompletion{
				AccountUID: uid,
				TaskID:     t.ID,
				Status:     model.CompletionStatusAvailable,
			}
			if err := s.completions.Create(ctx, c); err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, mapStoreError(err)
			}
			status = model.CompletionStatusAvailable
		}
		out = append(out, TaskWithStatus{Task: t, Status: status})
	}
	return out, nil
}

func (s *taskService) Start(ctx context.Context, uid string, taskID uint64) error {
	if _, err := s.tasks.FindByID(ctx, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return mapStoreError(err)
	}
	if _, err := s.completions.FindByKey(ctx, uid, taskID); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return mapStoreError(err)
		}
		c := &model.TaskCompletion{
			AccountUID: uid,
			TaskID:     taskID,
			Status:     model.CompletionStatusAvailable,
		}
		if err := s.completions.Create(ctx, c); err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			return mapStoreError(err)
		}
	}
	n, err := s.completions.StartIfAvailable(ctx, uid, taskID, s.now())
	if err != nil {
		return mapStoreError(err)
	}
	if n == 0 {
		return ErrInvalidState
	}
	return nil
}

func (s *taskService) Create(ctx context.Context, title, description string, points int64) (*model.Task, error) {
	if title == "" {
		return nil, errors.New("title is required")
	}
	if points <= 0 {
		return nil, errors.New("points must be positive")
	}
	t := &model.Task{
		Title:       title,
		Description: description,
		Points:      points,
		Active:      true,
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, mapStoreError(err)
	}
	return t, nil
}

func (s *taskService) Reset(ctx context.Context, uid string, taskID uint64) error {
	n, err := s.completions.ResetToAvailable(ctx, uid, taskID)
	if err != nil {
		return mapStoreError(err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

package service

import (
	"context"
	"testing"

	"github.com/pointward/rewards-backend/internal/model"
	"github.com/pointward/rewards-backend/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTaskService(store *memory.Store) TaskService {
	repos := store.Repos()
	return NewTaskService(repos.Tasks, repos.Completions)
}

func TestListForAccountInitializesLedger(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := newTaskService(store)

	seedAccount(t, store, "u", nil)
	seedTask(t, store, 10)
	seedTask(t, store, 20)

	list, err := svc.ListForAccount(ctx, "u")
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, row := range list {
		assert.Equal(t, model.CompletionStatusAvailable, row.Status)
	}

	// The rows now exist; a second listing reuses them.
	list, err = svc.ListForAccount(ctx, "u")
	require.NoError(t, err)
	require.Len(t, list, 2)
}

func TestStartTransitionsOnce(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := newTaskService(store)

	seedAccount(t, store, "u", nil)
	taskID := seedTask(t, store, 10)

	require.NoError(t, svc.Start(ctx, "u", taskID))

	c, err := store.Repos().Completions.FindByKey(ctx, "u", taskID)
	require.NoError(t, err)
	assert.Equal(t, model.CompletionStatusInProgress, c.Status)
	assert.NotNil(t, c.StartedAt)

	require.ErrorIs(t, svc.Start(ctx, "u", taskID), ErrInvalidState)
}

func TestStartUnknownTask(t *testing.T) {
	store := memory.NewStore()
	svc := newTaskService(store)

	require.ErrorIs(t, svc.Start(context.Background(), "u", 404), ErrNotFound)
}

func TestCreateTaskValidation(t *testing.T) {
	store := memory.NewStore()
	svc := newTaskService(store)
	ctx := context.Background()

	_, err := svc.Create(ctx, "", "d", 10)
	require.Error(t, err)
	_, err = svc.Create(ctx, "t", "d", 0)
	require.Error(t, err)

	task, err := svc.Create(ctx, "t", "d", 10)
	require.NoError(t, err)
	assert.NotZero(t, task.ID)
	assert.True(t, task.Active)
}

func TestResetReopensCompletion(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	taskSvc := newTaskService(store)
	settlement := NewSettlementService(store, DefaultBonusRules())

	seedAccount(t, store, "u", nil)
	taskID := seedTask(t, store, 100)
	seedCompletion(t, store, "u", taskID, model.CompletionStatusInProgress)

	_, err := settlement.Settle(ctx, "u", taskID)
	require.NoError(t, err)

	require.NoError(t, taskSvc.Reset(ctx, "u", taskID))
	c, err := store.Repos().Completions.FindByKey(ctx, "u", taskID)
	require.NoError(t, err)
	assert.Equal(t, model.CompletionStatusAvailable, c.Status)
	assert.Nil(t, c.CompletedAt)

	// Balances are untouched; the drift is reconciliation's to report.
	assert.Equal(t, int64(100), getAccount(t, store, "u").TotalEarned)

	require.ErrorIs(t, taskSvc.Reset(ctx, "u", 404), ErrNotFound)
}

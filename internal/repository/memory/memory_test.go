package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pointward/rewards-backend/internal/model"
	"github.com/pointward/rewards-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInTransactionRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.Repos().Accounts.Create(ctx, &model.Account{
		UID: "u", Level: 1, ReferralCode: "c",
	}))

	boom := errors.New("boom")
	err := store.InTransaction(ctx, func(r repository.Repos) error {
		if err := r.Accounts.ApplyCredit(ctx, "u", 100, 2); err != nil {
			return err
		}
		if err := r.Tasks.Create(ctx, &model.Task{Title: "t", Points: 1, Active: true}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	a, err := store.Repos().Accounts.FindByUID(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, int64(0), a.Points)
	tasks, err := store.Repos().Tasks.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestInTransactionCommits(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.Repos().Accounts.Create(ctx, &model.Account{
		UID: "u", Level: 1, ReferralCode: "c",
	}))

	err := store.InTransaction(ctx, func(r repository.Repos) error {
		return r.Accounts.ApplyCredit(ctx, "u", 100, 2)
	})
	require.NoError(t, err)

	a, err := store.Repos().Accounts.FindByUID(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, int64(100), a.Points)
	assert.Equal(t, int64(100), a.TotalEarned)
	assert.Equal(t, 2, a.Level)
}

func TestGuardedStatusTransitions(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repos := store.Repos()
	require.NoError(t, repos.Completions.Create(ctx, &model.TaskCompletion{
		AccountUID: "u", TaskID: 1, Status: model.CompletionStatusAvailable,
	}))

	n, err := repos.Completions.CompleteIfInProgress(ctx, "u", 1, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n, "available record must not complete")

	n, err = repos.Completions.StartIfAvailable(ctx, "u", 1, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = repos.Completions.StartIfAvailable(ctx, "u", 1, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n, "start is one-shot")

	n, err = repos.Completions.CompleteIfInProgress(ctx, "u", 1, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

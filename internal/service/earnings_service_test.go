package service

import (
	"context"
	"testing"

	"github.com/pointward/rewards-backend/internal/model"
	"github.com/pointward/rewards-backend/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEarnings(store *memory.Store) EarningsService {
	repos := store.Repos()
	return NewEarningsService(repos.Accounts, repos.Completions, DefaultBonusRules())
}

func settleTask(t *testing.T, store *memory.Store, svc SettlementService, uid string, points int64) {
	t.Helper()
	taskID := seedTask(t, store, points)
	seedCompletion(t, store, uid, taskID, model.CompletionStatusInProgress)
	_, err := svc.Settle(context.Background(), uid, taskID)
	require.NoError(t, err)
}

func TestBreakdownRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	settlement := NewSettlementService(store, DefaultBonusRules())
	earnings := newEarnings(store)

	seedAccount(t, store, "a", nil)
	refA := "a"
	seedAccount(t, store, "b", &refA)
	refB := "b"
	seedAccount(t, store, "c", &refB)

	settleTask(t, store, settlement, "a", 50)
	settleTask(t, store, settlement, "b", 100)
	settleTask(t, store, settlement, "b", 50)
	settleTask(t, store, settlement, "c", 100)

	for _, uid := range []string{"a", "b", "c"} {
		b, err := earnings.Breakdown(ctx, uid)
		require.NoError(t, err)
		acc := getAccount(t, store, uid)
		assert.Equal(t, acc.TotalEarned, b.TotalCalculated, "uid=%s", uid)
		assert.Equal(t, int64(0), b.Discrepancy, "uid=%s", uid)
	}

	// Spot-check the shape for A: own 50, 10% of B's 150, 2% of C's 100.
	b, err := earnings.Breakdown(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(50), b.TaskPoints)
	assert.Equal(t, int64(15), b.Tier1Bonus)
	assert.Equal(t, int64(2), b.Tier2Bonus)
	assert.Equal(t, int64(67), b.TotalCalculated)
}

func TestBreakdownIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	settlement := NewSettlementService(store, DefaultBonusRules())
	earnings := newEarnings(store)

	seedAccount(t, store, "a", nil)
	refA := "a"
	seedAccount(t, store, "b", &refA)
	settleTask(t, store, settlement, "b", 100)

	first, err := earnings.Breakdown(ctx, "a")
	require.NoError(t, err)
	second, err := earnings.Breakdown(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBreakdownDetectsManualDrift(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	settlement := NewSettlementService(store, DefaultBonusRules())
	earnings := newEarnings(store)

	seedAccount(t, store, "u", nil)
	settleTask(t, store, settlement, "u", 100)

	// A manual edit outside the engine bumps the stored counter.
	require.NoError(t, store.Repos().Accounts.ApplyCredit(ctx, "u", 50, 2))

	b, err := earnings.Breakdown(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, int64(100), b.TotalCalculated)
	assert.Equal(t, int64(150), b.StoredEarned)
	assert.Equal(t, int64(50), b.Discrepancy)
}

func TestBreakdownMissingTaskContributesZero(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	earnings := newEarnings(store)

	seedAccount(t, store, "u", nil)
	// Completed record whose task row no longer exists.
	seedCompletion(t, store, "u", 99, model.CompletionStatusCompleted)

	b, err := earnings.Breakdown(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, int64(0), b.TaskPoints)
	assert.Equal(t, int64(0), b.TotalCalculated)
}

func TestBreakdownUnknownAccount(t *testing.T) {
	store := memory.NewStore()
	earnings := newEarnings(store)

	_, err := earnings.Breakdown(context.Background(), "nobody")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestBreakdownOnlyCountsCompleted(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	earnings := newEarnings(store)

	seedAccount(t, store, "u", nil)
	done := seedTask(t, store, 40)
	pending := seedTask(t, store, 60)
	seedCompletion(t, store, "u", done, model.CompletionStatusCompleted)
	seedCompletion(t, store, "u", pending, model.CompletionStatusInProgress)

	b, err := earnings.Breakdown(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, int64(40), b.TaskPoints)
}

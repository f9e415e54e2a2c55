package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pointward/rewards-backend/internal/model"
	"github.com/pointward/rewards-backend/internal/repository/memory"
	"github.com/pointward/rewards-backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCompleteContext(e *echo.Echo, uid, taskID string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/api/tasks/"+taskID+"/complete", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/tasks/:id/complete")
	c.SetParamNames("id")
	c.SetParamValues(taskID)
	c.Set("uid", uid)
	return c, rec
}

func TestCompleteReturnsSettlementResult(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := service.NewSettlementService(store, service.DefaultBonusRules())
	h := NewSettlementHandler(svc)
	e := echo.New()

	require.NoError(t, store.Repos().Accounts.Create(ctx, &model.Account{
		UID: "a", Level: 1, ReferralCode: "c1",
	}))
	refA := "a"
	require.NoError(t, store.Repos().Accounts.Create(ctx, &model.Account{
		UID: "u", Level: 1, ReferralCode: "c2", ReferredBy: &refA,
	}))
	task := &model.Task{Title: "t", Points: 100, Active: true}
	require.NoError(t, store.Repos().Tasks.Create(ctx, task))
	require.NoError(t, store.Repos().Completions.Create(ctx, &model.TaskCompletion{
		AccountUID: "u", TaskID: task.ID, Status: model.CompletionStatusInProgress,
	}))

	c, rec := newCompleteContext(e, "u", "1")
	require.NoError(t, h.Complete(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SettlementResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "u", resp.AccountUID)
	assert.Equal(t, int64(100), resp.PointsAwarded)
	require.NotNil(t, resp.Tier1)
	assert.Equal(t, "a", resp.Tier1.AccountUID)
	assert.Equal(t, int64(10), resp.Tier1.Amount)
	assert.Nil(t, resp.Tier2)
}

func TestCompleteNotReadyConflict(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := service.NewSettlementService(store, service.DefaultBonusRules())
	h := NewSettlementHandler(svc)
	e := echo.New()

	require.NoError(t, store.Repos().Accounts.Create(ctx, &model.Account{
		UID: "u", Level: 1, ReferralCode: "c",
	}))
	task := &model.Task{Title: "t", Points: 100, Active: true}
	require.NoError(t, store.Repos().Tasks.Create(ctx, task))
	require.NoError(t, store.Repos().Completions.Create(ctx, &model.TaskCompletion{
		AccountUID: "u", TaskID: task.ID, Status: model.CompletionStatusAvailable,
	}))

	c, rec := newCompleteContext(e, "u", "1")
	require.NoError(t, h.Complete(c))
	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_state", resp.Error.Code)
}

type stubSettlementService struct {
	err error
}

func (s *stubSettlementService) Settle(ctx context.Context, accountUID string, taskID uint64) (*service.SettlementResult, error) {
	return nil, s.err
}

func TestCompleteStoreErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"conflict retries", service.ErrConflict, http.StatusConflict, "transaction_conflict"},
		{"store down", service.ErrUnavailable, http.StatusServiceUnavailable, "storage_unavailable"},
		{"missing task", service.ErrNotFound, http.StatusNotFound, "not_found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSettlementHandler(&stubSettlementService{err: tt.err})
			e := echo.New()
			c, rec := newCompleteContext(e, "u", "1")
			require.NoError(t, h.Complete(c))
			assert.Equal(t, tt.status, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestCompleteRequiresUID(t *testing.T) {
	store := memory.NewStore()
	svc := service.NewSettlementService(store, service.DefaultBonusRules())
	h := NewSettlementHandler(svc)
	e := echo.New()

	c, rec := newCompleteContext(e, "", "1")
	require.NoError(t, h.Complete(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pointward/rewards-backend/internal/service"
)

type SettlementHandler struct {
	svc service.SettlementService
}

func NewSettlementHandler(svc service.SettlementService) *SettlementHandler {
	return &SettlementHandler{svc: svc}
}

type TierCreditResponse struct {
	AccountUID string `json:"accountUid"`
	Amount     int64  `json:"amount"`
}

type SettlementResponse struct {
	AccountUID    string              `json:"accountUid"`
	PointsAwarded int64               `json:"pointsAwarded"`
	NewLevel      int                 `json:"newLevel"`
	LeveledUp     bool                `json:"leveledUp"`
	Tier1         *TierCreditResponse `json:"tier1,omitempty"`
	Tier2         *TierCreditResponse `json:"tier2,omitempty"`
}

func toSettlementResponse(r *service.SettlementResult) SettlementResponse {
	resp := SettlementResponse{
		AccountUID:    r.AccountUID,
		PointsAwarded: r.PointsAwarded,
		NewLevel:      r.NewLevel,
		LeveledUp:     r.LeveledUp,
	}
	if r.Tier1 != nil {
		resp.Tier1 = &TierCreditResponse{AccountUID: r.Tier1.AccountUID, Amount: r.Tier1.Amount}
	}
	if r.Tier2 != nil {
		resp.Tier2 = &TierCreditResponse{AccountUID: r.Tier2.AccountUID, Amount: r.Tier2.Amount}
	}
	return resp
}

// Complete settles the caller's own in-progress task.
func (h *SettlementHandler) Complete(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid task id"))
	}
	result, err := h.svc.Settle(c.Request().Context(), uid, taskID)
	if err != nil {
		return settlementErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, toSettlementResponse(result))
}

func settlementErrorResponse(c echo.Context, err error) error {
	switch err {
	case service.ErrInvalidState:
		return c.JSON(http.StatusConflict, NewErrorResponse("invalid_state", "task not ready to award"))
	case service.ErrNotFound:
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "account or task not found"))
	case service.ErrConflict:
		return c.JSON(http.StatusConflict, NewErrorResponse("transaction_conflict", "concurrent update, retry"))
	case service.ErrUnavailable:
		return c.JSON(http.StatusServiceUnavailable, NewErrorResponse("storage_unavailable", "try again later"))
	default:
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "settlement failed"))
	}
}

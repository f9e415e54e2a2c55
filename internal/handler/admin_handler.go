package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pointward/rewards-backend/internal/service"
)

// AdminHandler serves the management panel: manual awards, completion
// resets, task creation and the earnings reconciliation report. Every
// operation passes through the Authorizer.
type AdminHandler struct {
	authz      service.Authorizer
	tasks      service.TaskService
	settlement service.SettlementService
	earnings   service.EarningsService
}

func NewAdminHandler(authz service.Authorizer, tasks service.TaskService, settlement service.SettlementService, earnings service.EarningsService) *AdminHandler {
	return &AdminHandler{authz: authz, tasks: tasks, settlement: settlement, earnings: earnings}
}

// requireAdmin writes the error response itself and reports whether the
// caller may proceed.
func (h *AdminHandler) requireAdmin(c echo.Context) bool {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		_ = c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
		return false
	}
	if err := h.authz.RequireAdmin(c.Request().Context(), uid); err != nil {
		if err == service.ErrForbidden {
			_ = c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "admin role required"))
		} else {
			_ = c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "authorization check failed"))
		}
		return false
	}
	return true
}

func (h *AdminHandler) CreateTask(c echo.Context) error {
	if !h.requireAdmin(c) {
		return nil
	}
	var body struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Points      int64  `json:"points"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	t, err := h.tasks.Create(c.Request().Context(), body.Title, body.Description, body.Points)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	return c.JSON(http.StatusCreated, TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Points:      t.Points,
	})
}

// Award settles a task on behalf of a user. Same cascade as the user-facing
// completion path, with the admin capability check in front.
func (h *AdminHandler) Award(c echo.Context) error {
	if !h.requireAdmin(c) {
		return nil
	}
	targetUID := c.Param("uid")
	taskID, err := strconv.ParseUint(c.Param("taskId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid task id"))
	}
	result, err := h.settlement.Settle(c.Request().Context(), targetUID, taskID)
	if err != nil {
		return settlementErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, toSettlementResponse(result))
}

func (h *AdminHandler) ResetCompletion(c echo.Context) error {
	if !h.requireAdmin(c) {
		return nil
	}
	targetUID := c.Param("uid")
	taskID, err := strconv.ParseUint(c.Param("taskId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid task id"))
	}
	if err := h.tasks.Reset(c.Request().Context(), targetUID, taskID); err != nil {
		switch err {
		case service.ErrNotFound:
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "completion not found"))
		default:
			return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "reset failed"))
		}
	}
	return c.NoContent(http.StatusNoContent)
}

type EarningsResponse struct {
	AccountUID      string `json:"accountUid"`
	TaskPoints      int64  `json:"taskPoints"`
	Tier1Bonus      int64  `json:"tier1Bonus"`
	Tier2Bonus      int64  `json:"tier2Bonus"`
	TotalCalculated int64  `json:"totalCalculated"`
	StoredEarned    int64  `json:"storedEarned"`
	Discrepancy     int64  `json:"discrepancy"`
}

func (h *AdminHandler) Earnings(c echo.Context) error {
	if !h.requireAdmin(c) {
		return nil
	}
	targetUID := c.Param("uid")
	b, err := h.earnings.Breakdown(c.Request().Context(), targetUID)
	if err != nil {
		switch err {
		case service.ErrNotFound:
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "account not found"))
		case service.ErrUnavailable:
			return c.JSON(http.StatusServiceUnavailable, NewErrorResponse("storage_unavailable", "try again later"))
		default:
			return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "breakdown failed"))
		}
	}
	return c.JSON(http.StatusOK, EarningsResponse{
		AccountUID:      b.AccountUID,
		TaskPoints:      b.TaskPoints,
		Tier1Bonus:      b.Tier1Bonus,
		Tier2Bonus:      b.Tier2Bonus,
		TotalCalculated: b.TotalCalculated,
		StoredEarned:    b.StoredEarned,
		Discrepancy:     b.Discrepancy,
	})
}

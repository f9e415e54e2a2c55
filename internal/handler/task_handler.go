package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pointward/rewards-backend/internal/service"
)

type TaskHandler struct {
	svc service.TaskService
}

func NewTaskHandler(svc service.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

type TaskResponse struct {
	ID          uint64 `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Points      int64  `json:"points"`
	Status      string `json:"status"`
}

func (h *TaskHandler) List(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	list, err := h.svc.ListForAccount(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch tasks"))
	}
	resp := make([]TaskResponse, 0, len(list))
	for _, row := range list {
		resp = append(resp, TaskResponse{
			ID:          row.Task.ID,
			Title:       row.Task.Title,
			Description: row.Task.Description,
			Points:      row.Task.Points,
			Status:      string(row.Status),
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *TaskHandler) Start(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid task id"))
	}
	if err := h.svc.Start(c.Request().Context(), uid, taskID); err != nil {
		switch err {
		case service.ErrNotFound:
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "task not found"))
		case service.ErrInvalidState:
			return c.JSON(http.StatusConflict, NewErrorResponse("invalid_state", "task already started or completed"))
		case service.ErrUnavailable:
			return c.JSON(http.StatusServiceUnavailable, NewErrorResponse("storage_unavailable", "try again later"))
		default:
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
		}
	}
	return c.NoContent(http.StatusNoContent)
}

package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pointward/rewards-backend/internal/model"
	"github.com/pointward/rewards-backend/internal/service"
)

type AccountHandler struct {
	svc service.AccountService
}

func NewAccountHandler(svc service.AccountService) *AccountHandler {
	return &AccountHandler{svc: svc}
}

type AccountResponse struct {
	UID          string  `json:"uid"`
	DisplayName  string  `json:"displayName"`
	Points       int64   `json:"points"`
	TotalEarned  int64   `json:"totalEarned"`
	Level        int     `json:"level"`
	ReferralCode string  `json:"referralCode"`
	ReferredBy   *string `json:"referredBy,omitempty"`
	Role         string  `json:"role"`
	CreatedAt    string  `json:"createdAt"`
}

func toAccountResponse(a *model.Account) AccountResponse {
	return AccountResponse{
		UID:          a.UID,
		DisplayName:  a.DisplayName,
		Points:       a.Points,
		TotalEarned:  a.TotalEarned,
		Level:        a.Level,
		ReferralCode: a.ReferralCode,
		ReferredBy:   a.ReferredBy,
		Role:         string(a.Role),
		CreatedAt:    a.CreatedAt.Format(time.RFC3339),
	}
}

func (h *AccountHandler) Register(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var body struct {
		DisplayName  string `json:"displayName"`
		ReferralCode string `json:"referralCode"`
	}
	_ = c.Bind(&body)
	a, err := h.svc.Register(c.Request().Context(), uid, body.DisplayName, body.ReferralCode)
	if err != nil {
		switch err {
		case service.ErrBadReferralCode:
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_referral_code", "unknown referral code"))
		case service.ErrUnavailable:
			return c.JSON(http.StatusServiceUnavailable, NewErrorResponse("storage_unavailable", "try again later"))
		default:
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
		}
	}
	return c.JSON(http.StatusCreated, toAccountResponse(a))
}

func (h *AccountHandler) Me(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	a, err := h.svc.Get(c.Request().Context(), uid)
	if err != nil {
		switch err {
		case service.ErrNotFound:
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "account not registered"))
		case service.ErrUnavailable:
			return c.JSON(http.StatusServiceUnavailable, NewErrorResponse("storage_unavailable", "try again later"))
		default:
			return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch account"))
		}
	}
	return c.JSON(http.StatusOK, toAccountResponse(a))
}

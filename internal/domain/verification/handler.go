package verification

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/users/request-code", h.RequestCode)
	api.POST("/users/verify-code", h.VerifyCode)
}

type requestCodeRequest struct {
	Phone          string `json:"phone"`
	IsRegistration bool   `json:"is_registration"`
}

func (h *Handler) RequestCode(c echo.Context) error {
	var req requestCodeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	err := h.svc.GenerateCode(c.Request().Context(), req.Phone, req.IsRegistration)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, map[string]string{"message": "code sent"})
	case errors.Is(err, ErrInvalidPhone):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrPhoneInUse):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrCooldown):
		return echo.NewHTTPError(http.StatusTooManyRequests, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to send code")
	}
}

type verifyCodeRequest struct {
	Phone          string `json:"phone"`
	Code           string `json:"code"`
	IsRegistration bool   `json:"is_registration"`
}

type verifyCodeResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

func (h *Handler) VerifyCode(c echo.Context) error {
	var req verifyCodeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	valid, err := h.svc.VerifyCode(c.Request().Context(), req.Phone, req.Code, req.IsRegistration)
	switch {
	case err == nil:
		msg := "code confirmed"
		if !valid {
			msg = "code does not match"
		}
		return c.JSON(http.StatusOK, verifyCodeResponse{Valid: valid, Message: msg})
	case errors.Is(err, ErrInvalidPhone):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrPhoneInUse):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrTooManyAttempts):
		return echo.NewHTTPError(http.StatusTooManyRequests, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to verify code")
	}
}

package booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/vetbook/vetbook/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// RegisterRoutes mounts booking endpoints. The schedule is public but
// personalized when a valid token rides along, so it takes the optional-auth
// middleware per-route.
func (h *Handler) RegisterRoutes(api, authed *echo.Group, optionalAuth echo.MiddlewareFunc) {
	api.GET("/doctors/:id/schedule", h.schedule, optionalAuth)
	authed.POST("/appointments", h.create)
	authed.DELETE("/appointments/:id", h.cancel)
	authed.GET("/appointments/my", h.listMine)
	authed.GET("/doctors/:id/appointments", h.listForDoctor)
}

type createRequest struct {
	DoctorID string `json:"doctor_id"`
	Date     string `json:"date"`
	TimeSlot string `json:"time_slot"`
}

func (h *Handler) create(c echo.Context) error {
	userID, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
	}

	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}

	appt, err := h.svc.CreateAppointment(c.Request().Context(), CreateInput{
		UserID:   userID,
		DoctorID: doctorID,
		Date:     req.Date,
		TimeSlot: req.TimeSlot,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrDoctorNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrInvalidDate), errors.Is(err, ErrPastDate),
			errors.Is(err, ErrInvalidSlot), errors.Is(err, ErrDuplicateBooking),
			errors.Is(err, ErrSlotTaken):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to book appointment")
		}
	}
	return c.JSON(http.StatusCreated, appt)
}

func (h *Handler) cancel(c echo.Context) error {
	userID, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
	}
	apptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}

	appt, err := h.svc.CancelAppointment(c.Request().Context(), userID, apptID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrNotOwner):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, ErrAlreadyCancelled):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to cancel appointment")
		}
	}
	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) listMine(c echo.Context) error {
	userID, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
	}

	items, err := h.svc.GetUserAppointments(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list appointments")
	}
	if items == nil {
		items = []*Appointment{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) listForDoctor(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}

	items, err := h.svc.GetDoctorAppointments(c.Request().Context(),
		doctorID, c.QueryParam("start"), c.QueryParam("end"))
	if err != nil {
		switch {
		case errors.Is(err, ErrDoctorNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrInvalidDate):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to list appointments")
		}
	}
	if items == nil {
		items = []*Appointment{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) schedule(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}

	weeks := 0
	if raw := c.QueryParam("weeks"); raw != "" {
		weeks, err = strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "weeks must be a number")
		}
	}

	// Anonymous viewers get uuid.Nil and no booked_by_me flags.
	viewerID, _ := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))

	sched, err := h.svc.GetDoctorSchedule(c.Request().Context(), doctorID, viewerID, weeks)
	if err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to build schedule")
	}
	return c.JSON(http.StatusOK, sched)
}

package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/garage-hub/internal/model"
	"github.com/iliyamo/garage-hub/internal/repository"
)

// AppointmentHandler covers appointment CRUD within a garage.
type AppointmentHandler struct {
	Appointments *repository.AppointmentRepo
	Clients      *repository.ClientRepo
	Members      *repository.MembershipRepo
}

func NewAppointmentHandler(a *repository.AppointmentRepo, cl *repository.ClientRepo, m *repository.MembershipRepo) *AppointmentHandler {
	return &AppointmentHandler{Appointments: a, Clients: cl, Members: m}
}

type appointmentReq struct {
	ClientID    uint64    `json:"client_id"`
	VehicleID   *uint64   `json:"vehicle_id"`
	ServiceType string    `json:"service_type"`
	Bay         string    `json:"bay"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
}

type windowReq struct {
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

type statusReq struct {
	Status string `json:"status"`
}

func (h *AppointmentHandler) scoped(c echo.Context) (context.Context, context.CancelFunc, uint64, error) {
	uid, err := getUserID(c)
	if err != nil {
		return nil, nil, 0, c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	gid, err := pathID(c, "garage_id")
	if err != nil {
		return nil, nil, 0, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid garage id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	if err := requireGarageAccess(ctx, h.Members, gid, uid); err != nil {
		cancel()
		return nil, nil, 0, scopeErr(c, err)
	}
	return ctx, cancel, gid, nil
}

func validStatus(s string) bool {
	switch s {
	case model.AppointmentScheduled, model.AppointmentCompleted, model.AppointmentCancelled:
		return true
	}
	return false
}

func (h *AppointmentHandler) Create(c echo.Context) error {
	ctx, cancel, gid, errResp := h.scoped(c)
	if errResp != nil {
		return errResp
	}
	defer cancel()

	var req appointmentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ClientID == 0 || req.StartsAt.IsZero() || req.EndsAt.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "client_id, starts_at and ends_at required"})
	}
	if !req.EndsAt.After(req.StartsAt) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ends_at must be after starts_at"})
	}
	if _, err := h.Clients.GetByIDAndGarage(ctx, req.ClientID, gid); err != nil {
		if errors.Is(err, repository.ErrClientNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "client not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load client failed"})
	}

	a := &model.Appointment{
		GarageID:    gid,
		ClientID:    req.ClientID,
		VehicleID:   req.VehicleID,
		ServiceType: strings.TrimSpace(req.ServiceType),
		Bay:         strings.TrimSpace(req.Bay),
		StartsAt:    req.StartsAt.UTC(),
		EndsAt:      req.EndsAt.UTC(),
		Status:      model.AppointmentScheduled,
	}
	if err := h.Appointments.Create(ctx, a); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create appointment failed"})
	}
	return c.JSON(http.StatusCreated, a)
}

// List returns appointments matching the optional query filters: status,
// client_id, from and to (RFC 3339 timestamps bounding starts_at).
func (h *AppointmentHandler) List(c echo.Context) error {
	ctx, cancel, gid, errResp := h.scoped(c)
	if errResp != nil {
		return errResp
	}
	defer cancel()

	var f repository.Filter
	if s := strings.ToUpper(strings.TrimSpace(c.QueryParam("status"))); s != "" {
		if !validStatus(s) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
		}
		f.Status = s
	}
	if s := c.QueryParam("client_id"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client_id"})
		}
		f.ClientID = id
	}
	if s := c.QueryParam("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid from timestamp"})
		}
		f.From = &t
	}
	if s := c.QueryParam("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid to timestamp"})
		}
		f.To = &t
	}

	list, err := h.Appointments.List(ctx, gid, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list appointments failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"appointments": list})
}

func (h *AppointmentHandler) Get(c echo.Context) error {
	ctx, cancel, gid, errResp := h.scoped(c)
	if errResp != nil {
		return errResp
	}
	defer cancel()

	id, err := pathID(c, "appointment_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid appointment id"})
	}
	a, err := h.Appointments.GetByIDAndGarage(ctx, id, gid)
	if err != nil {
		if errors.Is(err, repository.ErrAppointmentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load appointment failed"})
	}
	return c.JSON(http.StatusOK, a)
}

// Reschedule moves the appointment window without touching anything else.
func (h *AppointmentHandler) Reschedule(c echo.Context) error {
	ctx, cancel, gid, errResp := h.scoped(c)
	if errResp != nil {
		return errResp
	}
	defer cancel()

	id, err := pathID(c, "appointment_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid appointment id"})
	}
	var req windowReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.StartsAt.IsZero() || !req.EndsAt.After(req.StartsAt) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "valid starts_at/ends_at required"})
	}

	if err := h.Appointments.UpdateWindow(ctx, id, gid, req.StartsAt.UTC(), req.EndsAt.UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reschedule failed"})
	}
	a, err := h.Appointments.GetByIDAndGarage(ctx, id, gid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load appointment failed"})
	}
	return c.JSON(http.StatusOK, a)
}

// SetStatus transitions the appointment status.
func (h *AppointmentHandler) SetStatus(c echo.Context) error {
	ctx, cancel, gid, errResp := h.scoped(c)
	if errResp != nil {
		return errResp
	}
	defer cancel()

	id, err := pathID(c, "appointment_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid appointment id"})
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if !validStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	if err := h.Appointments.UpdateStatus(ctx, id, gid, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update status failed"})
	}
	a, err := h.Appointments.GetByIDAndGarage(ctx, id, gid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load appointment failed"})
	}
	return c.JSON(http.StatusOK, a)
}

func (h *AppointmentHandler) Delete(c echo.Context) error {
	ctx, cancel, gid, errResp := h.scoped(c)
	if errResp != nil {
		return errResp
	}
	defer cancel()

	id, err := pathID(c, "appointment_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid appointment id"})
	}
	if err := h.Appointments.Delete(ctx, id, gid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete appointment failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

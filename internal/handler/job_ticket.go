package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/garage-hub/internal/model"
	"github.com/iliyamo/garage-hub/internal/repository"
)

// JobTicketHandler covers workshop job ticket CRUD within a garage.
type JobTicketHandler struct {
	Tickets *repository.JobTicketRepo
	Clients *repository.ClientRepo
	Members *repository.MembershipRepo
}

func NewJobTicketHandler(t *repository.JobTicketRepo, cl *repository.ClientRepo, m *repository.MembershipRepo) *JobTicketHandler {
	return &JobTicketHandler{Tickets: t, Clients: cl, Members: m}
}

type ticketReq struct {
	ClientID  uint64  `json:"client_id"`
	VehicleID *uint64 `json:"vehicle_id"`
	Title     string  `json:"title"`
	Status    string  `json:"status"`
	Notes     string  `json:"notes"`
}

func validTicketStatus(s string) bool {
	switch s {
	case model.TicketOpen, model.TicketInProgress, model.TicketDone:
		return true
	}
	return false
}

func (h *JobTicketHandler) scoped(c echo.Context) (context.Context, context.CancelFunc, uint64, error) {
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

func (h *JobTicketHandler) Create(c echo.Context) error {
	ctx, cancel, gid, errResp := h.scoped(c)
	if errResp != nil {
		return errResp
	}
	defer cancel()

	var req ticketReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.ClientID == 0 || req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "client_id and title required"})
	}
	if _, err := h.Clients.GetByIDAndGarage(ctx, req.ClientID, gid); err != nil {
		if errors.Is(err, repository.ErrClientNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "client not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load client failed"})
	}

	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if status == "" {
		status = model.TicketOpen
	}
	if !validTicketStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	t := &model.JobTicket{
		GarageID:  gid,
		ClientID:  req.ClientID,
		VehicleID: req.VehicleID,
		Title:     req.Title,
		Status:    status,
		Notes:     req.Notes,
	}
	if err := h.Tickets.Create(ctx, t); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create ticket failed"})
	}
	return c.JSON(http.StatusCreated, t)
}

// List returns the garage's tickets, optionally restricted to one client.
func (h *JobTicketHandler) List(c echo.Context) error {
	ctx, cancel, gid, errResp := h.scoped(c)
	if errResp != nil {
		return errResp
	}
	defer cancel()

	var clientID uint64
	if s := c.QueryParam("client_id"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client_id"})
		}
		clientID = id
	}
	list, err := h.Tickets.ListByGarage(ctx, gid, clientID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list tickets failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"job_tickets": list})
}

func (h *JobTicketHandler) Get(c echo.Context) error {
	ctx, cancel, gid, errResp := h.scoped(c)
	if errResp != nil {
		return errResp
	}
	defer cancel()

	id, err := pathID(c, "ticket_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	t, err := h.Tickets.GetByIDAndGarage(ctx, id, gid)
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load ticket failed"})
	}
	return c.JSON(http.StatusOK, t)
}

func (h *JobTicketHandler) Update(c echo.Context) error {
	ctx, cancel, gid, errResp := h.scoped(c)
	if errResp != nil {
		return errResp
	}
	defer cancel()

	id, err := pathID(c, "ticket_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	var req ticketReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required"})
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if !validTicketStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	if err := h.Tickets.Update(ctx, id, gid, req.Title, status, req.Notes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update ticket failed"})
	}
	t, err := h.Tickets.GetByIDAndGarage(ctx, id, gid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load ticket failed"})
	}
	return c.JSON(http.StatusOK, t)
}

func (h *JobTicketHandler) Delete(c echo.Context) error {
	ctx, cancel, gid, errResp := h.scoped(c)
	if errResp != nil {
		return errResp
	}
	defer cancel()

	id, err := pathID(c, "ticket_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	if err := h.Tickets.Delete(ctx, id, gid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete ticket failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

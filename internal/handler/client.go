package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/garage-hub/internal/model"
	"github.com/iliyamo/garage-hub/internal/repository"
)

// ClientHandler covers the client CRUD within a garage.
type ClientHandler struct {
	Clients *repository.ClientRepo
	Members *repository.MembershipRepo
}

func NewClientHandler(cl *repository.ClientRepo, m *repository.MembershipRepo) *ClientHandler {
	return &ClientHandler{Clients: cl, Members: m}
}

type clientReq struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Notes    string `json:"notes"`
}

// scoped parses the garage id from the path and verifies membership.
func (h *ClientHandler) scoped(c echo.Context) (context.Context, context.CancelFunc, uint64, error) {
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

func (h *ClientHandler) Create(c echo.Context) error {
	ctx, cancel, gid, errResp := h.scoped(c)
	if errResp != nil {
		return errResp
	}
	defer cancel()

	var req clientReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.FullName = strings.TrimSpace(req.FullName)
	if req.FullName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "full_name required"})
	}

	cl := &model.Client{
		GarageID: gid,
		FullName: req.FullName,
		Email:    strings.TrimSpace(req.Email),
		Phone:    strings.TrimSpace(req.Phone),
		Notes:    req.Notes,
	}
	if err := h.Clients.Create(ctx, cl); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create client failed"})
	}
	return c.JSON(http.StatusCreated, cl)
}

// List returns the garage's clients, optionally filtered by a name search.
func (h *ClientHandler) List(c echo.Context) error {
	ctx, cancel, gid, errResp := h.scoped(c)
	if errResp != nil {
		return errResp
	}
	defer cancel()

	var (
		list []*model.Client
		err  error
	)
	if q := strings.TrimSpace(c.QueryParam("name")); q != "" {
		list, err = h.Clients.SearchByName(ctx, gid, q)
	} else {
		list, err = h.Clients.ListByGarage(ctx, gid)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list clients failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"clients": list})
}

func (h *ClientHandler) Get(c echo.Context) error {
	ctx, cancel, gid, errResp := h.scoped(c)
	if errResp != nil {
		return errResp
	}
	defer cancel()

	id, err := pathID(c, "client_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client id"})
	}
	cl, err := h.Clients.GetByIDAndGarage(ctx, id, gid)
	if err != nil {
		if errors.Is(err, repository.ErrClientNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "client not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load client failed"})
	}
	return c.JSON(http.StatusOK, cl)
}

func (h *ClientHandler) Update(c echo.Context) error {
	ctx, cancel, gid, errResp := h.scoped(c)
	if errResp != nil {
		return errResp
	}
	defer cancel()

	id, err := pathID(c, "client_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client id"})
	}
	var req clientReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.FullName = strings.TrimSpace(req.FullName)
	if req.FullName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "full_name required"})
	}

	err = h.Clients.Update(ctx, id, gid, req.FullName, strings.TrimSpace(req.Email), strings.TrimSpace(req.Phone), req.Notes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "client not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update client failed"})
	}
	cl, err := h.Clients.GetByIDAndGarage(ctx, id, gid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load client failed"})
	}
	return c.JSON(http.StatusOK, cl)
}

// Delete removes the client and cascades their vehicles, appointments and
// job tickets inside one transaction.
func (h *ClientHandler) Delete(c echo.Context) error {
	ctx, cancel, gid, errResp := h.scoped(c)
	if errResp != nil {
		return errResp
	}
	defer cancel()

	id, err := pathID(c, "client_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid client id"})
	}
	if err := h.Clients.Delete(ctx, id, gid); err != nil {
		if errors.Is(err, repository.ErrClientNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "client not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete client failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

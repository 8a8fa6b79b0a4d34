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

// VehicleHandler covers vehicle CRUD within a garage. Vehicles always hang
// off a client; the client id is part of the create payload, not the path.
type VehicleHandler struct {
	Vehicles *repository.VehicleRepo
	Clients  *repository.ClientRepo
	Members  *repository.MembershipRepo
}

func NewVehicleHandler(v *repository.VehicleRepo, cl *repository.ClientRepo, m *repository.MembershipRepo) *VehicleHandler {
	return &VehicleHandler{Vehicles: v, Clients: cl, Members: m}
}

type vehicleReq struct {
	ClientID uint64 `json:"client_id"`
	Make     string `json:"make"`
	Model    string `json:"model"`
	Year     uint16 `json:"year"`
	Plate    string `json:"plate"`
	VIN      string `json:"vin"`
}

func (h *VehicleHandler) scoped(c echo.Context) (context.Context, context.CancelFunc, uint64, error) {
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

func (h *VehicleHandler) Create(c echo.Context) error {
	ctx, cancel, gid, errResp := h.scoped(c)
	if errResp != nil {
		return errResp
	}
	defer cancel()

	var req vehicleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ClientID == 0 || strings.TrimSpace(req.Make) == "" || strings.TrimSpace(req.Model) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "client_id, make and model required"})
	}

	// The owning client must exist in the same garage.
	if _, err := h.Clients.GetByIDAndGarage(ctx, req.ClientID, gid); err != nil {
		if errors.Is(err, repository.ErrClientNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "client not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load client failed"})
	}

	v := &model.Vehicle{
		GarageID: gid,
		ClientID: req.ClientID,
		Make:     strings.TrimSpace(req.Make),
		Model:    strings.TrimSpace(req.Model),
		Year:     req.Year,
		Plate:    strings.ToUpper(strings.TrimSpace(req.Plate)),
		VIN:      strings.ToUpper(strings.TrimSpace(req.VIN)),
	}
	if err := h.Vehicles.Create(ctx, v); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create vehicle failed"})
	}
	return c.JSON(http.StatusCreated, v)
}

// List returns vehicles for one client (?client_id=N required).
func (h *VehicleHandler) List(c echo.Context) error {
	ctx, cancel, gid, errResp := h.scoped(c)
	if errResp != nil {
		return errResp
	}
	defer cancel()

	clientID, err := strconv.ParseUint(c.QueryParam("client_id"), 10, 64)
	if err != nil || clientID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "client_id query param required"})
	}
	list, err := h.Vehicles.ListByClient(ctx, gid, clientID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list vehicles failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"vehicles": list})
}

func (h *VehicleHandler) Get(c echo.Context) error {
	ctx, cancel, gid, errResp := h.scoped(c)
	if errResp != nil {
		return errResp
	}
	defer cancel()

	id, err := pathID(c, "vehicle_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle id"})
	}
	v, err := h.Vehicles.GetByIDAndGarage(ctx, id, gid)
	if err != nil {
		if errors.Is(err, repository.ErrVehicleNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load vehicle failed"})
	}
	return c.JSON(http.StatusOK, v)
}

func (h *VehicleHandler) Update(c echo.Context) error {
	ctx, cancel, gid, errResp := h.scoped(c)
	if errResp != nil {
		return errResp
	}
	defer cancel()

	id, err := pathID(c, "vehicle_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle id"})
	}
	var req vehicleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Make) == "" || strings.TrimSpace(req.Model) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "make and model required"})
	}

	err = h.Vehicles.Update(ctx, id, gid, strings.TrimSpace(req.Make), strings.TrimSpace(req.Model),
		req.Year, strings.ToUpper(strings.TrimSpace(req.Plate)), strings.ToUpper(strings.TrimSpace(req.VIN)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update vehicle failed"})
	}
	v, err := h.Vehicles.GetByIDAndGarage(ctx, id, gid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load vehicle failed"})
	}
	return c.JSON(http.StatusOK, v)
}

// Delete removes the vehicle; appointments and tickets that referenced it
// keep their rows with the vehicle link nulled.
func (h *VehicleHandler) Delete(c echo.Context) error {
	ctx, cancel, gid, errResp := h.scoped(c)
	if errResp != nil {
		return errResp
	}
	defer cancel()

	id, err := pathID(c, "vehicle_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle id"})
	}
	if err := h.Vehicles.Delete(ctx, id, gid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete vehicle failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

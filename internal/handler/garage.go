package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/garage-hub/internal/model"
	"github.com/iliyamo/garage-hub/internal/repository"
	"github.com/iliyamo/garage-hub/internal/tenant"
	"github.com/iliyamo/garage-hub/internal/utils"
)

// GarageHandler covers garage lifecycle and tenant resolution endpoints.
type GarageHandler struct {
	Garages  *repository.GarageRepo
	Members  *repository.MembershipRepo
	Profiles *repository.ProfileRepo
	Roles    *repository.RoleRepo
	Resolver *tenant.Reconciler
}

func NewGarageHandler(g *repository.GarageRepo, m *repository.MembershipRepo, p *repository.ProfileRepo, r *repository.RoleRepo, res *tenant.Reconciler) *GarageHandler {
	return &GarageHandler{Garages: g, Members: m, Profiles: p, Roles: r, Resolver: res}
}

type garageReq struct {
	Name         string `json:"name"`
	Address      string `json:"address"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
}

type garageResp struct {
	ID           uint64    `json:"id"`
	OwnerID      uint64    `json:"owner_id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Address      string    `json:"address"`
	ContactEmail string    `json:"contact_email"`
	ContactPhone string    `json:"contact_phone"`
	CreatedAt    time.Time `json:"created_at"`
}

func toGarageResp(g *model.Garage) garageResp {
	return garageResp{
		ID: g.ID, OwnerID: g.OwnerID, Name: g.Name, Slug: g.Slug,
		Address: g.Address, ContactEmail: g.ContactEmail, ContactPhone: g.ContactPhone,
		CreatedAt: g.CreatedAt,
	}
}

// Create registers a new garage owned by the caller, writes the owner
// membership row and points the owner's profile at it. The slug is derived
// from the name and must be unique system-wide.
func (h *GarageHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req garageReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	slug := utils.Slugify(req.Name)
	if slug == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name yields empty slug"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	g := &model.Garage{
		OwnerID:      uid,
		Name:         req.Name,
		Slug:         slug,
		Address:      strings.TrimSpace(req.Address),
		ContactEmail: strings.TrimSpace(req.ContactEmail),
		ContactPhone: strings.TrimSpace(req.ContactPhone),
	}
	if err := h.Garages.Create(ctx, g); err != nil {
		if errors.Is(err, repository.ErrSlugExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "a garage with this name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create garage failed"})
	}

	// Owner membership and profile pointer are conveniences; the garage
	// exists either way and the reconciler will repair both at next login.
	if err := h.Members.Upsert(ctx, g.ID, uid, model.MemberRoleOwner); err != nil {
		c.Logger().Warnf("garage create: owner membership write failed: %v", err)
	}
	if err := h.Profiles.SetPointer(ctx, uid, g.ID); err != nil {
		c.Logger().Warnf("garage create: profile pointer write failed: %v", err)
	}

	return c.JSON(http.StatusCreated, toGarageResp(g))
}

// ListMine returns the garages the caller owns.
func (h *GarageHandler) ListMine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	list, err := h.Garages.ListByOwner(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list garages failed"})
	}
	out := make([]garageResp, 0, len(list))
	for _, g := range list {
		out = append(out, toGarageResp(g))
	}
	return c.JSON(http.StatusOK, echo.Map{"garages": out})
}

// Get returns one garage the caller belongs to.
func (h *GarageHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	gid, err := pathID(c, "garage_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid garage id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := requireGarageAccess(ctx, h.Members, gid, uid); err != nil {
		return scopeErr(c, err)
	}
	g, err := h.Garages.GetByID(ctx, gid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "garage not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load garage failed"})
	}
	return c.JSON(http.StatusOK, toGarageResp(g))
}

// Update edits the mutable garage fields. Only the owner may update; the
// slug is fixed at creation and never regenerated.
func (h *GarageHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	gid, err := pathID(c, "garage_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid garage id"})
	}
	var req garageReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	err = h.Garages.Update(ctx, gid, uid, req.Name, strings.TrimSpace(req.Address),
		strings.TrimSpace(req.ContactEmail), strings.TrimSpace(req.ContactPhone))
	switch {
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the owner can update a garage"})
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "garage not found"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update garage failed"})
	}

	g, err := h.Garages.GetByID(ctx, gid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load garage failed"})
	}
	return c.JSON(http.StatusOK, toGarageResp(g))
}

// Delete removes the garage and everything scoped to it. Owner only; the
// repository cascades appointments, tickets, vehicles, clients, memberships
// and chat history inside one transaction.
func (h *GarageHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	gid, err := pathID(c, "garage_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid garage id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	err = h.Garages.DeleteByIDAndOwner(ctx, gid, uid)
	switch {
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the owner can delete a garage"})
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "garage not found"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete garage failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// LinkedGarages lists every garage the caller is linked to via ownership or
// membership, deduplicated and in stable order. Backs the garage switcher.
func (h *GarageHandler) LinkedGarages(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	ids, err := tenant.MembershipIndex(ctx, h.Garages, h.Members, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list linked garages failed"})
	}
	out := make([]garageResp, 0, len(ids))
	for _, id := range ids {
		g, err := h.Garages.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue // membership row outlived the garage
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load garage failed"})
		}
		out = append(out, toGarageResp(g))
	}
	return c.JSON(http.StatusOK, echo.Map{"garages": out})
}

// Resolve re-runs tenant resolution for the caller on demand and returns the
// assigned garage. The dashboard calls this when it finds itself without a
// garage id rather than forcing a fresh login.
func (h *GarageHandler) Resolve(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	role := tenant.LookupRole(ctx, h.Roles, uid)
	gid, err := h.Resolver.Resolve(ctx, uid, role)
	if err != nil {
		if errors.Is(err, tenant.ErrNoTenant) {
			return c.JSON(http.StatusNotFound, echo.Map{
				"error":  "no garage assignable",
				"action": "create_garage",
			})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant resolution failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"garage_id": gid})
}

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

// StaffHandler manages garage membership rows.
type StaffHandler struct {
	Garages *repository.GarageRepo
	Members *repository.MembershipRepo
	Users   *repository.UserRepo
}

func NewStaffHandler(g *repository.GarageRepo, m *repository.MembershipRepo, u *repository.UserRepo) *StaffHandler {
	return &StaffHandler{Garages: g, Members: m, Users: u}
}

type addStaffReq struct {
	Email      string `json:"email"`
	MemberRole string `json:"member_role"` // administrator | technician | front_desk | staff
}

type memberResp struct {
	UserID     uint64 `json:"user_id"`
	MemberRole string `json:"member_role"`
}

func normalizeMemberRole(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case model.MemberRoleAdministrator:
		return model.MemberRoleAdministrator
	case model.MemberRoleTechnician:
		return model.MemberRoleTechnician
	case model.MemberRoleFrontDesk:
		return model.MemberRoleFrontDesk
	}
	return model.MemberRoleStaff
}

// ownerOnly verifies the caller owns the garage.
func (h *StaffHandler) ownerOnly(ctx context.Context, garageID, userID uint64) (int, string) {
	g, err := h.Garages.GetByID(ctx, garageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return http.StatusNotFound, "garage not found"
		}
		return http.StatusInternalServerError, "load garage failed"
	}
	if g.OwnerID != userID {
		return http.StatusForbidden, "only the owner can manage staff"
	}
	return 0, ""
}

// List returns the garage's membership rows. Any member may look.
func (h *StaffHandler) List(c echo.Context) error {
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
	rows, err := h.Members.ListMembers(ctx, gid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list members failed"})
	}
	out := make([]memberResp, 0, len(rows))
	for _, m := range rows {
		out = append(out, memberResp{UserID: m.UserID, MemberRole: m.MemberRole})
	}
	return c.JSON(http.StatusOK, echo.Map{"members": out})
}

// Add links an existing user account to the garage by email. Owner only.
func (h *StaffHandler) Add(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	gid, err := pathID(c, "garage_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid garage id"})
	}
	var req addStaffReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if code, msg := h.ownerOnly(ctx, gid, uid); code != 0 {
		return c.JSON(code, echo.Map{"error": msg})
	}
	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no account with this email"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup user failed"})
	}

	role := normalizeMemberRole(req.MemberRole)
	if err := h.Members.Upsert(ctx, gid, u.ID, role); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "add member failed"})
	}
	return c.JSON(http.StatusCreated, memberResp{UserID: u.ID, MemberRole: role})
}

// Remove unlinks a member. Owner only; the owner cannot remove themselves.
func (h *StaffHandler) Remove(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	gid, err := pathID(c, "garage_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid garage id"})
	}
	target, err := pathID(c, "user_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if code, msg := h.ownerOnly(ctx, gid, uid); code != 0 {
		return c.JSON(code, echo.Map{"error": msg})
	}
	if target == uid {
		return c.JSON(http.StatusConflict, echo.Map{"error": "owner cannot remove themselves"})
	}
	if err := h.Members.Delete(ctx, gid, target); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "membership not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "remove member failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/garage-hub/internal/chat"
	"github.com/iliyamo/garage-hub/internal/repository"
)

// ChatHandler exposes the assistant endpoint. The garage the conversation
// operates in is always explicit: taken from the request body, or from the
// caller's profile pointer when the body omits it, and membership is checked
// either way.
type ChatHandler struct {
	Router   *chat.Router
	Members  *repository.MembershipRepo
	Profiles *repository.ProfileRepo
}

func NewChatHandler(r *chat.Router, m *repository.MembershipRepo, p *repository.ProfileRepo) *ChatHandler {
	return &ChatHandler{Router: r, Members: m, Profiles: p}
}

type chatReq struct {
	Message  string `json:"message"`
	GarageID uint64 `json:"garage_id"`
}

// Post runs one assistant turn.
func (h *ChatHandler) Post(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req chatReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "message required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	gid := req.GarageID
	if gid == 0 {
		ptr, err := h.Profiles.GetPointer(ctx, uid)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load profile failed"})
		}
		if ptr == nil {
			return c.JSON(http.StatusConflict, echo.Map{
				"error":  "no garage selected",
				"action": "resolve_tenant",
			})
		}
		gid = *ptr
	}
	if err := requireGarageAccess(ctx, h.Members, gid, uid); err != nil {
		return scopeErr(c, err)
	}

	res := h.Router.Handle(ctx, gid, uid, req.Message)
	return c.JSON(http.StatusOK, res)
}

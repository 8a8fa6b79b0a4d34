package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/garage-hub/internal/model"
	"github.com/iliyamo/garage-hub/internal/repository"
)

// PublicHandler serves the unauthenticated garage directory. These routes
// sit behind the Redis response cache; they expose contact details only,
// never tenant data.
type PublicHandler struct {
	Garages *repository.GarageRepo
}

func NewPublicHandler(g *repository.GarageRepo) *PublicHandler {
	return &PublicHandler{Garages: g}
}

type publicGarage struct {
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Address      string `json:"address"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
}

func toPublic(g *model.Garage) publicGarage {
	return publicGarage{
		Name: g.Name, Slug: g.Slug, Address: g.Address,
		ContactEmail: g.ContactEmail, ContactPhone: g.ContactPhone,
	}
}

// ListGarages returns the full public directory.
func (h *PublicHandler) ListGarages(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	list, err := h.Garages.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list garages failed"})
	}
	out := make([]publicGarage, 0, len(list))
	for _, g := range list {
		out = append(out, toPublic(g))
	}
	return c.JSON(http.StatusOK, echo.Map{"garages": out})
}

// GetGarage looks one garage up by slug.
func (h *PublicHandler) GetGarage(c echo.Context) error {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "slug required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	g, err := h.Garages.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrGarageNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "garage not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load garage failed"})
	}
	return c.JSON(http.StatusOK, toPublic(g))
}

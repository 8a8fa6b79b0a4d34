package handler // handler defines the HTTP layer over the repositories

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/garage-hub/internal/repository"
)

// dbTimeout bounds every database call made from a handler.
const dbTimeout = 5 * time.Second

// getUserID extracts the user_id JWTAuth stored in the context. The claim
// round-trips through JSON so it may arrive as any numeric type or a string.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// requireGarageAccess verifies the user owns or is a member of the garage.
// Every garage-scoped route calls this before touching data; the garage id
// always comes from the URL, never from ambient session state.
func requireGarageAccess(ctx context.Context, members *repository.MembershipRepo, garageID, userID uint64) error {
	ok, err := members.IsMember(ctx, garageID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrForbidden
	}
	return nil
}

// scopeErr converts a garage-access failure into the right response.
func scopeErr(c echo.Context, err error) error {
	if errors.Is(err, repository.ErrForbidden) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not a member of this garage"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "membership check failed"})
}

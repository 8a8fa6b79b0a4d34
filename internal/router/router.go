// Package router registers the HTTP routes for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/garage-hub/internal/handler"
	"github.com/iliyamo/garage-hub/internal/middleware"
	"github.com/iliyamo/garage-hub/internal/model"
)

// RegisterRoutes registers routes that never require authentication.
func RegisterRoutes(e *echo.Echo) {
	// Liveness probe for load balancers and monitoring.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth wires the auth endpoints. Register, login and refresh live
// under /v1/auth and need no session; /v1/me and logout-all sit behind the
// JWT middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout with a refresh_token body works without a JWT; the revoke-all
	// variant of the same handler needs the bearer token and is registered
	// on the protected group below.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleAdministrator, model.RoleTechnician, model.RoleFrontDesk))
	auth.GET("/me", a.Me)
	auth.POST("/logout", a.Logout)
}

// RegisterPublic wires the unauthenticated garage directory behind the
// response cache.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache echo.MiddlewareFunc) {
	e.GET("/v1/garages/browse", p.ListGarages, cache)
	e.GET("/v1/garages/browse/:slug", p.GetGarage, cache)
}

// RegisterTenant wires garage lifecycle, tenant resolution and staff
// management. All routes require a valid token; per-garage access is
// enforced inside the handlers against the membership table.
func RegisterTenant(e *echo.Echo, g *handler.GarageHandler, s *handler.StaffHandler, jwtSecret string) {
	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	auth.GET("/tenant/resolve", g.Resolve)
	auth.GET("/tenant/garages", g.LinkedGarages)

	auth.POST("/garages", g.Create)
	auth.GET("/garages", g.ListMine)
	auth.GET("/garages/:garage_id", g.Get)
	auth.PUT("/garages/:garage_id", g.Update)
	auth.DELETE("/garages/:garage_id", g.Delete)

	auth.GET("/garages/:garage_id/staff", s.List)
	auth.POST("/garages/:garage_id/staff", s.Add)
	auth.DELETE("/garages/:garage_id/staff/:user_id", s.Remove)
}

// RegisterGarageScoped wires the garage-scoped CRUD: clients, vehicles,
// appointments and job tickets. The garage id is always explicit in the
// path; handlers reject callers who are not members.
func RegisterGarageScoped(e *echo.Echo, cl *handler.ClientHandler, v *handler.VehicleHandler, a *handler.AppointmentHandler, t *handler.JobTicketHandler, jwtSecret string) {
	g := e.Group("/v1/garages/:garage_id", middleware.JWTAuth(jwtSecret))

	g.POST("/clients", cl.Create)
	g.GET("/clients", cl.List)
	g.GET("/clients/:client_id", cl.Get)
	g.PUT("/clients/:client_id", cl.Update)
	g.DELETE("/clients/:client_id", cl.Delete)

	g.POST("/vehicles", v.Create)
	g.GET("/vehicles", v.List)
	g.GET("/vehicles/:vehicle_id", v.Get)
	g.PUT("/vehicles/:vehicle_id", v.Update)
	g.DELETE("/vehicles/:vehicle_id", v.Delete)

	g.POST("/appointments", a.Create)
	g.GET("/appointments", a.List)
	g.GET("/appointments/:appointment_id", a.Get)
	g.PUT("/appointments/:appointment_id/window", a.Reschedule)
	g.PUT("/appointments/:appointment_id/status", a.SetStatus)
	g.DELETE("/appointments/:appointment_id", a.Delete)

	g.POST("/job-tickets", t.Create)
	g.GET("/job-tickets", t.List)
	g.GET("/job-tickets/:ticket_id", t.Get)
	g.PUT("/job-tickets/:ticket_id", t.Update)
	g.DELETE("/job-tickets/:ticket_id", t.Delete)
}

// RegisterChat wires the assistant endpoint behind the token bucket.
func RegisterChat(e *echo.Echo, c *handler.ChatHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	e.POST("/v1/chat", c.Post, middleware.JWTAuth(jwtSecret), limiter)
}

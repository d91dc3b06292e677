package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/api/http/handlers"
	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Auth    *handlers.AuthHandler
	Pages   *handlers.PagesHandler
	Metrics *handlers.MetricsHandler
	Gate    *auth.RoleGate
	Edge    *auth.EdgeGate
}

// RegisterRoutes wires HTTP routes. The edge gate runs first so protected
// prefixes are filtered before any handler-level gate executes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(cfg.Edge.Handle)

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/signup", cfg.Auth.SignUp)
	authGroup.Post("/signin", cfg.Auth.SignIn)
	authGroup.Post("/refresh", cfg.Auth.Refresh)
	authGroup.Post("/signout", cfg.Auth.SignOut)
	authGroup.Get("/me", cfg.Auth.Me)

	// Page-rendering contexts use the redirecting gate.
	app.Get("/dashboard",
		cfg.Gate.RequireRole(auth.RequireRoleOptions{Roles: domain.AllRoles()}),
		cfg.Pages.Dashboard)
	app.Get("/admin",
		cfg.Gate.RequireRole(auth.RequireRoleOptions{Roles: []domain.Role{domain.RoleAdmin, domain.RoleSuperAdmin}}),
		cfg.Pages.Admin)

	// API contexts use the status-code gate.
	app.Get("/api/admin/metrics",
		cfg.Gate.WithRole(cfg.Metrics.Snapshot, domain.RoleAdmin, domain.RoleSuperAdmin))
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/streetlight-service/internal/api/http/handlers"
	"github.com/spec-kit/streetlight-service/internal/auth"
	"github.com/spec-kit/streetlight-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Complaints     *handlers.ComplaintsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.AuthMiddleware.Optional, cfg.Auth.Logout)
	authGroup.Get("/me", cfg.AuthMiddleware.Optional, cfg.Auth.Me)

	complaints := app.Group("/complaints", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	complaints.Post("/", cfg.Complaints.Create)
	complaints.Get("/", cfg.Complaints.ListMine)
	complaints.Get("/:id", cfg.Complaints.Get)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	admin.Get("/complaints", cfg.Admin.ListComplaints)
	admin.Get("/complaints/stats", cfg.Admin.Stats)
	admin.Patch("/complaints/:id/status", cfg.Admin.UpdateStatus)
	admin.Get("/users", cfg.Admin.ListUsers)
}

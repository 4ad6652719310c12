package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/console-client/internal/api/http/handlers"
	"github.com/spec-kit/console-client/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	SiteConfig     *handlers.SiteConfigHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)

	api := app.Group("/api")
	api.Get("/public/site-config", cfg.SiteConfig.Get)

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	user := api.Group("/user", cfg.AuthMiddleware.Handle)
	user.Get("/profile", cfg.Users.Profile)

	admin := api.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Get("/users", cfg.Admin.ListUsers)
}

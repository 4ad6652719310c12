package http

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/console-client/internal/api/dto"
	"github.com/spec-kit/console-client/internal/api/http/handlers"
	"github.com/spec-kit/console-client/internal/auth"
	"github.com/spec-kit/console-client/internal/config"
	"github.com/spec-kit/console-client/internal/observability"
	"github.com/spec-kit/console-client/internal/repository"
	"github.com/spec-kit/console-client/internal/service"
)

const requestTimeout = 10 * time.Second

// DevServer is a local stand-in for the console backend.
type DevServer struct {
	App   *fiber.App
	Auth  *service.AuthService
	Users repository.UserRepository
}

// NewDevServer builds the app and seeds the admin account when one is configured.
func NewDevServer(ctx context.Context, cfg config.DevServerConfig, version string, logger *zap.Logger, metrics *observability.Metrics) (*DevServer, error) {
	logger = observability.OrNop(logger)
	users := repository.NewUserRepository()
	authService := service.NewAuthService(cfg, users)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if _, err := authService.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return nil, fmt.Errorf("seed admin: %w", err)
		}
		logger.Info("admin account ready", zap.String("email", cfg.AdminEmail))
	}

	app := fiber.New(fiber.Config{AppName: cfg.SiteName, DisableStartupMessage: true})
	RegisterMiddlewares(app, logger, metrics, requestTimeout)

	allowRegister := cfg.AllowPasswordRegister
	RegisterRoutes(app, RouteConfig{
		Health: handlers.NewHealthHandler(cfg.SiteName, version),
		Users:  handlers.NewUsersHandler(authService, allowRegister),
		SiteConfig: handlers.NewSiteConfigHandler(dto.SiteConfigResponse{
			SiteName:              cfg.SiteName,
			SiteDescription:       cfg.SiteDescription,
			OAuth:                 &dto.OAuthFlags{},
			AllowPasswordRegister: &allowRegister,
			CurrencySymbol:        cfg.CurrencySymbol,
		}),
		Admin:          handlers.NewAdminHandler(authService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), users),
	})

	return &DevServer{App: app, Auth: authService, Users: users}, nil
}

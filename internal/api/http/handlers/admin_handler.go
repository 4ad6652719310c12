package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/console-client/internal/api/dto"
	"github.com/spec-kit/console-client/internal/service"
)

// AdminHandler exposes the admin namespace.
type AdminHandler struct {
	auth *service.AuthService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(authService *service.AuthService) *AdminHandler {
	return &AdminHandler{auth: authService}
}

// ListUsers handles GET /api/admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	accounts, err := h.auth.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	resp := dto.UserListResponse{Users: make([]dto.UserProfile, 0, len(accounts))}
	for _, account := range accounts {
		resp.Users = append(resp.Users, dto.NewUserProfile(account.Profile()))
	}
	return c.JSON(resp)
}

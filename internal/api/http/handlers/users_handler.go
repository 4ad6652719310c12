package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/console-client/internal/api/dto"
	"github.com/spec-kit/console-client/internal/auth"
	"github.com/spec-kit/console-client/internal/service"
)

// UsersHandler exposes auth and profile endpoints for end-users.
type UsersHandler struct {
	auth          *service.AuthService
	allowRegister bool
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, allowRegister bool) *UsersHandler {
	return &UsersHandler{auth: authService, allowRegister: allowRegister}
}

// Register handles POST /api/auth/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	if !h.allowRegister {
		return fiber.NewError(http.StatusForbidden, "Password registration is disabled")
	}
	var req dto.UserRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "Invalid request body")
	}
	if strings.TrimSpace(req.Username) == "" || req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "Username, email and password are required")
	}

	inviteCode := ""
	if req.InviteCode != nil {
		inviteCode = *req.InviteCode
	}
	if _, err := h.auth.RegisterUser(c.UserContext(), req.Username, req.Email, req.Password, inviteCode); err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			return fiber.NewError(http.StatusConflict, "Email already exists")
		}
		return err
	}

	return c.Status(http.StatusCreated).JSON(dto.MessageResponse{Message: "User registered successfully"})
}

// Login handles POST /api/auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "Email and password are required")
	}

	account, token, _, err := h.auth.LoginUser(c.UserContext(), req.Email, req.Password)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return fiber.NewError(http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, service.ErrAccountDisabled):
		return fiber.NewError(http.StatusForbidden, "Account is not active")
	case err != nil:
		return err
	}

	user := dto.NewUserProfile(account.Profile())
	return c.JSON(dto.LoginResponse{Message: "Login successful", Token: token, User: &user})
}

// Profile handles GET /api/user/profile.
func (h *UsersHandler) Profile(c *fiber.Ctx) error {
	account, ok := auth.PrincipalFromContext(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}
	return c.JSON(dto.NewUserProfile(account.Profile()))
}

package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/console-client/internal/domain"
	"github.com/spec-kit/console-client/internal/repository"
)

const principalKey = "auth_principal"

// AuthMiddleware validates bearer tokens and loads the calling account.
type AuthMiddleware struct {
	tokens *TokenManager
	users  repository.UserRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return fiber.NewError(http.StatusUnauthorized, "Authorization header required")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return fiber.NewError(http.StatusUnauthorized, "Invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, "Invalid token")
	}

	account, err := m.users.GetByID(c.UserContext(), claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return fiber.NewError(http.StatusUnauthorized, "User not found")
		}
		return err
	}
	if account.TokenVersion != claims.Version {
		return fiber.NewError(http.StatusUnauthorized, "Token revoked")
	}
	if account.Status == domain.UserStatusBanned {
		return fiber.NewError(http.StatusUnauthorized, "Account banned")
	}

	c.Locals(principalKey, account)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated account.
func PrincipalFromContext(c *fiber.Ctx) (*domain.Account, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	account, ok := val.(*domain.Account)
	return account, ok
}

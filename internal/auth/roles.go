package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// RequireAdmin ensures the authenticated account holds admin rights.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		account, ok := PrincipalFromContext(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		if !account.IsAdmin {
			return fiber.NewError(http.StatusForbidden, "Admin access required")
		}
		return c.Next()
	}
}

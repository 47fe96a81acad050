// internals/middlewares/auth/role_middleware.go
package auth

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"kosku_backend/internals/constants"
)

// OnlyRoles membatasi akses ke role tertentu. Dipasang setelah AuthMiddleware.
func OnlyRoles(errorMessage string, allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(string)
		if !ok || role == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Role not found")
		}
		if !constants.RoleIn(role, allowedRoles) {
			return fiber.NewError(fiber.StatusForbidden, fmt.Sprintf("%s - Role Anda: %s", errorMessage, role))
		}
		return c.Next()
	}
}
